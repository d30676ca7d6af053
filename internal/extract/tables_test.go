package extract

import (
	"strings"
	"testing"

	"github.com/RecoveryAshes/GmgnXtract/internal/models"
)

const semanticTableHTML = `
<div>
  <table>
    <thead>
      <tr><th>Token</th><th>Realized Profit</th><th>Balance</th></tr>
    </thead>
    <tbody>
      <tr><td>PEPE</td><td>+$1,024</td><td>3.2 SOL</td></tr>
      <tr><td>WIF</td><td>-$88</td><td>0.5 SOL</td></tr>
    </tbody>
  </table>
</div>`

const ariaGridHTML = `
<div role="grid">
  <div role="row">
    <div role="columnheader">Token</div>
    <div role="columnheader">Unrealized PnL</div>
    <div role="columnheader">Txs</div>
  </div>
  <div role="row">
    <div role="gridcell">BONK</div>
    <div role="cell">+$12</div>
    <div role="cell">42</div>
  </div>
  <div role="row">
    <div role="gridcell">MEW</div>
    <div role="cell">-$3</div>
    <div role="cell">7</div>
  </div>
</div>`

const heuristicGroupHTML = `
<div class="list">
  <div><span>AAA</span><span>+$1</span><span>10</span></div>
  <div><span>BBB</span><span>+$2</span><span>20</span></div>
  <div><span>CCC</span><span>+$3</span><span>30</span></div>
  <div><span>DDD</span><span>+$4</span><span>40</span></div>
  <div><span>EEE</span><span>+$5</span><span>50</span></div>
  <div><span>FFF</span><span>+$6</span><span>60</span></div>
  <div><span>noise</span></div>
</div>`

// TestParseTable_语义化表格优先 测试语义化<table>解析
func TestParseTable_语义化表格优先(t *testing.T) {
	extract := ParseTable(semanticTableHTML)

	if extract.Source != models.SourceSemantic {
		t.Fatalf("来源应为semantic, 实际: %s", extract.Source)
	}
	if len(extract.Headers) != 3 || extract.Headers[0] != "Token" {
		t.Errorf("表头解析错误: %v", extract.Headers)
	}
	if len(extract.Rows) != 2 {
		t.Fatalf("应有2行, 实际: %d", len(extract.Rows))
	}
	if extract.Rows[0][0] != "PEPE" || extract.Rows[1][2] != "0.5 SOL" {
		t.Errorf("单元格内容错误: %v", extract.Rows)
	}
}

// TestParseTable_无thead的表格 测试首个含th的tr作为表头
func TestParseTable_无thead的表格(t *testing.T) {
	markup := `<table>
      <tr><th>Token</th><th>USD</th></tr>
      <tr><td>X1</td><td>$5</td></tr>
    </table>`

	extract := ParseTable(markup)
	if extract.Source != models.SourceSemantic {
		t.Fatalf("来源应为semantic, 实际: %s", extract.Source)
	}
	if len(extract.Headers) != 2 || extract.Headers[1] != "USD" {
		t.Errorf("表头解析错误: %v", extract.Headers)
	}
	if len(extract.Rows) != 1 || extract.Rows[0][0] != "X1" {
		t.Errorf("表头行不应计入数据行: %v", extract.Rows)
	}
}

// TestParseTable_ARIA行角色回退 测试无<table>时的ARIA解析
func TestParseTable_ARIA行角色回退(t *testing.T) {
	extract := ParseTable(ariaGridHTML)

	if extract.Source != models.SourceAriaGrid {
		t.Fatalf("来源应为aria, 实际: %s", extract.Source)
	}
	if len(extract.Headers) != 3 || extract.Headers[1] != "Unrealized PnL" {
		t.Errorf("columnheader解析错误: %v", extract.Headers)
	}
	if len(extract.Rows) != 2 || extract.Rows[0][0] != "BONK" {
		t.Errorf("行解析错误: %v", extract.Rows)
	}
}

// TestParseTable_启发式分组回退 测试无语义结构时的分组解析
func TestParseTable_启发式分组回退(t *testing.T) {
	extract := ParseTable(heuristicGroupHTML)

	if extract.Source != models.SourceHeuristic {
		t.Fatalf("来源应为heuristic, 实际: %s", extract.Source)
	}
	if len(extract.Headers) != 0 {
		t.Errorf("启发式分组不应产出表头: %v", extract.Headers)
	}
	// 片段数<3的噪声行被丢弃
	if len(extract.Rows) != 6 {
		t.Fatalf("应有6行(噪声行丢弃), 实际: %d", len(extract.Rows))
	}
	if extract.Rows[0][0] != "AAA" || extract.Rows[5][2] != "60" {
		t.Errorf("行内容错误: %v", extract.Rows)
	}
}

// TestParseTable_启发式片段上限 测试每行片段数不超过20
func TestParseTable_启发式片段上限(t *testing.T) {
	var row strings.Builder
	for i := 0; i < 30; i++ {
		row.WriteString("<span>frag</span>")
	}
	var doc strings.Builder
	doc.WriteString(`<div>`)
	for i := 0; i < 6; i++ {
		doc.WriteString("<div>" + row.String() + "</div>")
	}
	doc.WriteString(`</div>`)

	extract := ParseTable(doc.String())
	if extract.Source != models.SourceHeuristic {
		t.Fatalf("来源应为heuristic, 实际: %s", extract.Source)
	}
	for i, r := range extract.Rows {
		if len(r) > 20 {
			t.Errorf("第%d行片段数超限: %d", i, len(r))
		}
	}
}

// TestParseTable_空输入 测试空markup返回空表
func TestParseTable_空输入(t *testing.T) {
	for _, markup := range []string{"", "   ", "<div></div>"} {
		extract := ParseTable(markup)
		if !extract.IsEmpty() {
			t.Errorf("输入%q应返回空表", markup)
		}
		if extract.Source != models.SourceNone {
			t.Errorf("输入%q来源应为none, 实际: %s", markup, extract.Source)
		}
	}
}

// TestParseTable_跳过script内容 测试script/style文本不计入单元格
func TestParseTable_跳过script内容(t *testing.T) {
	markup := `<table><tbody>
      <tr><td>TOK<script>var x=1;</script></td><td>$1</td></tr>
    </tbody></table>`

	extract := ParseTable(markup)
	if len(extract.Rows) != 1 || extract.Rows[0][0] != "TOK" {
		t.Errorf("script文本不应混入单元格: %v", extract.Rows)
	}
}

// TestFindByHeading_命中标题 测试按标题前缀定位容器
func TestFindByHeading_命中标题(t *testing.T) {
	doc := `<main>
      <section><h2>Recent PnL</h2><table><tr><td>a</td></tr></table></section>
      <section><h2>Deployed Tokens</h2></section>
    </main>`

	markup := FindByHeading(doc, []string{"Recent PnL"})
	if markup == "" {
		t.Fatal("应命中Recent PnL区域")
	}
	if !strings.Contains(markup, "Recent PnL") || !strings.Contains(markup, "<table>") {
		t.Errorf("返回的markup不完整: %s", markup)
	}
}

// TestFindByHeading_忽略大小写 测试标签匹配不区分大小写
func TestFindByHeading_忽略大小写(t *testing.T) {
	doc := `<div><h3>RECENT PNL</h3><p>data</p></div>`
	if FindByHeading(doc, []string{"recent pnl"}) == "" {
		t.Error("大小写不同也应命中")
	}
}

// TestFindByHeading_前缀之外不命中 测试标题超出前缀窗口不算命中
func TestFindByHeading_前缀之外不命中(t *testing.T) {
	padding := strings.Repeat("x ", 120)
	doc := `<div><p>` + padding + `</p><h2>Recent PnL</h2></div>`

	if FindByHeading(doc, []string{"Recent PnL"}) != "" {
		t.Error("标题在前缀窗口之外不应命中")
	}
}

// TestFindByHeading_多字节前缀按rune计数 测试前缀窗口不按字节截断
// 100个中文字符是300字节但只占100个rune, 标题仍在窗口内
func TestFindByHeading_多字节前缀按rune计数(t *testing.T) {
	padding := strings.Repeat("数", 100)
	doc := `<div><p>` + padding + `</p><h2>Recent PnL</h2><table><tr><td>a</td></tr></table></div>`

	markup := FindByHeading(doc, []string{"Recent PnL"})
	if markup == "" {
		t.Fatal("标题在rune窗口内应命中")
	}
	if !strings.Contains(markup, "<table>") {
		t.Errorf("返回的markup不完整: %s", markup)
	}
}

// TestFindByHeading_无命中 测试无匹配返回空串
func TestFindByHeading_无命中(t *testing.T) {
	if FindByHeading(`<div><h2>Other</h2></div>`, []string{"Recent PnL"}) != "" {
		t.Error("无匹配应返回空串")
	}
	if FindByHeading(``, []string{"Recent PnL"}) != "" {
		t.Error("空文档应返回空串")
	}
	if FindByHeading(`<div>x</div>`, nil) != "" {
		t.Error("空标签列表应返回空串")
	}
}

// TestFindLabeledContainer_取最内层 测试向内收缩到最深命中容器
func TestFindLabeledContainer_取最内层(t *testing.T) {
	doc := `<main>
      <div class="outer">
        <div class="inner"><span>Deployed Tokens</span><table><tr><td>t</td></tr></table></div>
      </div>
    </main>`

	markup := FindLabeledContainer(doc, []string{"Deployed Tokens"})
	if markup == "" {
		t.Fatal("应命中容器")
	}
	if !strings.Contains(markup, `class="inner"`) {
		t.Errorf("应返回最内层命中容器, 实际: %s", markup)
	}
	if strings.Contains(markup, `class="outer"`) {
		t.Errorf("不应返回外层容器: %s", markup)
	}
}
