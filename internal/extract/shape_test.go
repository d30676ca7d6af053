package extract

import (
	"testing"

	"github.com/RecoveryAshes/GmgnXtract/internal/models"
)

func TestShapeRows_FuzzyHeaderMatch(t *testing.T) {
	extract := &models.TableExtract{
		Headers: []string{"Token", "Unrealized PnL", "Bought Avg"},
		Rows:    [][]string{{"ABC123", "+12%", "$0.01"}},
	}

	records := ShapeRows(extract)
	if len(records) != 1 {
		t.Fatalf("记录数 = %d, want 1", len(records))
	}

	rec := records[0]
	if rec.Token != "ABC123" {
		t.Errorf("token = %q, want %q", rec.Token, "ABC123")
	}
	if rec.Unrealized != "+12%" {
		t.Errorf("unrealized = %q, want %q", rec.Unrealized, "+12%")
	}
	if rec.BoughtAvg != "$0.01" {
		t.Errorf("bought_avg = %q, want %q", rec.BoughtAvg, "$0.01")
	}

	// 其余字段必须全空
	for _, got := range []string{
		rec.LastActive, rec.RealizedProfit, rec.TotalProfit, rec.Balance,
		rec.USD, rec.PositionPct, rec.HoldingDuration, rec.SoldAvg, rec.Txs,
	} {
		if got != "" {
			t.Errorf("未映射字段应为空串, got %q", got)
		}
	}
}

func TestShapeRows_HeaderlessTokenFallback(t *testing.T) {
	extract := &models.TableExtract{
		Headers: []string{},
		Rows:    [][]string{{"XYZ999", "foo", "bar"}},
	}

	records := ShapeRows(extract)
	if len(records) != 1 {
		t.Fatalf("记录数 = %d, want 1", len(records))
	}

	rec := records[0]
	if rec.Token != "XYZ999" {
		t.Errorf("token回退 = %q, want %q", rec.Token, "XYZ999")
	}
	for _, got := range []string{
		rec.LastActive, rec.Unrealized, rec.RealizedProfit, rec.TotalProfit,
		rec.Balance, rec.USD, rec.PositionPct, rec.HoldingDuration,
		rec.BoughtAvg, rec.SoldAvg, rec.Txs,
	} {
		if got != "" {
			t.Errorf("无表头时除token外应全空, got %q", got)
		}
	}
}

func TestShapeRows_RealizedDoesNotStealUnrealized(t *testing.T) {
	// 只有Unrealized PnL列时, realized_profit不能抢这列
	extract := &models.TableExtract{
		Headers: []string{"Token", "Unrealized PnL"},
		Rows:    [][]string{{"T1", "+5%"}},
	}

	rec := ShapeRows(extract)[0]
	if rec.Unrealized != "+5%" {
		t.Errorf("unrealized = %q, want %q", rec.Unrealized, "+5%")
	}
	if rec.RealizedProfit != "" {
		t.Errorf("realized_profit = %q, want 空串", rec.RealizedProfit)
	}

	// 两列都有时各取各的
	extract = &models.TableExtract{
		Headers: []string{"Unrealized PnL", "Realized Profit"},
		Rows:    [][]string{{"+5%", "-3%"}},
	}
	rec = ShapeRows(extract)[0]
	if rec.Unrealized != "+5%" || rec.RealizedProfit != "-3%" {
		t.Errorf("unrealized = %q, realized_profit = %q", rec.Unrealized, rec.RealizedProfit)
	}
}

func TestShapeRows_RaggedRows(t *testing.T) {
	// 行比表头短时按下标防御性取值
	extract := &models.TableExtract{
		Headers: []string{"Token", "Balance", "USD"},
		Rows: [][]string{
			{"T1", "100", "$5"},
			{"T2"},
			{},
		},
	}

	records := ShapeRows(extract)
	if len(records) != 3 {
		t.Fatalf("记录数 = %d, want 3", len(records))
	}

	if records[0].Balance != "100" || records[0].USD != "$5" {
		t.Errorf("完整行映射错误: %+v", records[0])
	}
	if records[1].Token != "T2" || records[1].Balance != "" {
		t.Errorf("短行应只映射存在的列: %+v", records[1])
	}
	if records[2].Token != "" {
		t.Errorf("空行全字段应为空: %+v", records[2])
	}
}

func TestShapeRows_CaseInsensitiveAndRenames(t *testing.T) {
	// 表头改名/大小写变化仍能命中关键字
	extract := &models.TableExtract{
		Headers: []string{"TOKEN NAME", "30d TXs", "Holding Duration (days)"},
		Rows:    [][]string{{"PEPE", "42", "12d"}},
	}

	rec := ShapeRows(extract)[0]
	if rec.Token != "PEPE" {
		t.Errorf("token = %q, want %q", rec.Token, "PEPE")
	}
	if rec.Txs != "42" {
		t.Errorf("txs = %q, want %q", rec.Txs, "42")
	}
	if rec.HoldingDuration != "12d" {
		t.Errorf("holding_duration = %q, want %q", rec.HoldingDuration, "12d")
	}
}

func TestShapeRows_EmptyInput(t *testing.T) {
	if got := ShapeRows(nil); len(got) != 0 {
		t.Errorf("nil输入应返回空切片")
	}
	if got := ShapeRows(&models.TableExtract{}); len(got) != 0 {
		t.Errorf("空表应返回空切片")
	}
}
