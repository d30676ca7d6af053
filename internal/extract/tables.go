package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/RecoveryAshes/GmgnXtract/internal/models"
	"golang.org/x/net/html"
)

const (
	// headingPrefixLen 标题匹配只看容器可见文本的前缀长度
	headingPrefixLen = 160

	// heuristicMinChildren 启发式分组: 直接子元素超过该数才视为行容器
	heuristicMinChildren = 5

	// heuristicMaxFragments 启发式分组: 每行最多提取的文本片段数
	heuristicMaxFragments = 20

	// heuristicMinFragments 启发式分组: 少于该数的行视为噪声丢弃
	heuristicMinFragments = 3
)

// ParseTable 从容器markup解析表格数据
// 回退链: 语义化<table> → ARIA行角色 → 子元素数量启发式分组
// 三种来源产出同一种TableExtract形态; 解析失败返回空表而不是错误
func ParseTable(markup string) *models.TableExtract {
	extract := &models.TableExtract{
		Headers: []string{},
		Rows:    [][]string{},
		Source:  models.SourceNone,
	}

	if strings.TrimSpace(markup) == "" {
		return extract
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return extract
	}

	// 1. 语义化<table>
	if table := findFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "table"
	}); table != nil {
		parseSemanticTable(table, extract)
		if !extract.IsEmpty() || len(extract.Headers) > 0 {
			extract.Source = models.SourceSemantic
			return extract
		}
	}

	// 2. ARIA行角色
	parseAriaRows(doc, extract)
	if !extract.IsEmpty() {
		extract.Source = models.SourceAriaGrid
		return extract
	}

	// 3. 启发式分组
	parseHeuristicGroup(doc, extract)
	if !extract.IsEmpty() {
		extract.Source = models.SourceHeuristic
	}
	return extract
}

// parseSemanticTable 解析语义化表格
// thead的th为表头, tbody的tr为行; 参差行原样保留
func parseSemanticTable(table *html.Node, extract *models.TableExtract) {
	var headerRow *html.Node

	if thead := findFirst(table, matchElement("thead")); thead != nil {
		headerRow = findFirst(thead, matchElement("tr"))
	}
	// 没有thead时, 首个含th的tr视为表头行
	if headerRow == nil {
		if tr := findFirst(table, matchElement("tr")); tr != nil {
			if findFirst(tr, matchElement("th")) != nil {
				headerRow = tr
			}
		}
	}

	if headerRow != nil {
		for _, cell := range findAll(headerRow, func(n *html.Node) bool {
			return n.Type == html.ElementNode && (n.Data == "th" || n.Data == "td")
		}) {
			extract.Headers = append(extract.Headers, strings.TrimSpace(visibleText(cell)))
		}
	}

	bodyScope := table
	if tbody := findFirst(table, matchElement("tbody")); tbody != nil {
		bodyScope = tbody
	}

	for _, tr := range findAll(bodyScope, matchElement("tr")) {
		if tr == headerRow {
			continue
		}
		cells := findAll(tr, func(n *html.Node) bool {
			return n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th")
		})
		if len(cells) == 0 {
			continue
		}
		row := make([]string, 0, len(cells))
		for _, cell := range cells {
			row = append(row, strings.TrimSpace(visibleText(cell)))
		}
		extract.Rows = append(extract.Rows, row)
	}
}

// parseAriaRows 解析ARIA行角色元素
// [role=row]为行, [role=cell]/[role=gridcell]为单元格,
// [role=columnheader]所在的行为表头行
func parseAriaRows(doc *html.Node, extract *models.TableExtract) {
	rows := findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attrValue(n, "role") == "row"
	})

	for _, row := range rows {
		headers := findAll(row, func(n *html.Node) bool {
			return n.Type == html.ElementNode && attrValue(n, "role") == "columnheader"
		})
		if len(headers) > 0 && len(extract.Headers) == 0 {
			for _, h := range headers {
				extract.Headers = append(extract.Headers, strings.TrimSpace(visibleText(h)))
			}
			continue
		}

		cells := findAll(row, func(n *html.Node) bool {
			if n.Type != html.ElementNode {
				return false
			}
			role := attrValue(n, "role")
			return role == "cell" || role == "gridcell"
		})
		if len(cells) == 0 {
			continue
		}
		cellTexts := make([]string, 0, len(cells))
		for _, c := range cells {
			cellTexts = append(cellTexts, strings.TrimSpace(visibleText(c)))
		}
		extract.Rows = append(extract.Rows, cellTexts)
	}
}

// parseHeuristicGroup 子元素数量启发式分组
// 取第一个直接非script/style子元素数>5的容器, 每个子元素视为一行,
// 行内容取叶级文本片段(每行最多20个); 片段数<3的行视为噪声丢弃
func parseHeuristicGroup(doc *html.Node, extract *models.TableExtract) {
	containers := findAll(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		switch n.Data {
		case "div", "section", "ul", "ol", "tbody":
			return true
		}
		return false
	})

	for _, container := range containers {
		children := elementChildren(container)
		if len(children) <= heuristicMinChildren {
			continue
		}

		rows := make([][]string, 0, len(children))
		for _, child := range children {
			fragments := leafFragments(child, heuristicMaxFragments)
			if len(fragments) < heuristicMinFragments {
				continue
			}
			rows = append(rows, fragments)
		}

		if len(rows) > 0 {
			extract.Rows = rows
			return
		}
	}
}

// FindByHeading 按标题文本定位容器并返回其markup
// 对候选容器(section/div/article)按文档序扫描, 取前缀可见文本
// 命中标签交替模式的第一个; 无命中返回空串
func FindByHeading(docHTML string, labels []string) string {
	if strings.TrimSpace(docHTML) == "" || len(labels) == 0 {
		return ""
	}

	pattern, err := labelPattern(labels)
	if err != nil {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(docHTML))
	if err != nil {
		return ""
	}

	candidates := findAll(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		switch n.Data {
		case "section", "div", "article":
			return true
		}
		return false
	})

	for _, c := range candidates {
		// 前缀窗口按rune截断, 多字节字符不被切半
		prefix := visibleText(c)
		if runes := []rune(prefix); len(runes) > headingPrefixLen {
			prefix = string(runes[:headingPrefixLen])
		}
		if pattern.MatchString(prefix) {
			return renderNode(c)
		}
	}
	return ""
}

// FindLabeledContainer 返回文本命中标签的最内层候选容器markup
// 表格提取用: 先命中的外层容器继续向内收缩, 缩小解析范围
func FindLabeledContainer(docHTML string, labels []string) string {
	if strings.TrimSpace(docHTML) == "" || len(labels) == 0 {
		return ""
	}

	pattern, err := labelPattern(labels)
	if err != nil {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(docHTML))
	if err != nil {
		return ""
	}

	var best *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "section", "div", "article", "main":
				if pattern.MatchString(visibleText(n)) {
					best = n // 更深的命中覆盖更浅的
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if best == nil {
		return ""
	}
	return renderNode(best)
}

// labelPattern 标签列表→忽略大小写的交替正则
func labelPattern(labels []string) (*regexp.Regexp, error) {
	quoted := make([]string, 0, len(labels))
	for _, l := range labels {
		quoted = append(quoted, regexp.QuoteMeta(l))
	}
	return regexp.Compile("(?i)(" + strings.Join(quoted, "|") + ")")
}

// visibleText 节点的可见文本 (跳过script/style)
func visibleText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
			return
		}
		if node.Type == html.TextNode {
			text := strings.TrimSpace(node.Data)
			if text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// leafFragments 收集节点下的非空文本片段, 最多max个
func leafFragments(n *html.Node, max int) []string {
	fragments := make([]string, 0, max)
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if len(fragments) >= max {
			return
		}
		if node.Type == html.ElementNode && (node.Data == "script" || node.Data == "style") {
			return
		}
		if node.Type == html.TextNode {
			text := strings.TrimSpace(node.Data)
			if text != "" {
				fragments = append(fragments, text)
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return fragments
}

// elementChildren 直接子元素 (跳过script/style和非元素节点)
func elementChildren(n *html.Node) []*html.Node {
	children := make([]*html.Node, 0)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.Data == "script" || c.Data == "style" {
			continue
		}
		children = append(children, c)
	}
	return children
}

// findFirst 深度优先找第一个命中节点
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// findAll 深度优先收集所有命中节点 (文档序)
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var result []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if match(node) {
			result = append(result, node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return result
}

// matchElement 按标签名匹配元素节点
func matchElement(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

// attrValue 读取属性值 (不存在返回空串)
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// renderNode 节点的outerHTML (渲染失败返回空串)
func renderNode(n *html.Node) string {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}

// describeSource 表格来源的日志描述
func describeSource(extract *models.TableExtract) string {
	return fmt.Sprintf("source=%s headers=%d rows=%d",
		extract.Source, len(extract.Headers), len(extract.Rows))
}
