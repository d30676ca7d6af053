package models

// TableSource 表格结构来源
// 提取时按 semantic → aria → heuristic 的顺序回退
type TableSource string

const (
	SourceSemantic  TableSource = "semantic"  // 语义化<table>
	SourceAriaGrid  TableSource = "aria"      // ARIA行角色元素
	SourceHeuristic TableSource = "heuristic" // 子元素数量启发式分组
	SourceNone      TableSource = "none"      // 未找到表格结构
)

// TableExtract 提取的表格数据
// 行与表头允许长度不一致(不强制矩形), 保留原始提取结果
type TableExtract struct {
	Headers []string    `json:"headers"`
	Rows    [][]string  `json:"rows"`
	Source  TableSource `json:"-"`
}

// IsEmpty 检查是否提取到任何行
func (t *TableExtract) IsEmpty() bool {
	return len(t.Rows) == 0
}

// PanelBundle 面板原始快照
// 仅用于归档输出, 与归一化行记录无结构关系
type PanelBundle struct {
	Cards          []string // 卡片元素的outerHTML (如存在则为规范载荷)
	OuterHTML      string   // 回退容器的outerHTML (无卡片时使用)
	RecentPnl      string   // Recent PnL区域outerHTML
	DeployedTokens string   // Deployed Tokens区域outerHTML
	Text           string   // 整页可见文本
}

// HasCards 检查是否采集到卡片元素
func (b *PanelBundle) HasCards() bool {
	return len(b.Cards) > 0
}
