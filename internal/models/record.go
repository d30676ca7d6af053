package models

// ShapedRecord 归一化后的行记录
// 固定字段schema: 源表头通过模糊匹配映射到这些字段,
// 匹配不到的字段保持空字符串
type ShapedRecord struct {
	Token           string `json:"token"`
	LastActive      string `json:"last_active"`
	Unrealized      string `json:"unrealized"`
	RealizedProfit  string `json:"realized_profit"`
	TotalProfit     string `json:"total_profit"`
	Balance         string `json:"balance"`
	USD             string `json:"usd"`
	PositionPct     string `json:"position_pct"`
	HoldingDuration string `json:"holding_duration"`
	BoughtAvg       string `json:"bought_avg"`
	SoldAvg         string `json:"sold_avg"`
	Txs             string `json:"txs"`
}

// RecordFields 字段顺序 (CSV列顺序与JSON字段名一致)
var RecordFields = []string{
	"token",
	"last_active",
	"unrealized",
	"realized_profit",
	"total_profit",
	"balance",
	"usd",
	"position_pct",
	"holding_duration",
	"bought_avg",
	"sold_avg",
	"txs",
}

// SetField 按字段名设置值
// 未知字段名被忽略(容错, 不报错)
func (r *ShapedRecord) SetField(name, value string) {
	switch name {
	case "token":
		r.Token = value
	case "last_active":
		r.LastActive = value
	case "unrealized":
		r.Unrealized = value
	case "realized_profit":
		r.RealizedProfit = value
	case "total_profit":
		r.TotalProfit = value
	case "balance":
		r.Balance = value
	case "usd":
		r.USD = value
	case "position_pct":
		r.PositionPct = value
	case "holding_duration":
		r.HoldingDuration = value
	case "bought_avg":
		r.BoughtAvg = value
	case "sold_avg":
		r.SoldAvg = value
	case "txs":
		r.Txs = value
	}
}

// Values 按RecordFields顺序返回字段值 (用于CSV行)
func (r *ShapedRecord) Values() []string {
	return []string{
		r.Token,
		r.LastActive,
		r.Unrealized,
		r.RealizedProfit,
		r.TotalProfit,
		r.Balance,
		r.USD,
		r.PositionPct,
		r.HoldingDuration,
		r.BoughtAvg,
		r.SoldAvg,
		r.Txs,
	}
}
