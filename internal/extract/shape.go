package extract

import (
	"strings"

	"github.com/RecoveryAshes/GmgnXtract/internal/models"
)

// fieldMatcher 目标字段与表头关键字的配对
// 顺序即匹配顺序; 新增字段只需加一行, 不碰匹配逻辑
type fieldMatcher struct {
	field   string // ShapedRecord字段名
	keyword string // 表头小写子串关键字
	exclude string // 含此子串的表头不参与匹配 (防止关键字互相抢列)
}

// fieldMatchers 表头模糊匹配表
// "realized"排除"unreal": 否则Realized Profit会抢走Unrealized PnL列
var fieldMatchers = []fieldMatcher{
	{field: "token", keyword: "token"},
	{field: "last_active", keyword: "last active"},
	{field: "unrealized", keyword: "unreal"},
	{field: "realized_profit", keyword: "realized", exclude: "unreal"},
	{field: "total_profit", keyword: "total profit"},
	{field: "balance", keyword: "balance"},
	{field: "usd", keyword: "usd"},
	{field: "position_pct", keyword: "position"},
	{field: "holding_duration", keyword: "holding"},
	{field: "bought_avg", keyword: "bought"},
	{field: "sold_avg", keyword: "sold"},
	{field: "txs", keyword: "tx"},
}

// ShapeRows 把提取的表格归一化为固定schema的记录序列
// 表头通过大小写不敏感的子串匹配映射到目标字段, 每字段取第一个命中的列;
// 匹配不到的字段保持空串; token在无表头命中时回退取行首单元格
// 行长与表头数不一致时按下标防御性取值, 不报错
func ShapeRows(extract *models.TableExtract) []models.ShapedRecord {
	if extract == nil || len(extract.Rows) == 0 {
		return []models.ShapedRecord{}
	}

	columnIndex := mapColumns(extract.Headers)

	records := make([]models.ShapedRecord, 0, len(extract.Rows))
	for _, row := range extract.Rows {
		var rec models.ShapedRecord

		for field, idx := range columnIndex {
			if idx < len(row) {
				rec.SetField(field, row[idx])
			}
		}

		// token的位置回退: 没有表头命中时取行首
		if _, mapped := columnIndex["token"]; !mapped && len(row) > 0 {
			rec.Token = row[0]
		}

		records = append(records, rec)
	}

	return records
}

// mapColumns 表头→目标字段的列下标映射
func mapColumns(headers []string) map[string]int {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(h)
	}

	index := make(map[string]int)
	for _, m := range fieldMatchers {
		for i, h := range lowered {
			if m.exclude != "" && strings.Contains(h, m.exclude) {
				continue
			}
			if strings.Contains(h, m.keyword) {
				index[m.field] = i
				break
			}
		}
	}
	return index
}
