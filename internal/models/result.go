package models

import (
	"encoding/json"
)

// AddressResult 地址模式的stdout输出
// 失败时addresses为空数组且error非空, 进程仍以0退出
type AddressResult struct {
	Addresses []string `json:"addresses"`
	Error     string   `json:"error,omitempty"`
}

// NewAddressResult 创建地址结果 (保证addresses非nil)
func NewAddressResult() *AddressResult {
	return &AddressResult{Addresses: make([]string, 0)}
}

// ToJSON 序列化为JSON
func (r *AddressResult) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// PanelResult 面板模式的stdout输出
type PanelResult struct {
	OK             bool   `json:"ok"`
	OutDir         string `json:"outdir,omitempty"`
	Panels         string `json:"panels,omitempty"`
	RecentPnl      string `json:"recentpnl,omitempty"`
	DeployedTokens string `json:"deployedtokens,omitempty"`
	Error          string `json:"error,omitempty"`
}

// ToJSON 序列化为JSON
func (r *PanelResult) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// TableData *_data.json文件的载荷 ({headers, rows})
type TableData struct {
	Headers []string       `json:"headers"`
	Rows    []ShapedRecord `json:"rows"`
}

// CardsPayload panels.json的卡片形态载荷
type CardsPayload struct {
	Cards []string `json:"cards"`
}

// MarkupPayload panels.json/recentpnl.json/deployedtokens.json的容器形态载荷
type MarkupPayload struct {
	OuterHTML string `json:"outerHTML"`
}

// TextPayload panels_data.json的载荷
type TextPayload struct {
	Text string `json:"text"`
}
