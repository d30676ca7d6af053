package models

import (
	"encoding/json"
	"time"
)

// RunReport 运行报告
// 面板模式下写入输出目录的run_report.json
type RunReport struct {
	// 任务信息
	TaskID    string      `json:"task_id"`
	TargetURL string      `json:"target_url"`
	Domain    string      `json:"domain"`
	Mode      ExtractMode `json:"mode"`

	// 时间信息
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  float64   `json:"duration"` // 秒

	// 统计信息
	Stats ExtractStats `json:"stats"`

	// 输出文件列表
	OutputFiles []string `json:"output_files"`
	OutDir      string   `json:"out_dir"`

	// 配置快照
	Config ExtractConfig `json:"config"`
}

// ToJSON 序列化为JSON
func (r *RunReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *RunReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
