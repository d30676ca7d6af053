package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"   // 待执行
	TaskStatusRunning   TaskStatus = "running"   // 执行中
	TaskStatusCompleted TaskStatus = "completed" // 已完成
	TaskStatusFailed    TaskStatus = "failed"    // 失败
)

// ExtractMode 提取模式
type ExtractMode string

const (
	ModeAddress ExtractMode = "address" // 地址扫描模式
	ModePanels  ExtractMode = "panels"  // 面板提取模式
)

// ExtractStats 任务统计
type ExtractStats struct {
	Addresses       int     `json:"addresses"`        // 提取的地址数
	Panels          int     `json:"panels"`           // 面板卡片数
	PnlRows         int     `json:"pnl_rows"`         // Recent PnL行数
	TokenRows       int     `json:"token_rows"`       // Deployed Tokens行数
	SessionRestored bool    `json:"session_restored"` // 是否恢复了历史会话
	LoggedIn        bool    `json:"logged_in"`        // 是否确认登录态
	Blocked         bool    `json:"blocked"`          // 是否被Cloudflare拦截
	Duration        float64 `json:"duration"`         // 总耗时(秒)
}

// ExtractConfig 提取配置
type ExtractConfig struct {
	Count          int    `json:"count" mapstructure:"count"`                     // 期望地址数量 (默认:10)
	Headless       bool   `json:"headless" mapstructure:"headless"`               // 无头模式 (默认:true)
	AuthTimeout    int    `json:"auth_timeout" mapstructure:"auth_timeout"`       // 登录等待上限(秒) (默认:120)
	ContentTimeout int    `json:"content_timeout" mapstructure:"content_timeout"` // 内容等待上限(秒) (默认:45)
	PollInterval   int    `json:"poll_interval" mapstructure:"poll_interval"`     // 轮询间隔(毫秒) (默认:500)
	SettleTime     int    `json:"settle_time" mapstructure:"settle_time"`         // Tab点击后渲染等待(毫秒) (默认:700)
	SessionFile    string `json:"session_file" mapstructure:"session_file"`       // 会话文件路径
	ProfileDir     string `json:"profile_dir" mapstructure:"profile_dir"`         // 持久化用户数据目录
	CDPUrl         string `json:"cdp_url" mapstructure:"cdp_url"`                 // 外部浏览器CDP地址
	ChromePath     string `json:"chrome_path" mapstructure:"chrome_path"`         // 浏览器可执行文件路径
	Proxy          string `json:"proxy" mapstructure:"proxy"`                     // 代理地址 (http/socks5, 支持user:pass)
	StaticProbe    bool   `json:"static_probe" mapstructure:"static_probe"`       // 启用静态预检
}

// Validate 验证配置
func (c *ExtractConfig) Validate() error {
	if c.Count < 1 || c.Count > 500 {
		return fmt.Errorf("地址数量必须在1-500之间")
	}
	if c.AuthTimeout < 1 || c.AuthTimeout > 600 {
		return fmt.Errorf("登录等待时间必须在1-600秒之间")
	}
	if c.ContentTimeout < 1 || c.ContentTimeout > 600 {
		return fmt.Errorf("内容等待时间必须在1-600秒之间")
	}
	if c.PollInterval < 100 || c.PollInterval > 5000 {
		return fmt.Errorf("轮询间隔必须在100-5000毫秒之间")
	}
	if c.SettleTime < 0 || c.SettleTime > 10000 {
		return fmt.Errorf("渲染等待时间必须在0-10000毫秒之间")
	}
	if c.Proxy != "" {
		parsed, err := url.Parse(c.Proxy)
		if err != nil {
			return fmt.Errorf("代理地址无效: %w", err)
		}
		switch parsed.Scheme {
		case "http", "https", "socks5":
		default:
			return fmt.Errorf("代理协议必须是http/https/socks5, 当前: %s", parsed.Scheme)
		}
	}
	return nil
}

// ExtractTask 提取任务
type ExtractTask struct {
	// 基本信息
	ID          string     `json:"id"`                     // 任务唯一ID (UUID)
	TargetURL   string     `json:"target_url"`             // 目标URL
	Domain      string     `json:"domain"`                 // 解析的域名
	CreatedAt   time.Time  `json:"created_at"`             // 创建时间
	StartedAt   *time.Time `json:"started_at,omitempty"`   // 开始时间
	CompletedAt *time.Time `json:"completed_at,omitempty"` // 完成时间

	// 配置参数
	Config ExtractConfig `json:"config"` // 提取配置

	// 执行状态
	Status TaskStatus  `json:"status"` // 任务状态
	Mode   ExtractMode `json:"mode"`   // 提取模式

	// 统计信息
	Stats ExtractStats `json:"stats"` // 任务统计

	// 错误信息
	ErrorMessage string `json:"error_message,omitempty"` // 错误消息
}

// NewExtractTask 创建新任务
func NewExtractTask(targetURL string, mode ExtractMode, config ExtractConfig) (*ExtractTask, error) {
	if err := ValidateURL(targetURL); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	parsed, _ := url.Parse(targetURL)
	domain := parsed.Host

	return &ExtractTask{
		ID:        generateID(),
		TargetURL: targetURL,
		Domain:    domain,
		CreatedAt: time.Now(),
		Config:    config,
		Status:    TaskStatusPending,
		Mode:      mode,
		Stats:     ExtractStats{},
	}, nil
}

// ToJSON 序列化为JSON
func (t *ExtractTask) ToJSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// FromJSON 从JSON反序列化
func (t *ExtractTask) FromJSON(data []byte) error {
	return json.Unmarshal(data, t)
}
