package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/GmgnXtract/internal/models"
	"github.com/spf13/viper"
)

const (
	// DefaultSelectorsFile 默认选择器配置文件路径
	DefaultSelectorsFile = "configs/selectors.yaml"

	// MaxConfigFileSize 配置文件最大大小 (1MB)
	MaxConfigFileSize = 1 * 1024 * 1024
)

//go:embed selectors_template.yaml
var defaultSelectorsTemplate string

// SelectorConfig 选择器与启发式配置
// 站点DOM结构相关的全部可调项集中在这里, 组件以只读方式接收
type SelectorConfig struct {
	Selectors SelectorSet `mapstructure:"selectors"`
	Patterns  PatternSet  `mapstructure:"patterns"`
	Labels    LabelSet    `mapstructure:"labels"`
}

// SelectorSet DOM选择器集合
type SelectorSet struct {
	CardClass         string   `mapstructure:"card_class"`         // 面板卡片类名
	ContainerPriority []string `mapstructure:"container_priority"` // 回退容器优先级列表
	Avatar            []string `mapstructure:"avatar"`             // 头像元素选择器
	ConsentTexts      []string `mapstructure:"consent_texts"`      // 同意按钮文本
	ConsentSelectors  []string `mapstructure:"consent_selectors"`  // 同意按钮选择器
}

// PatternSet 文本匹配模式集合
type PatternSet struct {
	AuthKey    string   `mapstructure:"auth_key"`    // 认证键名正则
	LoginTexts []string `mapstructure:"login_texts"` // 未登录文案
	Address    string   `mapstructure:"address"`     // 地址正则 (base58形态)
}

// LabelSet 区域标题候选集合
type LabelSet struct {
	RecentPnl      []string `mapstructure:"recent_pnl"`
	DeployedTokens []string `mapstructure:"deployed_tokens"`
}

// DefaultSelectorConfig 内置默认配置
// 配置文件缺失或损坏时的兜底, 与模板内容保持一致
func DefaultSelectorConfig() *SelectorConfig {
	return &SelectorConfig{
		Selectors: SelectorSet{
			CardClass: "div.css-1ug9me3",
			ContainerPriority: []string{
				"div.css-726x7l",
				"[data-test-id='wallet-panels']",
				"div.chakra-tabs__tab-panel",
				"main",
			},
			Avatar: []string{
				"img[alt*='avatar']",
				"[class*='avatar']",
				"[data-test-id='user-avatar']",
			},
			ConsentTexts:     []string{"Accept", "Agree", "Accept All", "同意"},
			ConsentSelectors: []string{"#onetrust-accept-btn-handler"},
		},
		Patterns: PatternSet{
			AuthKey:    "auth|token|session|jwt",
			LoginTexts: []string{"log in", "login", "sign in"},
			Address:    `\b[1-9A-HJ-NP-Za-km-z]{32,44}\b`,
		},
		Labels: LabelSet{
			RecentPnl:      []string{"Recent PnL", "PnL"},
			DeployedTokens: []string{"Deployed Tokens", "Deployed"},
		},
	}
}

// SelectorLoader 选择器配置文件加载器
type SelectorLoader struct {
	configPath string
}

// NewSelectorLoader 创建加载器
func NewSelectorLoader(configPath string) *SelectorLoader {
	if configPath == "" {
		configPath = DefaultSelectorsFile
	}
	return &SelectorLoader{
		configPath: configPath,
	}
}

// EnsureConfigExists 确保配置文件存在,如不存在则自动生成模板
func (sl *SelectorLoader) EnsureConfigExists() error {
	if _, err := os.Stat(sl.configPath); os.IsNotExist(err) {
		dir := filepath.Dir(sl.configPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("无法创建配置目录 [%s]: %w", dir, err)
		}

		if err := os.WriteFile(sl.configPath, []byte(defaultSelectorsTemplate), 0644); err != nil {
			return fmt.Errorf("无法生成配置文件 [%s]: %w", sl.configPath, err)
		}
	}
	return nil
}

// ValidateFileSize 验证配置文件大小是否在限制内
func (sl *SelectorLoader) ValidateFileSize() error {
	info, err := os.Stat(sl.configPath)
	if err != nil {
		return fmt.Errorf("无法读取配置文件信息 [%s]: %w", sl.configPath, err)
	}

	if info.Size() > MaxConfigFileSize {
		return &models.ConfigError{
			FilePath: sl.configPath,
			Cause: fmt.Errorf("配置文件过大: %d 字节 (最大 %d 字节)",
				info.Size(), MaxConfigFileSize),
		}
	}

	return nil
}

// LoadConfig 加载配置文件并解析为SelectorConfig
// 执行流程:
//  1. 确保配置文件存在 (不存在则自动创建模板)
//  2. 验证文件大小是否在限制内
//  3. 使用Viper解析YAML
//  4. 对空缺项回填内置默认值
func (sl *SelectorLoader) LoadConfig() (*SelectorConfig, error) {
	// 1. 确保配置文件存在
	if err := sl.EnsureConfigExists(); err != nil {
		return nil, err
	}

	// 2. 验证文件大小
	if err := sl.ValidateFileSize(); err != nil {
		return nil, err
	}

	// 3. 使用viper解析YAML
	v := viper.New()
	v.SetConfigFile(sl.configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, &models.ConfigError{
			FilePath: sl.configPath,
			Cause:    err,
		}
	}

	var config SelectorConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, &models.ConfigError{
			FilePath: sl.configPath,
			Cause:    fmt.Errorf("配置绑定失败: %w", err),
		}
	}

	// 4. 空缺项回填默认值
	fillDefaults(&config)

	return &config, nil
}

// fillDefaults 对空缺项回填默认值
// 用户只覆盖部分项时, 其余项仍然可用
func fillDefaults(c *SelectorConfig) {
	d := DefaultSelectorConfig()

	if c.Selectors.CardClass == "" {
		c.Selectors.CardClass = d.Selectors.CardClass
	}
	if len(c.Selectors.ContainerPriority) == 0 {
		c.Selectors.ContainerPriority = d.Selectors.ContainerPriority
	}
	if len(c.Selectors.Avatar) == 0 {
		c.Selectors.Avatar = d.Selectors.Avatar
	}
	if len(c.Selectors.ConsentTexts) == 0 {
		c.Selectors.ConsentTexts = d.Selectors.ConsentTexts
	}
	if len(c.Selectors.ConsentSelectors) == 0 {
		c.Selectors.ConsentSelectors = d.Selectors.ConsentSelectors
	}
	if c.Patterns.AuthKey == "" {
		c.Patterns.AuthKey = d.Patterns.AuthKey
	}
	if len(c.Patterns.LoginTexts) == 0 {
		c.Patterns.LoginTexts = d.Patterns.LoginTexts
	}
	if c.Patterns.Address == "" {
		c.Patterns.Address = d.Patterns.Address
	}
	if len(c.Labels.RecentPnl) == 0 {
		c.Labels.RecentPnl = d.Labels.RecentPnl
	}
	if len(c.Labels.DeployedTokens) == 0 {
		c.Labels.DeployedTokens = d.Labels.DeployedTokens
	}
}
