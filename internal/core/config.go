package core

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RecoveryAshes/GmgnXtract/internal/models"
	"github.com/RecoveryAshes/GmgnXtract/internal/utils"
	"github.com/spf13/viper"
)

// Config 应用程序配置
type Config struct {
	Browser   BrowserConfig   `mapstructure:"browser"`
	Wait      WaitConfig      `mapstructure:"wait"`
	Scan      ScanConfig      `mapstructure:"scan"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Resource  ResourceConfig  `mapstructure:"resource"`
	Selectors SelectorsConfig `mapstructure:"selectors"`
}

// BrowserConfig 浏览器配置
type BrowserConfig struct {
	Headless   bool   `mapstructure:"headless"`
	ChromePath string `mapstructure:"chrome_path"`
	Proxy      string `mapstructure:"proxy"`
	CDPUrl     string `mapstructure:"cdp_url"`
	ProfileDir string `mapstructure:"profile_dir"`
}

// WaitConfig 等待时长配置
type WaitConfig struct {
	AuthTimeout    int `mapstructure:"auth_timeout"`     // 登录等待上限(秒)
	ContentTimeout int `mapstructure:"content_timeout"`  // 内容等待上限(秒)
	PollIntervalMs int `mapstructure:"poll_interval_ms"` // 轮询间隔(毫秒)
	SettleMs       int `mapstructure:"settle_ms"`        // Tab点击后渲染等待(毫秒)
}

// ScanConfig 地址扫描配置
type ScanConfig struct {
	Count       int  `mapstructure:"count"`        // 期望地址数量
	StaticProbe bool `mapstructure:"static_probe"` // 启用静态预检
}

// OutputConfig 输出配置
type OutputConfig struct {
	Dir         string `mapstructure:"dir"`          // 面板模式输出目录
	SessionFile string `mapstructure:"session_file"` // 会话文件路径
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// ResourceConfig 资源监控配置
type ResourceConfig struct {
	SafetyThresholdMB int `mapstructure:"safety_threshold_mb"`
	CPULoadThreshold  int `mapstructure:"cpu_load_threshold"`
	SampleIntervalS   int `mapstructure:"sample_interval_s"`
}

// SelectorsConfig 选择器配置文件位置
type SelectorsConfig struct {
	File string `mapstructure:"file"`
}

// LoadConfig 加载配置文件
// 文件缺失不是错误, 使用默认值继续
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".gmgnxtract"))
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在, 使用默认值
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 浏览器配置默认值
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.chrome_path", "")
	v.SetDefault("browser.proxy", "")
	v.SetDefault("browser.cdp_url", "")
	v.SetDefault("browser.profile_dir", "")

	// 等待配置默认值
	v.SetDefault("wait.auth_timeout", 120)
	v.SetDefault("wait.content_timeout", 45)
	v.SetDefault("wait.poll_interval_ms", 500)
	v.SetDefault("wait.settle_ms", 700)

	// 扫描配置默认值
	v.SetDefault("scan.count", 10)
	v.SetDefault("scan.static_probe", true)

	// 输出配置默认值
	v.SetDefault("output.dir", "wallet_panels")
	v.SetDefault("output.session_file", ".sessions/gmgn_ai_session.json")

	// 日志配置默认值
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	// 资源监控默认值
	v.SetDefault("resource.safety_threshold_mb", 300)
	v.SetDefault("resource.cpu_load_threshold", 90)
	v.SetDefault("resource.sample_interval_s", 2)

	// 选择器配置文件默认值
	v.SetDefault("selectors.file", "configs/selectors.yaml")
}

// ExtractConfig 组装提取配置 (供任务验证与运行器使用)
func (c *Config) ExtractConfig() models.ExtractConfig {
	return models.ExtractConfig{
		Count:          c.Scan.Count,
		Headless:       c.Browser.Headless,
		AuthTimeout:    c.Wait.AuthTimeout,
		ContentTimeout: c.Wait.ContentTimeout,
		PollInterval:   c.Wait.PollIntervalMs,
		SettleTime:     c.Wait.SettleMs,
		SessionFile:    c.Output.SessionFile,
		ProfileDir:     c.Browser.ProfileDir,
		CDPUrl:         c.Browser.CDPUrl,
		ChromePath:     c.Browser.ChromePath,
		Proxy:          c.Browser.Proxy,
		StaticProbe:    c.Scan.StaticProbe,
	}
}

// LogConfig 组装日志配置
func (c *Config) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
	}
}

// SampleInterval 资源采样间隔
func (c *Config) SampleInterval() time.Duration {
	s := c.Resource.SampleIntervalS
	if s < 1 {
		s = 1
	}
	return time.Duration(s) * time.Second
}

// MergeCLIFlags 合并命令行参数到配置
// 只有显式给出的参数才覆盖配置文件; 布尔类参数(headless/static-probe)
// 区分不了"没传"和"传了默认值", 由调用方用Flags().Changed单独处理
func (c *Config) MergeCLIFlags(
	count int,
	sessionFile string,
	profileDir string,
	cdpURL string,
	chromePath string,
	proxy string,
	contentTimeout int,
	outDir string,
) {
	if count > 0 {
		c.Scan.Count = count
	}
	if sessionFile != "" {
		c.Output.SessionFile = sessionFile
	}
	if profileDir != "" {
		c.Browser.ProfileDir = profileDir
	}
	if cdpURL != "" {
		c.Browser.CDPUrl = cdpURL
	}
	if chromePath != "" {
		c.Browser.ChromePath = chromePath
	}
	if proxy != "" {
		c.Browser.Proxy = proxy
	}
	if contentTimeout > 0 {
		c.Wait.ContentTimeout = contentTimeout
	}
	if outDir != "" {
		c.Output.Dir = outDir
	}
}
