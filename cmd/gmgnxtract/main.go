package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RecoveryAshes/GmgnXtract/internal/core"
	"github.com/RecoveryAshes/GmgnXtract/internal/models"
	"github.com/RecoveryAshes/GmgnXtract/internal/utils"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	logLevel   string
	verbose    bool

	// 提取参数
	targetURL   string
	count       int
	panelsMode  bool
	outputDir   string
	headless    bool
	sessionFile string
	profileDir  string
	cdpURL      string
	chromePath  string
	proxyURL    string
	timeout     int
	staticProbe bool
)

var rootCmd = &cobra.Command{
	Use:   "gmgnxtract",
	Short: "gmgn.ai钱包地址与面板数据提取工具",
	Long: `GmgnXtract - gmgn.ai自动化提取工具 (Go版本)

围绕真实浏览器会话从gmgn.ai提取数据,支持:
  • 交易页钱包地址扫描 (base58形态, 保序去重)
  • 钱包页面板快照与表格归一化 (Recent PnL / Deployed Tokens)
  • 会话持久化: 登录一次, 后续运行自动恢复
  • CDP附着 / 持久化profile / 普通启动三级浏览器接入
  • Cloudflare拦截检测与静态预检

输出契约:
  stdout只输出单个结果JSON, 进程总是以0退出, 失败写进error字段;
  日志与[STATUS]事件走stderr, 适合被上游程序管道消费。

使用示例:
  # 扫描默认交易页的前10个钱包地址
  gmgnxtract

  # 指定页面和数量
  gmgnxtract -u "https://gmgn.ai/?chain=sol" -n 20

  # 提取钱包页面板 (钱包页URL自动进入面板模式)
  gmgnxtract -u "https://gmgn.ai/sol/address/xxx_yyy" -o wallet_panels

  # 附着到已登录的浏览器
  gmgnxtract --cdp ws://127.0.0.1:9222 -n 50

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		appConfig, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		logConfig := appConfig.LogConfig()
		if logLevel != "" {
			logConfig.Level = logLevel
		}
		if verbose {
			logConfig.Level = "debug"
		}

		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Ctrl+C取消上下文, 让运行器收尾并输出错误信封
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			utils.Warnf("收到中断信号: %v, 正在优雅关闭...", sig)
			cancel()
		}()

		appConfig, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		appConfig.MergeCLIFlags(count, sessionFile, profileDir,
			cdpURL, chromePath, proxyURL, timeout, outputDir)
		// 布尔flag的默认值和配置值无法区分, 只在显式传入时覆盖
		if cmd.Flags().Changed("headless") {
			appConfig.Browser.Headless = headless
		}
		if cmd.Flags().Changed("static-probe") {
			appConfig.Scan.StaticProbe = staticProbe
		}

		// 无协议的URL补https
		normalized, err := utils.NormalizeURL(targetURL)
		if err == nil {
			targetURL = normalized
		}

		// 钱包页URL自动进入面板模式
		mode := models.ModeAddress
		if panelsMode || models.IsWalletURL(targetURL) {
			mode = models.ModePanels
		}

		task, err := models.NewExtractTask(targetURL, mode, appConfig.ExtractConfig())
		if err != nil {
			// 参数不合法也走stdout信封, 上游消费者永远拿到JSON
			printEnvelope(mode, err)
			return nil
		}

		selectors := core.NewSelectorManager(appConfig.Selectors.File).Load()

		runner := core.NewRunner(task, appConfig, selectors)
		fmt.Println(string(runner.Run(ctx)))
		return nil
	},
}

// printEnvelope 任务创建失败时的stdout错误信封
func printEnvelope(mode models.ExtractMode, err error) {
	utils.Errorf("❌ 任务创建失败: %v", err)

	if mode == models.ModePanels {
		result := &models.PanelResult{OK: false, Error: err.Error()}
		if data, jerr := result.ToJSON(); jerr == nil {
			fmt.Println(string(data))
			return
		}
	}
	result := models.NewAddressResult()
	result.Error = err.Error()
	if data, jerr := result.ToJSON(); jerr == nil {
		fmt.Println(string(data))
		return
	}
	fmt.Println(`{"addresses":[],"error":"结果序列化失败"}`)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("GmgnXtract %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
		fmt.Println("Go实现版本 - gmgn.ai数据提取工具")
	},
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式 (等价于--log-level debug)")

	// 提取参数
	rootCmd.Flags().StringVarP(&targetURL, "url", "u", models.DefaultTradeURL, "目标URL")
	rootCmd.Flags().IntVarP(&count, "count", "n", 0, "期望提取的地址数量 (默认取配置值)")
	rootCmd.Flags().BoolVar(&panelsMode, "panels", false, "强制面板提取模式 (钱包页URL自动启用)")
	rootCmd.Flags().StringVarP(&outputDir, "outdir", "o", "", "面板模式输出目录; 地址模式下以.csv结尾时导出CSV")
	rootCmd.Flags().BoolVar(&headless, "headless", true, "无头浏览器模式 (交互登录时用=false)")
	rootCmd.Flags().StringVar(&sessionFile, "session", "", "会话文件路径")
	rootCmd.Flags().StringVar(&profileDir, "profile", "", "持久化用户数据目录")
	rootCmd.Flags().StringVar(&cdpURL, "cdp", "", "附着到既有浏览器的CDP地址")
	rootCmd.Flags().StringVar(&chromePath, "chrome", "", "浏览器可执行文件路径")
	rootCmd.Flags().StringVar(&proxyURL, "proxy", "", "代理地址 (http/socks5, 支持user:pass)")
	rootCmd.Flags().IntVar(&timeout, "timeout", 0, "内容等待上限(秒)")
	rootCmd.Flags().BoolVar(&staticProbe, "static-probe", true, "浏览器启动前先做静态预检")

	// 添加子命令
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(sessionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
