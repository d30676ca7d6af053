package main

import (
	"fmt"
	"sort"

	"github.com/RecoveryAshes/GmgnXtract/internal/core"
	"github.com/RecoveryAshes/GmgnXtract/internal/session"
	"github.com/RecoveryAshes/GmgnXtract/internal/utils"
	"github.com/spf13/cobra"
)

var sessionPath string

// sessionCmd 会话文件检查子命令
// 不碰浏览器, 只读会话文件并输出脱敏后的内容概览
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "检查会话文件状态",
	Long: `读取会话文件并显示脱敏后的内容概览。

用于排查"为什么没有免登录":
  • cookie数量与名称 (值已脱敏)
  • localStorage/sessionStorage键数量
  • 是否存在认证类键 (auth/token/jwt等关键字)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := sessionPath
		if path == "" {
			appConfig, err := core.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}
			path = appConfig.Output.SessionFile
		}

		store := session.NewStore(path)
		state, ok := store.Load()
		if !ok {
			utils.Warnf("⚠️ 会话文件不可用: %s", store.Path())
			fmt.Println("无可用会话, 下次运行需要交互登录")
			return nil
		}

		redactor := utils.NewSecretRedactor()
		authHints := 0

		fmt.Printf("会话文件: %s\n", store.Path())
		fmt.Printf("cookie: %d个\n", len(state.Cookies))
		for _, c := range state.Cookies {
			if redactor.IsSensitiveKey(c.Name) {
				authHints++
			}
			fmt.Printf("  %s = %s (domain=%s)\n", c.Name, redactor.RedactValue(c.Name, c.Value), c.Domain)
		}

		fmt.Printf("localStorage: %d个键\n", len(state.Storage.Local))
		for _, k := range sortedKeys(state.Storage.Local) {
			if redactor.IsSensitiveKey(k) {
				authHints++
			}
			fmt.Printf("  %s = %s\n", k, redactor.RedactValue(k, state.Storage.Local[k]))
		}

		fmt.Printf("sessionStorage: %d个键\n", len(state.Storage.Session))
		for _, k := range sortedKeys(state.Storage.Session) {
			fmt.Printf("  %s = %s\n", k, redactor.RedactValue(k, state.Storage.Session[k]))
		}

		if authHints > 0 {
			fmt.Printf("✅ 发现%d个认证类键, 会话恢复大概率免登录\n", authHints)
		} else {
			fmt.Println("⚠️ 未发现认证类键, 会话恢复可能仍需登录")
		}
		return nil
	},
}

// sortedKeys 稳定的键输出顺序
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	sessionCmd.Flags().StringVar(&sessionPath, "session", "", "会话文件路径 (默认取配置值)")
}
