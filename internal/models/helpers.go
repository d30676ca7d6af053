package models

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const (
	// SiteOrigin 目标站点源
	SiteOrigin = "https://gmgn.ai"

	// DefaultTradeURL 默认交易页 (Solana链)
	DefaultTradeURL = "https://gmgn.ai/?chain=sol"
)

// ValidateURL 验证URL
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("无效的URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL必须是HTTP或HTTPS协议")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL必须包含主机名")
	}
	return nil
}

// generateID 生成唯一ID
func generateID() string {
	return uuid.New().String()
}

// TradeURL 构造交易页URL
func TradeURL(key string) string {
	return fmt.Sprintf("%s/trade/%s", SiteOrigin, key)
}

// WalletURL 构造钱包页URL (路径段为 <key>_<wallet>)
func WalletURL(key, wallet string) string {
	return fmt.Sprintf("%s/sol/address/%s_%s", SiteOrigin, key, wallet)
}

// IsWalletURL 判断URL是否为钱包页
// 钱包页自动启用面板提取模式
func IsWalletURL(urlStr string) bool {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	return strings.Contains(parsed.Path, "/sol/address/")
}
