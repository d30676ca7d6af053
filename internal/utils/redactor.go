package utils

import (
	"strings"
)

var (
	// SensitiveKeywords 敏感键名关键字 (用于脱敏)
	// 会话文件里的cookie名和存储键名按这些关键字判断是否敏感
	SensitiveKeywords = []string{
		"auth",
		"token",
		"session",
		"jwt",
		"key",
		"secret",
		"password",
		"credential",
	}
)

// SecretRedactor 会话凭证脱敏器
// cookie值和存储值在进入日志前先经过脱敏
type SecretRedactor struct {
	sensitiveKeywords []string
}

// NewSecretRedactor 创建脱敏器
func NewSecretRedactor() *SecretRedactor {
	return &SecretRedactor{
		sensitiveKeywords: SensitiveKeywords,
	}
}

// IsSensitiveKey 检查键名是否为敏感键
// 根据键名关键字判断
func (sr *SecretRedactor) IsSensitiveKey(name string) bool {
	nameLower := strings.ToLower(name)
	for _, keyword := range sr.sensitiveKeywords {
		if strings.Contains(nameLower, keyword) {
			return true
		}
	}
	return false
}

// RedactValue 脱敏单个值
// 根据值的格式选择不同的脱敏策略
func (sr *SecretRedactor) RedactValue(name, value string) string {
	if !sr.IsSensitiveKey(name) {
		return value
	}

	// 策略1: Bearer Token - 仅显示前缀
	if strings.HasPrefix(value, "Bearer ") {
		return "Bearer ***"
	}

	// 策略2: 长凭证 - 显示前4位+后4位
	if len(value) > 8 {
		return value[:4] + "***" + value[len(value)-4:]
	}

	// 策略3: 短凭证 - 完全隐藏
	return "***"
}

// Redact 脱敏整个键值map,返回安全的字符串map (用于日志)
func (sr *SecretRedactor) Redact(pairs map[string]string) map[string]string {
	result := make(map[string]string)
	for name, value := range pairs {
		result[name] = sr.RedactValue(name, value)
	}
	return result
}

// RedactToString 脱敏键值map并返回格式化字符串 (用于日志输出)
// 格式: "key1: value1, key2: value2, ..."
func (sr *SecretRedactor) RedactToString(pairs map[string]string) string {
	redacted := sr.Redact(pairs)
	var parts []string
	for name, value := range redacted {
		parts = append(parts, name+": "+value)
	}
	return strings.Join(parts, ", ")
}
