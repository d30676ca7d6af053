package extract

import (
	"regexp"

	"github.com/RecoveryAshes/GmgnXtract/internal/utils"
	"github.com/go-rod/rod"
)

// Scanner 地址扫描器
// 按base58形态模式从页面里提取钱包地址, 只校验形态不校验checksum
type Scanner struct {
	pattern *regexp.Regexp
}

// NewScanner 创建扫描器
// pattern为空时使用默认base58模式
// 默认模式带\b边界: 交易签名等超长base58串(87-88字符)不允许被切片成假地址
func NewScanner(pattern string) (*Scanner, error) {
	if pattern == "" {
		pattern = `\b[1-9A-HJ-NP-Za-km-z]{32,44}\b`
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Scanner{pattern: re}, nil
}

// ScanText 纯文本扫描核心
// 先扫HTML源码再扫渲染文本, 保序去重, 凑满n个立即停止
// 结果长度 ≤ n; HTML侧命中排在文本侧命中之前
func (s *Scanner) ScanText(html, text string, n int) []string {
	if n < 1 {
		return []string{}
	}

	result := make([]string, 0, n)
	seen := make(map[string]bool)

	insert := func(source string) bool {
		for _, match := range s.pattern.FindAllString(source, -1) {
			if seen[match] {
				continue
			}
			seen[match] = true
			result = append(result, match)
			if len(result) >= n {
				return true
			}
		}
		return false
	}

	if insert(html) {
		return result
	}
	insert(text)
	return result
}

// ScanPage 从活动页面提取最多n个地址
// 页面取值失败时降级为空串继续, 不向上抛错
func (s *Scanner) ScanPage(page *rod.Page, n int) []string {
	html := pageHTML(page)
	text := pageText(page)

	addrs := s.ScanText(html, text, n)
	utils.Infof("🔍 地址扫描: 期望%d个, 实际%d个", n, len(addrs))
	return addrs
}

// MatchesContent 页面内容是否已出现至少一个地址
// 内容就绪轮询用的谓词
func (s *Scanner) MatchesContent(html, text string) bool {
	return s.pattern.MatchString(html) || s.pattern.MatchString(text)
}

// pageHTML 读取页面完整markup (失败返回空串)
func pageHTML(page *rod.Page) string {
	html, err := page.HTML()
	if err != nil {
		utils.Debugf("读取页面HTML失败: %v", err)
		return ""
	}
	return html
}

// pageText 读取页面可见文本 (失败返回空串)
func pageText(page *rod.Page) string {
	result, err := page.Evaluate(&rod.EvalOptions{JS: `() => document.body ? document.body.innerText : ""`})
	if err != nil {
		utils.Debugf("读取页面文本失败: %v", err)
		return ""
	}
	return result.Value.Str()
}
