package extract

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RecoveryAshes/GmgnXtract/internal/utils"
	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
)

// ProbeResult 静态预检结果
// 预检只提供参考信号, 任何结论都不阻止后续浏览器流程
type ProbeResult struct {
	Reachable  bool     // 拿到了HTTP响应
	Blocked    bool     // 响应内容命中防护拦截特征
	StatusCode int      // HTTP状态码 (0表示未知)
	Addresses  []string // 原始HTML里提前扫到的地址
}

// StaticProbe 静态预检器
// 浏览器启动前用一次普通HTTP请求探测目标: 可达性、防护拦截、
// 以及SSR页面里可能直接带出的地址
type StaticProbe struct {
	timeout time.Duration
	scanner *Scanner
}

// NewStaticProbe 创建静态预检器
func NewStaticProbe(timeout time.Duration, scanner *Scanner) *StaticProbe {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &StaticProbe{
		timeout: timeout,
		scanner: scanner,
	}
}

// Probe 执行一次静态预检
// 请求失败不是错误: 站点大概率只认浏览器, 预检失败只降级为无信号
func (p *StaticProbe) Probe(targetURL string, maxAddresses int) *ProbeResult {
	result := &ProbeResult{}

	utils.Infof("🔍 静态预检启动: %s", targetURL)

	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // 代理/内网场景证书链不完整
			},
		},
		Timeout: p.timeout,
	}

	c := colly.NewCollector()
	c.SetClient(httpClient)
	c.SetRequestTimeout(p.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", utils.RandomUserAgent())
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
		utils.Debugf("预检请求: %s", r.URL.String())
	})

	c.OnResponse(func(r *colly.Response) {
		result.Reachable = true
		result.StatusCode = r.StatusCode

		body := r.Body
		if encoding := r.Headers.Get("Content-Encoding"); encoding != "" {
			decompressed, err := decompressResponse(encoding, r.Body)
			if err != nil {
				utils.Warnf("预检响应解压失败 (编码=%s): %v", encoding, err)
			} else {
				body = decompressed
			}
		}

		content := string(body)
		if IsBlockedContent(content) {
			utils.Warnf("⚠️ 静态预检命中防护拦截特征 (HTTP %d)", r.StatusCode)
			result.Blocked = true
			return
		}

		if p.scanner != nil && maxAddresses > 0 {
			result.Addresses = p.scanner.ScanText(content, "", maxAddresses)
			if len(result.Addresses) > 0 {
				utils.Infof("✨ 静态预检提前扫到%d个地址", len(result.Addresses))
			}
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			result.Reachable = true
			result.StatusCode = r.StatusCode
			// 防护页常以403/503返回, 正文仍然值得检查
			if IsBlockedContent(string(r.Body)) {
				result.Blocked = true
			}
		}
		utils.Debugf("静态预检请求失败 [%s]: %v", targetURL, err)
	})

	if err := c.Visit(targetURL); err != nil {
		utils.Debugf("静态预检不可用 [%s]: %v", targetURL, err)
		return result
	}
	c.Wait()

	utils.Infof("静态预检完成: 可达=%v, 拦截=%v, 状态码=%d, 地址=%d",
		result.Reachable, result.Blocked, result.StatusCode, len(result.Addresses))
	return result
}

// decompressResponse 根据Content-Encoding解压响应体
// 支持 gzip, deflate, br 三种编码; 未知编码原样返回
func decompressResponse(contentEncoding string, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	switch encoding {
	case "gzip":
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("gzip读取失败: %w", err)
		}
		return decompressed, nil

	case "deflate":
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("deflate读取失败: %w", err)
		}
		return decompressed, nil

	case "br":
		reader := brotli.NewReader(bytes.NewReader(body))
		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("brotli读取失败: %w", err)
		}
		return decompressed, nil

	case "":
		return body, nil

	default:
		utils.Warnf("未知的Content-Encoding: %s", contentEncoding)
		return body, nil
	}
}
