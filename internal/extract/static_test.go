package extract

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
)

// TestIsBlockedContent_拦截特征 测试防护拦截页识别
func TestIsBlockedContent_拦截特征(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"RayID拦截页", "<p>Cloudflare Ray ID: 8f2a1b3c</p>", true},
		{"质询标记", `<script src="/cf-chl-bypass/x.js"></script>`, true},
		{"封禁文案", "<h1>Sorry, you have been blocked</h1>", true},
		{"拒绝访问", "<title>Access denied</title>", true},
		{"验证码页", "<div>Please complete the CAPTCHA to continue</div>", true},
		{"正常页面", "<html><body>wallet data</body></html>", false},
		{"仅提及Cloudflare不算拦截", "<footer>Protected by Cloudflare</footer>", false},
		{"空内容", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBlockedContent(tt.content); got != tt.want {
				t.Errorf("IsBlockedContent() = %v, 期望 %v", got, tt.want)
			}
		})
	}
}

// TestStaticProbe_正常页面 测试可达页面的地址提前扫描
func TestStaticProbe_正常页面(t *testing.T) {
	addr := testAddr('A')
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><a href='/trade/" + addr + "'>x</a></body></html>"))
	}))
	defer server.Close()

	scanner, err := NewScanner("")
	if err != nil {
		t.Fatalf("创建扫描器失败: %v", err)
	}

	probe := NewStaticProbe(5*time.Second, scanner)
	result := probe.Probe(server.URL, 10)

	if !result.Reachable {
		t.Error("本地server应可达")
	}
	if result.Blocked {
		t.Error("正常页面不应判定为拦截")
	}
	if result.StatusCode != http.StatusOK {
		t.Errorf("状态码 = %d, 期望 200", result.StatusCode)
	}
	if len(result.Addresses) != 1 || result.Addresses[0] != addr {
		t.Errorf("提前扫描结果错误: %v", result.Addresses)
	}
}

// TestStaticProbe_拦截页面 测试防护拦截页的识别
func TestStaticProbe_拦截页面(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<h1>Sorry, you have been blocked</h1>Cloudflare Ray ID: 8f2a1b3c"))
	}))
	defer server.Close()

	probe := NewStaticProbe(5*time.Second, nil)
	result := probe.Probe(server.URL, 10)

	if !result.Reachable {
		t.Error("拦截页也算可达")
	}
	if !result.Blocked {
		t.Error("应判定为拦截")
	}
}

// TestStaticProbe_不可达 测试请求失败只降级为无信号
func TestStaticProbe_不可达(t *testing.T) {
	probe := NewStaticProbe(time.Second, nil)
	result := probe.Probe("http://127.0.0.1:1/unreachable", 10)

	if result.Reachable {
		t.Error("不可达目标Reachable应为false")
	}
	if result.Blocked {
		t.Error("不可达目标不应判定为拦截")
	}
}

// TestDecompressResponse_各编码 测试gzip/br/无编码解压
func TestDecompressResponse_各编码(t *testing.T) {
	payload := []byte("{\"hello\":\"world\"}")

	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	gw.Write(payload)
	gw.Close()

	var brBuf bytes.Buffer
	bw := brotli.NewWriter(&brBuf)
	bw.Write(payload)
	bw.Close()

	tests := []struct {
		name     string
		encoding string
		body     []byte
	}{
		{"gzip编码", "gzip", gzBuf.Bytes()},
		{"brotli编码", "br", brBuf.Bytes()},
		{"无编码", "", payload},
		{"未知编码原样返回", "zstd", payload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decompressResponse(tt.encoding, tt.body)
			if err != nil {
				t.Fatalf("decompressResponse() error = %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("解压结果 = %q, 期望 %q", got, payload)
			}
		})
	}
}

// TestDecompressResponse_损坏数据 测试损坏的压缩数据返回错误
func TestDecompressResponse_损坏数据(t *testing.T) {
	if _, err := decompressResponse("gzip", []byte("not gzip")); err == nil {
		t.Error("损坏的gzip数据应返回错误")
	}
}
