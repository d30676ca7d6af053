package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// [STATUS]事件协议: GUI包装器从stderr逐行读取这些事件
// stdout只承载结果JSON, 所有状态通知都走stderr
const (
	StatusPageOpened   = "PAGE_OPENED"   // 页面已打开
	StatusWaitingLogin = "WAITING_LOGIN" // 等待用户登录
	StatusLoggedIn     = "LOGGED_IN"     // 已确认登录态
	StatusCountdown    = "COUNTDOWN"     // 登录后倒计时
	StatusBlocked      = "BLOCKED"       // 被Cloudflare拦截
	StatusDone         = "DONE"          // 运行结束
)

// Status 输出一条[STATUS]事件到stderr
func Status(event string) {
	fmt.Fprintf(os.Stderr, "[STATUS] %s\n", event)
}

// Statusf 输出带参数的[STATUS]事件到stderr
func Statusf(event string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[STATUS] %s %s\n", event, fmt.Sprint(args...))
}

// Countdown 登录成功后的倒计时
// 给站点留出完成登录后重定向的时间, 每秒发一条COUNTDOWN事件
func Countdown(seconds int) {
	bar := NewProgressBar(seconds, "登录后等待")
	for i := seconds; i >= 1; i-- {
		Statusf(StatusCountdown, i)
		_ = bar.Add(1)
		time.Sleep(1 * time.Second)
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)
}

// NewProgressBar 创建进度条
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
