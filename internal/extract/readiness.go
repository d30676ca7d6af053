package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/RecoveryAshes/GmgnXtract/internal/config"
	"github.com/RecoveryAshes/GmgnXtract/internal/utils"
	"github.com/go-rod/rod"
)

const (
	// AuthPollInterval 登录态轮询间隔
	AuthPollInterval = 500 * time.Millisecond

	// DefaultAuthDeadline 登录态等待上限
	DefaultAuthDeadline = 120 * time.Second

	// DefaultContentDeadline 内容就绪等待上限 (地址模式默认)
	DefaultContentDeadline = 45 * time.Second

	// loginSampleLimit 未登录文案扫描的交互元素采样上限
	loginSampleLimit = 200
)

// pollUntil 固定间隔轮询probe直到命中/超时/取消
// 先立刻探一次再进入轮询; 返回是否在期限内命中
func pollUntil(ctx context.Context, interval, deadline time.Duration, probe func() bool) bool {
	if probe() {
		return true
	}

	timeout := time.After(deadline)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-timeout:
			return false
		case <-ticker.C:
			if probe() {
				return true
			}
		}
	}
}

// AuthSignals 一次探测采到的登录信号快照
type AuthSignals struct {
	StorageKeys map[string]string // 两个存储域合并后的键值
	HasAvatar   bool              // 页面存在头像元素
	CookieNames []string          // 当前cookie名称列表
	SampleTexts []string          // 交互元素可见文本采样
}

// AuthProbe 登录态判定器
// 判定规则: (认证存储键 OR 头像元素 OR 认证cookie) AND NOT 未登录文案
// 纯逻辑, 信号采集与判定分离, 判定可离线测试
type AuthProbe struct {
	keyPattern *regexp.Regexp
	loginTexts []string
}

// NewAuthProbe 创建登录态判定器
// authKeyPattern为键名正则(忽略大小写), loginTexts为未登录文案列表
func NewAuthProbe(authKeyPattern string, loginTexts []string) (*AuthProbe, error) {
	pattern, err := regexp.Compile("(?i)" + authKeyPattern)
	if err != nil {
		return nil, fmt.Errorf("认证键名正则无效 [%s]: %w", authKeyPattern, err)
	}

	texts := make([]string, 0, len(loginTexts))
	for _, t := range loginTexts {
		texts = append(texts, strings.ToLower(strings.TrimSpace(t)))
	}

	return &AuthProbe{
		keyPattern: pattern,
		loginTexts: texts,
	}, nil
}

// Authenticated 判定信号快照是否表示已登录
func (p *AuthProbe) Authenticated(sig AuthSignals) bool {
	positive := p.hasAuthKey(sig.StorageKeys) ||
		sig.HasAvatar ||
		p.hasAuthCookie(sig.CookieNames)

	return positive && !p.hasLoginText(sig.SampleTexts)
}

// hasAuthKey 存储域中存在键名命中且值非空的条目
func (p *AuthProbe) hasAuthKey(keys map[string]string) bool {
	for k, v := range keys {
		if v != "" && p.keyPattern.MatchString(k) {
			return true
		}
	}
	return false
}

// hasAuthCookie cookie名称命中认证键名模式
func (p *AuthProbe) hasAuthCookie(names []string) bool {
	for _, name := range names {
		if p.keyPattern.MatchString(name) {
			return true
		}
	}
	return false
}

// hasLoginText 采样文本中出现未登录文案
func (p *AuthProbe) hasLoginText(samples []string) bool {
	for _, sample := range samples {
		lower := strings.ToLower(sample)
		for _, t := range p.loginTexts {
			if t != "" && strings.Contains(lower, t) {
				return true
			}
		}
	}
	return false
}

// Readiness 页面就绪检测器
// 登录态与内容就绪都只回答 就绪/超时, 超时不升级成错误
type Readiness struct {
	cfg      *config.SelectorConfig
	probe    *AuthProbe
	interval time.Duration

	// degraded 资源降级信号; 命中时内容等待提前结束而不是耗满期限
	degraded func() bool
}

// NewReadiness 创建就绪检测器
func NewReadiness(cfg *config.SelectorConfig) (*Readiness, error) {
	probe, err := NewAuthProbe(cfg.Patterns.AuthKey, cfg.Patterns.LoginTexts)
	if err != nil {
		return nil, err
	}

	return &Readiness{
		cfg:      cfg,
		probe:    probe,
		interval: AuthPollInterval,
	}, nil
}

// SetPollInterval 覆盖默认轮询间隔
func (r *Readiness) SetPollInterval(interval time.Duration) {
	if interval > 0 {
		r.interval = interval
	}
}

// SetDegradationProbe 注册资源降级信号
// 内容等待的每一轮都会先查这个信号, 命中就放弃等待用当前页面状态继续
func (r *Readiness) SetDegradationProbe(probe func() bool) {
	r.degraded = probe
}

// WaitAuthenticated 等待页面进入登录态
// 按轮询间隔采信号快照做判定; 采集失败视为本轮未就绪, 下一轮重试
// 返回(是否就绪, 是否经历了交互式登录): 首轮就命中说明会话恢复生效,
// 之后才命中说明用户在窗口里登录过, 调用方据此决定是否倒计时缓冲
func (r *Readiness) WaitAuthenticated(ctx context.Context, page *rod.Page, deadline time.Duration) (bool, bool) {
	if deadline <= 0 {
		deadline = DefaultAuthDeadline
	}

	attempts := 0
	ready := pollUntil(ctx, r.interval, deadline, func() bool {
		attempts++
		sig, err := r.collectSignals(page)
		if err != nil {
			// 导航中途的页面状态会让求值失败, 忽略等下一轮
			utils.Debugf("登录信号采集失败(第%d轮): %v", attempts, err)
			return false
		}
		return r.probe.Authenticated(sig)
	})

	if !ready {
		utils.Warnf("⚠️ 等待登录超时 (%.0fs)", deadline.Seconds())
	}
	return ready, ready && attempts > 1
}

// WaitContent 等待页面出现目标内容
// 每轮探测前尽力关一次同意弹层, 再用扫描器检查渲染文本与markup
func (r *Readiness) WaitContent(ctx context.Context, page *rod.Page, scanner *Scanner, deadline time.Duration) bool {
	if deadline <= 0 {
		deadline = DefaultContentDeadline
	}

	aborted := false
	ready := pollUntil(ctx, r.interval, deadline, func() bool {
		if r.degraded != nil && r.degraded() {
			aborted = true
			return true
		}
		DismissConsent(page, r.cfg)
		return scanner.MatchesContent(pageHTML(page), pageText(page))
	})

	if aborted {
		utils.Warnf("⚠️ 资源紧张, 提前结束内容等待, 继续使用当前页面状态")
		return false
	}
	if !ready {
		utils.Warnf("⚠️ 等待内容就绪超时 (%.0fs), 继续使用当前页面状态", deadline.Seconds())
	}
	return ready
}

// collectSignals 从活动页面采集一次登录信号
func (r *Readiness) collectSignals(page *rod.Page) (AuthSignals, error) {
	sig := AuthSignals{
		StorageKeys: make(map[string]string),
	}

	avatarJSON, err := json.Marshal(strings.Join(r.cfg.Selectors.Avatar, ", "))
	if err != nil {
		return sig, err
	}

	js := fmt.Sprintf(`() => {
		var sig = { keys: {}, avatar: false, texts: [] };
		var dump = function(s) {
			try {
				for (var i = 0; i < s.length; i++) {
					var k = s.key(i);
					sig.keys[k] = s.getItem(k) || "";
				}
			} catch (e) {}
		};
		dump(window.localStorage);
		dump(window.sessionStorage);
		try {
			sig.avatar = !!document.querySelector(%s);
		} catch (e) {}
		try {
			var els = document.querySelectorAll('a,button,[role="button"],span,div');
			var limit = Math.min(els.length, %d);
			for (var j = 0; j < limit; j++) {
				var t = (els[j].innerText || "").trim();
				if (t) { sig.texts.push(t); }
			}
		} catch (e) {}
		return sig;
	}`, string(avatarJSON), loginSampleLimit)

	result, err := page.Evaluate(&rod.EvalOptions{JS: js})
	if err != nil {
		return sig, err
	}

	for k, v := range result.Value.Get("keys").Map() {
		sig.StorageKeys[k] = v.Str()
	}
	sig.HasAvatar = result.Value.Get("avatar").Bool()
	for _, t := range result.Value.Get("texts").Arr() {
		sig.SampleTexts = append(sig.SampleTexts, t.Str())
	}

	cookies, err := page.Cookies(nil)
	if err != nil {
		return sig, err
	}
	for _, c := range cookies {
		sig.CookieNames = append(sig.CookieNames, c.Name)
	}

	return sig, nil
}
