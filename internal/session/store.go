package session

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/GmgnXtract/internal/models"
	"github.com/RecoveryAshes/GmgnXtract/internal/utils"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultSessionFile 默认会话文件路径
const DefaultSessionFile = ".sessions/gmgn_ai_session.json"

// Store 会话存储
// 会话文件的读写契约: 运行开始读一次, 结束整体覆盖写回
// 并发运行同一会话文件时最后写入者胜出 (已知限制, 不做协调)
type Store struct {
	path   string
	origin string // cookie缺省domain的目标站点主机名
}

// NewStore 创建会话存储
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultSessionFile
	}

	host := ""
	if parsed, err := url.Parse(models.SiteOrigin); err == nil {
		host = parsed.Host
	}

	return &Store{
		path:   path,
		origin: host,
	}
}

// Path 会话文件路径
func (s *Store) Path() string {
	return s.path
}

// Load 加载历史会话
// 文件缺失/解析失败/IO错误一律软失败返回(nil, false), 不向上抛错
func (s *Store) Load() (*models.SessionState, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		utils.Debugf("无历史会话可恢复 [%s]: %v", s.path, err)
		return nil, false
	}

	state := models.NewSessionState()
	if err := state.FromJSON(data); err != nil {
		utils.Debugf("会话文件解析失败 [%s]: %v", s.path, err)
		return nil, false
	}

	utils.Infof("🍪 已加载历史会话: %d个cookie, %d+%d个存储键",
		len(state.Cookies), len(state.Storage.Local), len(state.Storage.Session))
	if len(state.Storage.Local) > 0 {
		utils.Debugf("localStorage内容(脱敏): %s",
			utils.NewSecretRedactor().RedactToString(state.Storage.Local))
	}
	return state, true
}

// Save 持久化会话 (尽力而为, 失败只记警告)
// 整体覆盖写入, 不与旧文件合并
func (s *Store) Save(state *models.SessionState) {
	if state == nil {
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		utils.Warnf("创建会话目录失败: %v", err)
		return
	}

	data, err := state.ToJSON()
	if err != nil {
		utils.Warnf("序列化会话失败: %v", err)
		return
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		utils.Warnf("写入会话文件失败 [%s]: %v", s.path, err)
		return
	}

	utils.Debugf("会话已持久化: %s", s.path)
}

// ApplyCookies 导航前把历史cookie装入页面上下文
// 缺省domain的cookie补目标站点主机名 (cookie随请求发送, 必须在导航前装好)
func (s *Store) ApplyCookies(page *rod.Page, state *models.SessionState) error {
	if state == nil || len(state.Cookies) == 0 {
		return nil
	}

	params := make([]*proto.NetworkCookieParam, 0, len(state.Cookies))
	for _, c := range state.Cookies {
		domain := c.Domain
		if domain == "" {
			domain = s.origin
		}

		param := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > 0 {
			param.Expires = proto.TimeSinceEpoch(c.Expires)
		}
		switch c.SameSite {
		case "Strict", "Lax", "None":
			param.SameSite = proto.NetworkCookieSameSite(c.SameSite)
		}
		params = append(params, param)
	}

	if err := page.SetCookies(params); err != nil {
		return fmt.Errorf("安装cookie失败: %w", err)
	}

	utils.Debugf("已安装%d个历史cookie", len(params))
	return nil
}

// ApplyStorage 导航后把历史存储装入页面的两个存储域
// 存储API依附于已加载的文档, 必须在页面到达目标源之后调用; 装入是幂等的
// 装入后调用方应强制刷新一次页面, 让站点脚本读到恢复的状态
func (s *Store) ApplyStorage(page *rod.Page, state *models.SessionState) error {
	if state == nil || state.StorageEmpty() {
		return nil
	}

	localJSON, err := json.Marshal(state.Storage.Local)
	if err != nil {
		return fmt.Errorf("序列化localStorage失败: %w", err)
	}
	sessionJSON, err := json.Marshal(state.Storage.Session)
	if err != nil {
		return fmt.Errorf("序列化sessionStorage失败: %w", err)
	}

	js := fmt.Sprintf(`() => {
		var local = %s;
		var session = %s;
		for (var k in local) {
			try { window.localStorage.setItem(k, local[k]); } catch (e) {}
		}
		for (var k2 in session) {
			try { window.sessionStorage.setItem(k2, session[k2]); } catch (e) {}
		}
		return true;
	}`, string(localJSON), string(sessionJSON))

	if _, err := page.Evaluate(&rod.EvalOptions{JS: js}); err != nil {
		return fmt.Errorf("装入存储失败: %w", err)
	}

	utils.Debugf("已装入存储: localStorage=%d, sessionStorage=%d",
		len(state.Storage.Local), len(state.Storage.Session))
	return nil
}

// Snapshot 从活动页面重新采集完整会话状态
// 每次运行结束时调用, 结果整体覆盖旧会话文件
func Snapshot(page *rod.Page) (*models.SessionState, error) {
	state := models.NewSessionState()

	cookies, err := page.Cookies(nil)
	if err != nil {
		return nil, fmt.Errorf("读取cookie失败: %w", err)
	}
	for _, c := range cookies {
		state.Cookies = append(state.Cookies, models.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  float64(c.Expires),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}

	result, err := page.Evaluate(&rod.EvalOptions{JS: `() => {
		var dump = function(s) {
			var out = {};
			for (var i = 0; i < s.length; i++) {
				var k = s.key(i);
				out[k] = s.getItem(k) || "";
			}
			return out;
		};
		return { local: dump(window.localStorage), session: dump(window.sessionStorage) };
	}`})
	if err != nil {
		return nil, fmt.Errorf("读取存储失败: %w", err)
	}

	for k, v := range result.Value.Get("local").Map() {
		state.Storage.Local[k] = v.Str()
	}
	for k, v := range result.Value.Get("session").Map() {
		state.Storage.Session[k] = v.Str()
	}

	return state, nil
}
