package models

import (
	"encoding/json"
)

// Cookie 浏览器Cookie
// 字段与会话文件的JSON结构一一对应
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain,omitempty"`
	Path     string  `json:"path,omitempty"`
	Expires  float64 `json:"expires,omitempty"` // Unix时间戳(秒), 0表示会话Cookie
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	SameSite string  `json:"sameSite,omitempty"` // Strict/Lax/None
}

// StorageState 页面存储快照 (两个存储域)
type StorageState struct {
	Local   map[string]string `json:"localStorage"`
	Session map[string]string `json:"sessionStorage"`
}

// SessionState 会话状态 (cookies + storage)
// 每次运行开始时读取一次, 结束时整体覆盖写回(最后写入者胜出)
type SessionState struct {
	Cookies []Cookie     `json:"cookies"`
	Storage StorageState `json:"storage"`
}

// NewSessionState 创建空会话状态
func NewSessionState() *SessionState {
	return &SessionState{
		Cookies: make([]Cookie, 0),
		Storage: StorageState{
			Local:   make(map[string]string),
			Session: make(map[string]string),
		},
	}
}

// IsEmpty 检查会话是否不含任何可恢复内容
func (s *SessionState) IsEmpty() bool {
	return len(s.Cookies) == 0 &&
		len(s.Storage.Local) == 0 &&
		len(s.Storage.Session) == 0
}

// StorageEmpty 检查两个存储域是否都为空
func (s *SessionState) StorageEmpty() bool {
	return len(s.Storage.Local) == 0 && len(s.Storage.Session) == 0
}

// ToJSON 序列化为JSON
func (s *SessionState) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// FromJSON 从JSON反序列化
// 反序列化后保证存储map非nil
func (s *SessionState) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, s); err != nil {
		return err
	}
	if s.Storage.Local == nil {
		s.Storage.Local = make(map[string]string)
	}
	if s.Storage.Session == nil {
		s.Storage.Session = make(map[string]string)
	}
	return nil
}
