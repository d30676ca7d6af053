package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/RecoveryAshes/GmgnXtract/internal/models"
	"github.com/RecoveryAshes/GmgnXtract/internal/utils"
)

func init() {
	// 测试日志写到临时目录, 避免污染工作目录
	dir, err := os.MkdirTemp("", "gmgnxtract-test-logs")
	if err == nil {
		_ = utils.InitLogger(utils.LogConfig{Level: "error", LogDir: dir, MaxSize: 1, MaxBackups: 1, MaxAge: 1})
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "session.json")

	store := NewStore(path)

	state := models.NewSessionState()
	state.Cookies = append(state.Cookies, models.Cookie{
		Name:   "sid",
		Value:  "abc123",
		Domain: "gmgn.ai",
		Path:   "/",
	})
	state.Storage.Local["auth_token"] = "tok"
	state.Storage.Session["chain"] = "sol"

	store.Save(state)

	loaded, ok := store.Load()
	if !ok {
		t.Fatal("Load() ok = false, want true")
	}

	if len(loaded.Cookies) != 1 || loaded.Cookies[0].Name != "sid" {
		t.Errorf("cookie未正确还原: %+v", loaded.Cookies)
	}
	if loaded.Storage.Local["auth_token"] != "tok" {
		t.Errorf("localStorage未正确还原: %+v", loaded.Storage.Local)
	}
	if loaded.Storage.Session["chain"] != "sol" {
		t.Errorf("sessionStorage未正确还原: %+v", loaded.Storage.Session)
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nonexistent.json"))

	state, ok := store.Load()
	if ok {
		t.Error("缺失文件Load() ok = true, want false")
	}
	if state != nil {
		t.Error("缺失文件Load()应返回nil状态")
	}
}

func TestStore_LoadCorruptFile(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "session.json")

	if err := os.WriteFile(path, []byte("{not valid json"), 0644); err != nil {
		t.Fatalf("写入测试文件失败: %v", err)
	}

	store := NewStore(path)
	if _, ok := store.Load(); ok {
		t.Error("损坏文件Load() ok = true, want false (软失败)")
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "session.json")
	store := NewStore(path)

	first := models.NewSessionState()
	first.Storage.Local["old"] = "1"
	store.Save(first)

	// 第二次写入整体覆盖, 不保留旧键
	second := models.NewSessionState()
	second.Storage.Local["new"] = "2"
	store.Save(second)

	loaded, ok := store.Load()
	if !ok {
		t.Fatal("Load() ok = false, want true")
	}
	if _, exists := loaded.Storage.Local["old"]; exists {
		t.Error("覆盖写入后不应保留旧键")
	}
	if loaded.Storage.Local["new"] != "2" {
		t.Error("新键未写入")
	}
}

func TestStore_DefaultPath(t *testing.T) {
	store := NewStore("")
	if store.Path() != DefaultSessionFile {
		t.Errorf("默认路径 = %q, want %q", store.Path(), DefaultSessionFile)
	}
}

func TestStore_LoadNormalizesNilMaps(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "session.json")

	// storage字段缺失的旧格式文件
	if err := os.WriteFile(path, []byte(`{"cookies":[]}`), 0644); err != nil {
		t.Fatalf("写入测试文件失败: %v", err)
	}

	store := NewStore(path)
	loaded, ok := store.Load()
	if !ok {
		t.Fatal("Load() ok = false, want true")
	}
	if loaded.Storage.Local == nil || loaded.Storage.Session == nil {
		t.Error("存储map不应为nil")
	}
}
