package extract

import (
	"os"

	"github.com/RecoveryAshes/GmgnXtract/internal/utils"
)

func init() {
	// 测试日志写到临时目录, 避免污染工作目录
	dir, err := os.MkdirTemp("", "gmgnxtract-test-logs")
	if err == nil {
		_ = utils.InitLogger(utils.LogConfig{Level: "error", LogDir: dir, MaxSize: 1, MaxBackups: 1, MaxAge: 1})
	}
}
