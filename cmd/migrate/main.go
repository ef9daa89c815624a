package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/config"
	"github.com/sysu-ecnc-dev/exam-generator/backend/migrations"
)

func main() {
	var direction string

	flag.StringVar(&direction, "direction", "up", "迁移方向 (up: 执行所有迁移, down: 回滚所有迁移)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// golang-migrate 的 pgx 驱动使用 pgx5:// 协议
	dsn := cfg.Database.DSN
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			dsn = "pgx5://" + strings.TrimPrefix(dsn, prefix)
			break
		}
	}

	m, err := migrations.New(dsn)
	if err != nil {
		logger.Error("无法创建迁移实例", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	switch direction {
	case "up":
		err = migrations.Up(m)
	case "down":
		err = migrations.Down(m)
	default:
		logger.Error("指定的迁移方向非法", "direction", direction)
		os.Exit(1)
	}

	if err != nil {
		logger.Error("执行迁移失败", "direction", direction, "error", err)
		os.Exit(1)
	}

	version, dirty, err := m.Version()
	if err != nil {
		logger.Info("迁移完成", "direction", direction)
		return
	}
	logger.Info("迁移完成", "direction", direction, "version", version, "dirty", dirty)
}
