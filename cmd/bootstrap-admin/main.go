// bootstrap-admin 创建白名单管理员账号（邮箱标记为已验证）
//
// 用法:
//
//	AKIRA_BOOTSTRAP_PASSWORD=... go run ./cmd/bootstrap-admin -email admin@example.com
//	go run ./cmd/bootstrap-admin -email admin@example.com -replace
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/taisuke86/akiramehende/config"
	"github.com/taisuke86/akiramehende/internal/repository"
	"github.com/taisuke86/akiramehende/internal/service"
	"github.com/taisuke86/akiramehende/pkg/database"
	applogger "github.com/taisuke86/akiramehende/pkg/logger"
)

const passwordEnv = "AKIRA_BOOTSTRAP_PASSWORD"

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	email := flag.String("email", "", "管理员邮箱（必须在 admin.emails 白名单中）")
	replace := flag.Bool("replace", false, "删除占用该邮箱的未验证账号后重建")
	flag.Parse()

	password := os.Getenv(passwordEnv)
	if *email == "" || password == "" {
		fmt.Fprintf(os.Stderr, "用法: %s=<密码> bootstrap-admin -email <邮箱> [-replace]\n", passwordEnv)
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	if err := database.RunMigrations(db, cfg.Database.Driver, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, created, err := service.BootstrapAdmin(
		ctx,
		repository.NewRepository(db),
		service.NewAdminPolicy(cfg.Admin.Emails),
		service.BootstrapAdminInput{Email: *email, Password: password, Replace: *replace},
		time.Now(),
		logger,
	)
	if err != nil {
		logger.Fatal("初始化管理员失败", zap.String("email", *email), zap.Error(err))
	}

	if created {
		fmt.Printf("已创建管理员 %s (%s)\n", user.Email, user.UserID)
	} else {
		fmt.Printf("管理员 %s 已存在，未做修改\n", user.Email)
	}
}
