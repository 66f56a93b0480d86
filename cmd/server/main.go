package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"github.com/giftify-next/internal/app"
	"github.com/giftify-next/internal/config"
	"github.com/giftify-next/internal/logger"
	"github.com/giftify-next/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiGreen = "\033[32m"
	ansiBlue  = "\033[34m"
	ansiCyan  = "\033[36m"
)

func main() {
	printStartupBanner()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	release := cfg.Server.Mode == "release"

	checkJWTSecret(stdLog, cfg.JWT.SecretKey, release)
	initStorage(stdLog, cfg)
	seedDefaultAdmin(stdLog, release)

	if release {
		gin.SetMode(gin.ReleaseMode)
	}

	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

// checkJWTSecret 弱密钥在生产模式直接拒绝启动，开发模式只提示。
func checkJWTSecret(stdLog *log.Logger, secret string, release bool) {
	if !isWeakSecret(secret) {
		return
	}
	if release {
		stdLog.Fatalf("JWT secret 过弱或仍为默认值，请在生产环境中配置强随机密钥")
	}
	stdLog.Printf("警告: JWT secret 过弱或仍为默认值，建议在生产环境中更换")
}

// initStorage 初始化数据库连接并执行自动迁移。
func initStorage(stdLog *log.Logger, cfg *config.Config) {
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}
}

// seedDefaultAdmin 初始化默认管理员，生产模式下缺少显式密码时跳过。
func seedDefaultAdmin(stdLog *log.Logger, release bool) {
	username := os.Getenv("GF_DEFAULT_ADMIN_USERNAME")
	password := os.Getenv("GF_DEFAULT_ADMIN_PASSWORD")
	if release && password == "" {
		stdLog.Printf("警告: 未设置 GF_DEFAULT_ADMIN_PASSWORD，已跳过默认管理员初始化")
		return
	}
	if err := models.InitDefaultAdmin(username, password); err != nil {
		stdLog.Printf("警告: 初始化默认管理员失败: %v", err)
	}
}

func printStartupBanner() {
	banner := []string{
		" ██████╗ ██╗███████╗████████╗██╗███████╗██╗   ██╗",
		"██╔════╝ ██║██╔════╝╚══██╔══╝██║██╔════╝╚██╗ ██╔╝",
		"██║  ███╗██║█████╗     ██║   ██║█████╗   ╚████╔╝ ",
		"██║   ██║██║██╔══╝     ██║   ██║██╔══╝    ╚██╔╝  ",
		"╚██████╔╝██║██║        ██║   ██║██║        ██║   ",
		" ╚═════╝ ╚═╝╚═╝        ╚═╝   ╚═╝╚═╝        ╚═╝   ",
	}
	for _, line := range banner {
		fmt.Println(ansiCyan + line + ansiReset)
	}
	fmt.Println(ansiGreen + ansiBold + "Giftify-Next API" + ansiReset)
	fmt.Println(ansiBlue + "• Root: https://github.com/giftify-next" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	for _, marker := range []string{"change-me", "change-in-production", "your-secret-key"} {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}
