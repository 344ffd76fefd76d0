package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend/api"
	"backend/internal/agent/runtime"
	"backend/internal/analyzer"
	"backend/internal/catalog"
	"backend/internal/channel"
	"backend/internal/config"
	"backend/internal/generator"
	"backend/internal/infra"
	"backend/internal/infra/queue"
	"backend/internal/logger"
	"backend/internal/organization"
	"backend/internal/tenant"
	"backend/internal/worker"
	"backend/internal/worker/handlers"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env 不存在时静默跳过，线上环境直接用环境变量
	_ = godotenv.Load()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	cfg, err := config.Load(env, os.Getenv("APP_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := infra.InitDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("初始化数据库失败", zap.Error(err))
	}
	defer infra.CloseDatabase()

	if cfg.Database.AutoMigrate {
		err := infra.AutoMigrate(db,
			&tenant.Client{},
			&organization.OrganizationProfile{},
			&catalog.AgentTemplate{},
			&generator.AgentGenerationJob{},
			&generator.AgentFolder{},
			&generator.Agent{},
			&generator.AgentConfiguration{},
		)
		if err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}
		if err := catalog.EnsureSeedTemplates(db); err != nil {
			logger.Fatal("写入默认模板失败", zap.Error(err))
		}
	}

	// 服务装配
	clients := tenant.NewService(db)
	profiles := organization.NewService(db)
	templates := catalog.NewDBProvider(db)
	analyzerSvc := analyzer.NewService(profiles, templates)
	generatorSvc := generator.NewService(db, templates, profiles, clients).
		WithLimits(cfg.Generator.MaxTemplates, time.Duration(cfg.Generator.JobTimeout)*time.Second)
	registry := runtime.NewRegistry()
	dispatcher := channel.NewDispatcher()

	queueClient := queue.NewAsynqClient(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	defer queueClient.Close()

	// 异步任务工作进程与 HTTP 服务同进程运行
	workerServer := worker.NewServer(
		&cfg.Redis,
		cfg.Generator.Concurrency,
		handlers.NewAnalysisHandler(analyzerSvc),
		handlers.NewGenerationHandler(generatorSvc),
	)
	if err := workerServer.Start(); err != nil {
		logger.Fatal("启动工作进程失败", zap.Error(err))
	}

	router := api.NewRouter(cfg.Server.Mode, &api.Dependencies{
		Clients:   clients,
		Profiles:  profiles,
		Analyzer:  analyzerSvc,
		Generator: generatorSvc,
		Templates: templates,
		Queue:     queueClient,
		Registry:  registry,
		Channels:  dispatcher,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务启动", zap.Int("port", cfg.Server.Port), zap.String("env", env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务异常退出", zap.Error(err))
		}
	}()

	// 优雅退出：先停 HTTP，再停工作进程
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("收到退出信号，开始优雅关闭")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP 服务关闭超时", zap.Error(err))
	}

	workerServer.Shutdown()
	logger.Info("服务已退出")
}
