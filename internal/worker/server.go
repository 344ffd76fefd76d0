package worker

import (
	"backend/internal/config"
	"backend/internal/logger"
	"backend/internal/worker/handlers"
	"backend/internal/worker/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Server 异步任务工作进程
type Server struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

// NewServer 创建工作进程并注册全部任务处理器
func NewServer(redisCfg *config.RedisConfig, concurrency int, analysis *handlers.AnalysisHandler, generation *handlers.GenerationHandler) *Server {
	if concurrency <= 0 {
		concurrency = 10
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisCfg.Addr(),
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeAnalyzeProfile, analysis.HandleAnalyzeProfile)
	mux.HandleFunc(tasks.TypeGenerateAgents, generation.HandleGenerateAgents)

	return &Server{srv: srv, mux: mux}
}

// Start 启动工作进程（非阻塞）
func (s *Server) Start() error {
	logger.Info("异步任务工作进程启动")
	return s.srv.Start(s.mux)
}

// Shutdown 优雅停止工作进程
func (s *Server) Shutdown() {
	logger.Info("异步任务工作进程停止中")
	s.srv.Shutdown()
	logger.Info("异步任务工作进程已停止", zap.Bool("graceful", true))
}
