package api

import (
	"time"

	agentsHandler "backend/api/handlers/agents"
	clientsHandler "backend/api/handlers/clients"
	integrationsHandler "backend/api/handlers/integrations"
	organizationsHandler "backend/api/handlers/organizations"
	templatesHandler "backend/api/handlers/templates"
	"backend/internal/agent/runtime"
	"backend/internal/analyzer"
	"backend/internal/catalog"
	"backend/internal/channel"
	"backend/internal/common"
	"backend/internal/generator"
	"backend/internal/infra"
	"backend/internal/infra/queue"
	"backend/internal/logger"
	"backend/internal/organization"
	"backend/internal/tenant"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies 路由依赖的全部服务
type Dependencies struct {
	Clients   *tenant.Service
	Profiles  *organization.Service
	Analyzer  *analyzer.Service
	Generator *generator.Service
	Templates catalog.Provider
	Queue     queue.Client
	Registry  *runtime.Registry
	Channels  *channel.Dispatcher
}

// NewRouter 组装 HTTP 路由
func NewRouter(mode string, deps *Dependencies) *gin.Engine {
	gin.SetMode(mode)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/health", healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	clientHandler := clientsHandler.NewHandler(deps.Clients)
	orgHandler := organizationsHandler.NewHandler(deps.Profiles, deps.Analyzer, deps.Queue)
	agentHandler := agentsHandler.NewHandler(deps.Generator, deps.Queue, deps.Registry)
	tplHandler := templatesHandler.NewHandler(deps.Templates)
	integrationHandler := integrationsHandler.NewHandler(deps.Channels)

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/clients", clientHandler.Create)
		apiGroup.GET("/clients/:id", clientHandler.Get)

		organizations := apiGroup.Group("/organizations")
		{
			organizations.POST("", orgHandler.Create)
			organizations.GET("/:id", orgHandler.Get)
			organizations.PUT("/:id", orgHandler.Update)
			organizations.POST("/:id/analyze", orgHandler.Analyze)
			organizations.GET("/:id/analysis", orgHandler.GetAnalysis)
			organizations.POST("/:id/score", orgHandler.Score)
		}

		apiGroup.GET("/templates", tplHandler.List)

		agents := apiGroup.Group("/agents")
		{
			agents.POST("/generate", agentHandler.Generate)
			agents.GET("/jobs", agentHandler.ListJobs)
			agents.GET("/jobs/:id", agentHandler.GetJob)
			agents.GET("", agentHandler.List)
			agents.GET("/:id", agentHandler.Get)
			agents.POST("/:id/validate", agentHandler.Validate)
			agents.POST("/:id/messages", agentHandler.SendMessage)
		}

		apiGroup.POST("/integrations/:channel/test", integrationHandler.Test)
	}

	return router
}

// requestLogger 请求日志中间件
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("HTTP 请求",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// healthCheck 健康检查
func healthCheck(c *gin.Context) {
	if err := infra.HealthCheck(); err != nil {
		common.ResponseError(c, common.CodeInternalError, "数据库不可用")
		return
	}
	common.ResponseSuccess(c, gin.H{"status": "ok"})
}
