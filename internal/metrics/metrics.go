package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 生成任务与智能体相关的 Prometheus 指标

var (
	// JobsTotal 按终态统计的生成任务数
	JobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agent_platform",
		Subsystem: "generator",
		Name:      "jobs_total",
		Help:      "Generation jobs finished, labelled by terminal status.",
	}, []string{"status"})

	// JobDuration 生成任务处理耗时
	JobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "agent_platform",
		Subsystem: "generator",
		Name:      "job_duration_seconds",
		Help:      "Time spent processing a generation job.",
		Buckets:   prometheus.DefBuckets,
	})

	// AgentsGenerated 成功生成的智能体数
	AgentsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agent_platform",
		Subsystem: "generator",
		Name:      "agents_generated_total",
		Help:      "Agents successfully materialized from templates.",
	})

	// TemplatesSkipped 处理中被跳过的模板数
	TemplatesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agent_platform",
		Subsystem: "generator",
		Name:      "templates_skipped_total",
		Help:      "Templates skipped during job processing.",
	})

	// AnalysesTotal 完成的画像分析数
	AnalysesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agent_platform",
		Subsystem: "analyzer",
		Name:      "analyses_total",
		Help:      "Organization profile analyses completed.",
	})
)
