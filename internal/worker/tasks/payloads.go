package tasks

// 异步任务类型
const (
	// TypeAnalyzeProfile 组织画像分析
	TypeAnalyzeProfile = "analyzer:analyze_profile"
	// TypeGenerateAgents 智能体生成任务处理
	TypeGenerateAgents = "generator:generate_agents"
)

// AnalyzeProfilePayload 画像分析任务载荷
type AnalyzeProfilePayload struct {
	ProfileID string `json:"profileId"`
}

// GenerateAgentsPayload 生成任务载荷
type GenerateAgentsPayload struct {
	JobID string `json:"jobId"`
}
