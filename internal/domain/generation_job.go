package domain

import "time"

type GenerationJobStatus string

const (
	GenerationJobQueued    GenerationJobStatus = "queued"
	GenerationJobRunning   GenerationJobStatus = "running"
	GenerationJobSucceeded GenerationJobStatus = "succeeded"
	GenerationJobFailed    GenerationJobStatus = "failed"
)

// GenerationOptions 为遗传算法参数的可选覆盖项，nil 表示使用配置中的默认值
type GenerationOptions struct {
	PopulationSize *int     `json:"populationSize,omitempty"`
	Generations    *int     `json:"generations,omitempty"`
	MutationRate   *float64 `json:"mutationRate,omitempty"`
	ElitismCount   *int     `json:"elitismCount,omitempty"`
	TournamentSize *int     `json:"tournamentSize,omitempty"`
	Restarts       *int     `json:"restarts,omitempty"`
}

// GenerationJob 是投递到 exam_generation_queue 中的消息
type GenerationJob struct {
	ID          string            `json:"id"`
	ExamID      int64             `json:"examID"`
	Options     GenerationOptions `json:"options"`
	NotifyEmail string            `json:"notifyEmail,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// GenerationJobState 是保存在 redis 中的任务状态
type GenerationJobState struct {
	ID          string              `json:"id"`
	ExamID      int64               `json:"examID"`
	Status      GenerationJobStatus `json:"status"`
	Fitness     *float64            `json:"fitness"`
	QuestionIDs []int64             `json:"questionIDs"`
	Error       string              `json:"error,omitempty"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}
