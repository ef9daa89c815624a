package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/config"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/generation"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/metrics"
)

type Generator interface {
	Generate(ctx context.Context, examID int64, opts domain.GenerationOptions, save bool) (*generation.Outcome, error)
}

type StateStore interface {
	SetJobState(state *domain.GenerationJobState) error
	Unlock(examID int64, owner string) error
}

// Worker 处理 exam_generation_queue 中的组卷任务
type Worker struct {
	config    *config.Config
	generator Generator
	states    StateStore
	publisher Publisher
	metrics   *metrics.Metrics
}

func NewWorker(cfg *config.Config, gen Generator, states StateStore, pub Publisher, m *metrics.Metrics) *Worker {
	return &Worker{
		config:    cfg,
		generator: gen,
		states:    states,
		publisher: pub,
		metrics:   m,
	}
}

// Process 处理一条任务消息。只有消息本身无法解析时才返回错误，组卷失败会记录在任务状态中
func (w *Worker) Process(ctx context.Context, body []byte) error {
	job := &domain.GenerationJob{}
	if err := json.Unmarshal(body, job); err != nil {
		return err
	}

	// 无论成功与否都要释放锁
	defer func() {
		if err := w.states.Unlock(job.ExamID, job.ID); err != nil {
			slog.Error("释放组卷锁失败", "jobID", job.ID, "examID", job.ExamID, "error", err)
		}
	}()

	state := &domain.GenerationJobState{
		ID:     job.ID,
		ExamID: job.ExamID,
		Status: domain.GenerationJobRunning,
	}
	if err := w.states.SetJobState(state); err != nil {
		slog.Error("更新任务状态失败", "jobID", job.ID, "status", state.Status, "error", err)
	}

	slog.Info("开始处理组卷任务", "jobID", job.ID, "examID", job.ExamID)
	outcome, err := w.generator.Generate(ctx, job.ExamID, job.Options, true)
	if err != nil {
		state.Status = domain.GenerationJobFailed
		state.Error = err.Error()
		slog.Error("组卷任务失败", "jobID", job.ID, "examID", job.ExamID, "error", err)
	} else {
		state.Status = domain.GenerationJobSucceeded
		state.Fitness = &outcome.Fitness
		state.QuestionIDs = outcome.QuestionIDs
	}

	if w.metrics != nil {
		w.metrics.JobsTotal.WithLabelValues(string(state.Status)).Inc()
	}

	if err := w.states.SetJobState(state); err != nil {
		slog.Error("更新任务状态失败", "jobID", job.ID, "status", state.Status, "error", err)
	}

	if job.NotifyEmail != "" {
		w.notify(job, outcome, state)
	}

	return nil
}

func (w *Worker) notify(job *domain.GenerationJob, outcome *generation.Outcome, state *domain.GenerationJobState) {
	msg := domain.MailMessage{
		To: job.NotifyEmail,
	}

	if state.Status == domain.GenerationJobSucceeded {
		msg.Type = domain.MailTypeExamGenerated
		msg.Data = domain.ExamGeneratedMailData{
			ExamID:        outcome.ExamID,
			ExamName:      outcome.ExamName,
			QuestionCount: len(outcome.QuestionIDs),
			Fitness:       outcome.Fitness,
			JobID:         job.ID,
		}
	} else {
		msg.Type = domain.MailTypeExamGenerationFailed
		msg.Data = domain.ExamGenerationFailedMailData{
			ExamID: job.ExamID,
			JobID:  job.ID,
			Reason: state.Error,
		}
	}

	timeout := time.Duration(w.config.RabbitMQ.PublishTimeout) * time.Second
	if err := PublishJSON(w.publisher, w.config.RabbitMQ.MailQueue, timeout, msg); err != nil {
		slog.Error("发送组卷通知邮件失败", "jobID", job.ID, "to", job.NotifyEmail, "error", err)
	}
}
