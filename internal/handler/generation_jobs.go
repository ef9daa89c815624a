package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/jobs"
)

func (h *Handler) CreateGenerationJob(w http.ResponseWriter, r *http.Request) {
	exam := r.Context().Value(ExamCtx).(*domain.Exam)

	req, ok := h.readGenerateRequest(w, r)
	if !ok {
		return
	}

	job := jobs.NewJob(exam.ID, req.options(), req.NotifyEmail)

	// 锁由 worker 在任务结束后释放
	if err := h.tracker.Lock(exam.ID, job.ID); err != nil {
		h.generationError(w, r, err)
		return
	}

	state := &domain.GenerationJobState{
		ID:     job.ID,
		ExamID: exam.ID,
		Status: domain.GenerationJobQueued,
	}
	if err := h.tracker.SetJobState(state); err != nil {
		h.releaseJobLock(job)
		h.internalServerError(w, r, err)
		return
	}

	timeout := time.Duration(h.config.RabbitMQ.PublishTimeout) * time.Second
	if err := jobs.PublishJSON(h.publisher, h.config.RabbitMQ.GenerationQueue, timeout, job); err != nil {
		h.releaseJobLock(job)
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "组卷任务已提交", state)
}

func (h *Handler) releaseJobLock(job *domain.GenerationJob) {
	if err := h.tracker.Unlock(job.ExamID, job.ID); err != nil {
		slog.Error("释放组卷锁失败", "examID", job.ExamID, "jobID", job.ID, "error", err)
	}
}

func (h *Handler) GetGenerationJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	state, err := h.tracker.GetJobState(jobID)
	if err != nil {
		switch {
		case errors.Is(err, jobs.ErrJobNotFound):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取组卷任务状态成功", state)
}
