package handler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/generation"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/jobs"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/optimizer"
)

// 所有字段都是可选的，未提供时使用配置中的默认参数
type generateRequest struct {
	PopulationSize *int     `json:"populationSize" validate:"omitempty,min=1,max=10000"`
	Generations    *int     `json:"generations" validate:"omitempty,min=1,max=10000"`
	MutationRate   *float64 `json:"mutationRate" validate:"omitempty,min=0,max=1"`
	ElitismCount   *int     `json:"elitismCount" validate:"omitempty,min=0"`
	TournamentSize *int     `json:"tournamentSize" validate:"omitempty,min=1"`
	Restarts       *int     `json:"restarts" validate:"omitempty,min=1,max=16"`
	NotifyEmail    string   `json:"notifyEmail" validate:"omitempty,email"`
}

func (req *generateRequest) options() domain.GenerationOptions {
	return domain.GenerationOptions{
		PopulationSize: req.PopulationSize,
		Generations:    req.Generations,
		MutationRate:   req.MutationRate,
		ElitismCount:   req.ElitismCount,
		TournamentSize: req.TournamentSize,
		Restarts:       req.Restarts,
	}
}

func (h *Handler) readGenerateRequest(w http.ResponseWriter, r *http.Request) (*generateRequest, bool) {
	req := &generateRequest{}
	if err := h.readJSON(r, req); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return nil, false
	}
	return req, true
}

func (h *Handler) generationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, optimizer.ErrInvalidParameters),
		errors.Is(err, optimizer.ErrInvalidRequirements),
		errors.Is(err, generation.ErrInsufficientQuestions),
		errors.Is(err, generation.ErrInvalidSelection),
		errors.Is(err, generation.ErrNoSolution),
		errors.Is(err, generation.ErrCancelled),
		errors.Is(err, jobs.ErrLocked),
		errors.Is(err, jobs.ErrPreviewNotFound):
		h.errorResponse(w, r, err.Error())
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "考试不存在")
	case errors.Is(err, context.DeadlineExceeded):
		h.errorResponse(w, r, "组卷超时，请减少迭代次数后重试")
	default:
		h.internalServerError(w, r, err)
	}
}

// generate 在持有考试组卷锁的情况下执行一次组卷
func (h *Handler) generate(r *http.Request, exam *domain.Exam, opts domain.GenerationOptions, save bool) (*generation.Outcome, error) {
	owner := uuid.NewString()
	if err := h.tracker.Lock(exam.ID, owner); err != nil {
		return nil, err
	}
	defer func() {
		if err := h.tracker.Unlock(exam.ID, owner); err != nil {
			slog.Error("释放组卷锁失败", "examID", exam.ID, "error", err)
		}
	}()

	return h.generator.Generate(r.Context(), exam.ID, opts, save)
}

func (h *Handler) GenerateExam(w http.ResponseWriter, r *http.Request) {
	exam := r.Context().Value(ExamCtx).(*domain.Exam)

	req, ok := h.readGenerateRequest(w, r)
	if !ok {
		return
	}

	outcome, err := h.generate(r, exam, req.options(), true)
	if err != nil {
		h.generationError(w, r, err)
		return
	}

	// 之前的预览结果已经没有意义了
	if err := h.tracker.DeletePreview(exam.ID); err != nil {
		slog.Error("删除组卷预览失败", "examID", exam.ID, "error", err)
	}

	h.successResponse(w, r, "自动组卷成功", outcome)
}

func (h *Handler) PreviewExamGeneration(w http.ResponseWriter, r *http.Request) {
	exam := r.Context().Value(ExamCtx).(*domain.Exam)

	req, ok := h.readGenerateRequest(w, r)
	if !ok {
		return
	}

	outcome, err := h.generate(r, exam, req.options(), false)
	if err != nil {
		h.generationError(w, r, err)
		return
	}

	preview := &jobs.Preview{
		ExamID:      exam.ID,
		QuestionIDs: outcome.QuestionIDs,
		Fitness:     outcome.Fitness,
		CreatedAt:   time.Now(),
	}
	if err := h.tracker.SavePreview(preview); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "组卷预览生成成功", outcome)
}

func (h *Handler) ConfirmExamGeneration(w http.ResponseWriter, r *http.Request) {
	exam := r.Context().Value(ExamCtx).(*domain.Exam)

	preview, err := h.tracker.GetPreview(exam.ID)
	if err != nil {
		h.generationError(w, r, err)
		return
	}

	owner := uuid.NewString()
	if err := h.tracker.Lock(exam.ID, owner); err != nil {
		h.generationError(w, r, err)
		return
	}
	defer func() {
		if err := h.tracker.Unlock(exam.ID, owner); err != nil {
			slog.Error("释放组卷锁失败", "examID", exam.ID, "error", err)
		}
	}()

	if err := h.generator.Save(exam.ID, preview.QuestionIDs); err != nil {
		h.generationError(w, r, err)
		return
	}

	if err := h.tracker.DeletePreview(exam.ID); err != nil {
		slog.Error("删除组卷预览失败", "examID", exam.ID, "error", err)
	}

	h.successResponse(w, r, "组卷结果已保存", preview)
}

// GetExamQuestions 返回考试当前已保存的题目，按组卷顺序排列
func (h *Handler) GetExamQuestions(w http.ResponseWriter, r *http.Request) {
	exam := r.Context().Value(ExamCtx).(*domain.Exam)

	ids, err := h.exams.GetExamQuestionIDs(exam.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取考试题目成功", ids)
}
