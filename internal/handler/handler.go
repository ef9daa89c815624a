package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/config"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/generation"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/jobs"
)

type ExamStore interface {
	GetExamByID(id int64) (*domain.Exam, error)
	GetExamQuestionIDs(examID int64) ([]int64, error)
}

type Generator interface {
	Generate(ctx context.Context, examID int64, opts domain.GenerationOptions, save bool) (*generation.Outcome, error)
	Save(examID int64, questionIDs []int64) error
}

// Tracker 由 jobs.Tracker 实现
type Tracker interface {
	Lock(examID int64, owner string) error
	Unlock(examID int64, owner string) error
	SavePreview(p *jobs.Preview) error
	GetPreview(examID int64) (*jobs.Preview, error)
	DeletePreview(examID int64) error
	SetJobState(state *domain.GenerationJobState) error
	GetJobState(jobID string) (*domain.GenerationJobState, error)
}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	exams      ExamStore
	generator  Generator
	tracker    Tracker
	publisher  jobs.Publisher
	gatherer   prometheus.Gatherer
	translator ut.Translator

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, exams ExamStore, gen Generator, tracker Tracker, pub jobs.Publisher, gatherer prometheus.Gatherer) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		exams:      exams,
		generator:  gen,
		tracker:    tracker,
		publisher:  pub,
		gatherer:   gatherer,
		translator: trans,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	h.Mux.Route("/exams/{id}", func(r chi.Router) {
		r.Use(h.examInfo)
		r.Get("/questions", h.GetExamQuestions)
		r.Route("/generate", func(r chi.Router) {
			r.Post("/", h.GenerateExam)
			r.Post("/preview", h.PreviewExamGeneration)
			r.Post("/confirm", h.ConfirmExamGeneration)
			r.Post("/jobs", h.CreateGenerationJob)
		})
	})

	h.Mux.Get("/generation-jobs/{jobID}", h.GetGenerationJob)
}
