package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/config"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/optimizer"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/utils"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInsufficientQuestions = errors.New("题库中的题目数量不足")
	ErrNoSolution            = errors.New("没有得到任何组卷结果")
	ErrInvalidSelection      = errors.New("选题结果无效")
	ErrCancelled             = errors.New("组卷被中途取消，结果没有保存")
)

// Store 是组卷过程中需要的数据访问接口，由 repository.Repository 实现
type Store interface {
	GetExamByID(id int64) (*domain.Exam, error)
	GetQuestionsByChapterIDs(chapterIDs []int64) ([]*domain.Question, error)
	ReplaceExamQuestions(examID int64, questionIDs []int64) error
}

type Service struct {
	config  *config.Config
	store   Store
	metrics *metrics.Metrics

	// 每次独立运行都需要一个新的随机数源
	newRand func() *rand.Rand
}

func NewService(cfg *config.Config, store Store, m *metrics.Metrics) *Service {
	return &Service{
		config:  cfg,
		store:   store,
		metrics: m,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(rand.Int63()))
		},
	}
}

type Outcome struct {
	ExamID        int64                `json:"examID"`
	ExamName      string               `json:"examName"`
	Questions     []*domain.Question   `json:"questions"`
	QuestionIDs   []int64              `json:"questionIDs"`
	Fitness       float64              `json:"fitness"`
	Statistics    optimizer.Statistics `json:"statistics"`
	Generations   int                  `json:"generations"`
	Converged     bool                 `json:"converged"`
	Interrupted   bool                 `json:"interrupted"`
	Parameters    optimizer.Parameters `json:"parameters"`
	Restarts      int                  `json:"restarts"`
	AlgorithmUsed string               `json:"algorithmUsed"`
	Saved         bool                 `json:"saved"`
}

// Requirements 由考试记录构建组卷要求
func Requirements(exam *domain.Exam) optimizer.Requirements {
	req := optimizer.Requirements{
		TotalQuestions:        int(exam.TotalQuestions),
		ChapterRequirements:   make([]optimizer.ChapterRequirement, len(exam.ChapterRequirements)),
		ReqSimpleCount:        int(exam.ReqSimpleCount),
		ReqDifficultCount:     int(exam.ReqDifficultCount),
		ReqRemindingCount:     int(exam.ReqRemindingCount),
		ReqUnderstandingCount: int(exam.ReqUnderstandingCount),
		ReqCreativityCount:    int(exam.ReqCreativityCount),
	}

	for i, cr := range exam.ChapterRequirements {
		req.ChapterRequirements[i] = optimizer.ChapterRequirement{
			ChapterID:     cr.ChapterID,
			QuestionCount: int(cr.RequiredQuestionCount),
		}
	}

	return req
}

// Parameters 将请求中的参数覆盖到配置中的默认参数上，返回算法参数和独立运行次数
func (s *Service) Parameters(opts domain.GenerationOptions) (optimizer.Parameters, int) {
	ga := s.config.GeneticAlgorithm
	p := optimizer.Parameters{
		PopulationSize: ga.PopulationSize,
		Generations:    ga.Generations,
		MutationRate:   ga.MutationRate,
		ElitismCount:   ga.ElitismCount,
		TournamentSize: ga.TournamentSize,
	}
	restarts := ga.Restarts

	if opts.PopulationSize != nil {
		p.PopulationSize = *opts.PopulationSize
	}
	if opts.Generations != nil {
		p.Generations = *opts.Generations
	}
	if opts.MutationRate != nil {
		p.MutationRate = *opts.MutationRate
	}
	if opts.ElitismCount != nil {
		p.ElitismCount = *opts.ElitismCount
	}
	if opts.TournamentSize != nil {
		p.TournamentSize = *opts.TournamentSize
	}
	if opts.Restarts != nil {
		restarts = *opts.Restarts
	}

	return p, max(restarts, 1)
}

// Generate 为考试自动组卷，save 为 true 时会替换考试原有的题目
func (s *Service) Generate(ctx context.Context, examID int64, opts domain.GenerationOptions, save bool) (*Outcome, error) {
	mode := "preview"
	if save {
		mode = "save"
	}

	start := time.Now()
	outcome, err := s.generate(ctx, examID, opts, save)
	duration := time.Since(start)

	if s.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		s.metrics.GenerationsTotal.WithLabelValues(mode, status).Inc()
		s.metrics.GenerationDuration.WithLabelValues(mode).Observe(duration.Seconds())
		if err == nil {
			s.metrics.Fitness.Observe(outcome.Fitness)
			s.metrics.GenerationsUsed.Observe(float64(outcome.Generations))
		}
	}

	if err != nil {
		return nil, err
	}

	slog.Info("自动组卷完成", "examID", examID, "mode", mode, "fitness", outcome.Fitness, "generations", outcome.Generations, "restarts", outcome.Restarts, "duration", duration)
	return outcome, nil
}

func (s *Service) generate(ctx context.Context, examID int64, opts domain.GenerationOptions, save bool) (*Outcome, error) {
	// 先校验参数，避免无意义地访问数据库
	params, restarts := s.Parameters(opts)
	if err := optimizer.ValidateParameters(params); err != nil {
		return nil, err
	}

	exam, err := s.store.GetExamByID(examID)
	if err != nil {
		return nil, err
	}

	questions, err := s.store.GetQuestionsByChapterIDs(exam.ChapterIDs())
	if err != nil {
		return nil, err
	}

	if err := checkQuestionPool(exam, questions); err != nil {
		return nil, err
	}

	if s.config.Generation.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.config.Generation.Timeout)*time.Second)
		defer cancel()
	}

	best, err := s.runBest(ctx, questions, Requirements(exam), params, restarts)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		ExamID:        exam.ID,
		ExamName:      exam.Name,
		Questions:     best.Questions,
		QuestionIDs:   questionIDs(best.Questions),
		Fitness:       best.Fitness,
		Statistics:    best.Statistics,
		Generations:   best.Generations,
		Converged:     best.Converged,
		Interrupted:   best.Interrupted,
		Parameters:    params,
		Restarts:      restarts,
		AlgorithmUsed: "genetic",
	}

	if save {
		// 客户端断开或 worker 退出时不能用未完成的结果覆盖原有题目，超时得到的结果仍然保存
		if cancelledByCaller(ctx, best) {
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
		if err := s.store.ReplaceExamQuestions(exam.ID, outcome.QuestionIDs); err != nil {
			return nil, err
		}
		outcome.Saved = true
	}

	return outcome, nil
}

// runBest 并行地独立运行 restarts 次遗传算法，返回适应度最高的结果
func (s *Service) runBest(ctx context.Context, questions []*domain.Question, req optimizer.Requirements, params optimizer.Parameters, restarts int) (*optimizer.Result, error) {
	results := make([]*optimizer.Result, restarts)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < restarts; i++ {
		// 随机数源需要在当前 goroutine 中创建
		o, err := optimizer.New(params, s.newRand())
		if err != nil {
			return nil, err
		}

		g.Go(func() error {
			res, err := o.Run(gctx, questions, req)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var best *optimizer.Result
	for _, res := range results {
		if res == nil || len(res.Questions) == 0 {
			continue
		}
		if best == nil || res.Fitness > best.Fitness {
			best = res
		}
	}

	if best == nil {
		return nil, ErrNoSolution
	}

	return best, nil
}

func cancelledByCaller(ctx context.Context, res *optimizer.Result) bool {
	return res.Interrupted && errors.Is(ctx.Err(), context.Canceled)
}

// Save 保存之前预览得到的选题结果
func (s *Service) Save(examID int64, ids []int64) error {
	exam, err := s.store.GetExamByID(examID)
	if err != nil {
		return err
	}

	questions, err := s.store.GetQuestionsByChapterIDs(exam.ChapterIDs())
	if err != nil {
		return err
	}

	// 预览之后题库可能发生了变化，需要重新检查
	if err := utils.ValidateSelection(exam, questions, ids); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}

	return s.store.ReplaceExamQuestions(exam.ID, ids)
}

// 在运行算法之前检查题库是否足够，题库不足时算法无论如何也得不到可用的结果
func checkQuestionPool(exam *domain.Exam, questions []*domain.Question) error {
	if len(questions) < int(exam.TotalQuestions) {
		return fmt.Errorf("%w: 需要 %d 道题，题库中只有 %d 道", ErrInsufficientQuestions, exam.TotalQuestions, len(questions))
	}

	available := make(map[int64]int32)
	for _, q := range questions {
		available[q.ChapterID]++
	}

	required := make(map[int64]int32)
	for _, cr := range exam.ChapterRequirements {
		required[cr.ChapterID] += cr.RequiredQuestionCount
	}

	for _, chapterID := range exam.ChapterIDs() {
		if available[chapterID] < required[chapterID] {
			return fmt.Errorf("%w: 章节 %d 需要 %d 道题，题库中只有 %d 道", ErrInsufficientQuestions, chapterID, required[chapterID], available[chapterID])
		}
	}

	return nil
}

func questionIDs(questions []*domain.Question) []int64 {
	ids := make([]int64, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}
