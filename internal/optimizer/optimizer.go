package optimizer

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
)

// 历史最佳适应度达到该阈值时视为收敛，提前结束迭代
// 由于要求数量都是整数，精确的 1.0 不一定能达到
const ConvergenceThreshold = 0.99

// Optimizer 使用遗传算法从题库中选出最符合组卷要求的题目
// 每个 Optimizer 独占一个随机数源，因此不能在多个 goroutine 中同时调用 Run
type Optimizer struct {
	parameters Parameters
	rng        *rand.Rand
}

// run 保存一次 Run 调用中的只读数据
type run struct {
	req       *Requirements
	pool      []*domain.Question           // 调用方题库的副本（已按 ID 去重）
	byChapter map[int64][]*domain.Question // {chapterID: [question1, question2, ...]}
}

// New 校验参数并创建 Optimizer，rng 为 nil 时使用以当前时间为种子的随机数源
func New(parameters Parameters, rng *rand.Rand) (*Optimizer, error) {
	if err := ValidateParameters(parameters); err != nil {
		return nil, err
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Optimizer{
		parameters: parameters,
		rng:        rng,
	}, nil
}

func (o *Optimizer) Run(ctx context.Context, availableQuestions []*domain.Question, req Requirements) (*Result, error) {
	if err := validateRequirements(&req); err != nil {
		return nil, err
	}

	r := newRun(availableQuestions, &req)

	// 生成初始种群
	pop := make([]*Chromosome, o.parameters.PopulationSize)
	for i := range pop {
		pop[i] = o.randomInitChromosome(r)
	}

	// 迭代
	bestChromosomeEver := &Chromosome{
		genes:   nil,
		fitness: -1, // 保证第一代的最佳个体一定会被记录
	}
	result := &Result{
		History: make([]float64, 0, o.parameters.Generations),
	}

	for gen := 0; gen < o.parameters.Generations; gen++ {
		if ctx.Err() != nil {
			if bestChromosomeEver.genes == nil {
				return nil, ctx.Err()
			}
			result.Interrupted = true
			break
		}

		// 计算适应度并按适应度从高到低排序
		for _, ch := range pop {
			o.calcFitness(ch, r.req)
		}
		sort.SliceStable(pop, func(i, j int) bool {
			return pop[i].fitness > pop[j].fitness
		})

		if pop[0].fitness > bestChromosomeEver.fitness {
			// 需要复制，防止后续繁殖的过程中修改到同一个基因数组
			bestChromosomeEver = pop[0].clone()
		}
		result.Generations = gen + 1
		result.History = append(result.History, bestChromosomeEver.fitness)

		if bestChromosomeEver.fitness >= ConvergenceThreshold {
			result.Converged = true
			break
		}

		if gen == o.parameters.Generations-1 {
			// 最后一代不需要再繁殖
			break
		}

		pop = o.breed(pop, r)
	}

	// 题库为空时只能得到空的试卷，按没有解处理
	if len(bestChromosomeEver.genes) == 0 {
		return result, nil
	}

	result.Questions = bestChromosomeEver.genes
	result.Fitness = bestChromosomeEver.fitness
	result.Statistics = calcStatistics(bestChromosomeEver.genes)

	return result, nil
}

// breed 由已排序的种群产生下一代
func (o *Optimizer) breed(pop []*Chromosome, r *run) []*Chromosome {
	newPop := make([]*Chromosome, 0, o.parameters.PopulationSize)

	// 保留精英
	for i := 0; i < o.parameters.ElitismCount && i < len(pop); i++ {
		newPop = append(newPop, pop[i].clone())
	}

	for len(newPop) < o.parameters.PopulationSize {
		// 选择两个父本
		p1 := o.selectByTournament(pop)
		p2 := o.selectByTournament(pop)

		offspring := o.uniformCrossover(p1, p2, r)
		o.mutate(offspring, r)

		newPop = append(newPop, offspring)
	}

	return newPop
}

func newRun(availableQuestions []*domain.Question, req *Requirements) *run {
	r := &run{
		req:       req,
		pool:      make([]*domain.Question, 0, len(availableQuestions)),
		byChapter: make(map[int64][]*domain.Question),
	}

	seen := make(map[int64]bool, len(availableQuestions))
	for _, q := range availableQuestions {
		if q == nil || seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		r.pool = append(r.pool, q)
		r.byChapter[q.ChapterID] = append(r.byChapter[q.ChapterID], q)
	}

	return r
}

// ValidateParameters 检查算法参数是否合法，错误均包装了 ErrInvalidParameters
func ValidateParameters(p Parameters) error {
	switch {
	case p.PopulationSize < 1:
		return fmt.Errorf("%w: 种群大小必须大于 0", ErrInvalidParameters)
	case p.Generations < 1:
		return fmt.Errorf("%w: 迭代次数必须大于 0", ErrInvalidParameters)
	case p.MutationRate < 0 || p.MutationRate > 1:
		return fmt.Errorf("%w: 变异概率必须在 0 到 1 之间", ErrInvalidParameters)
	case p.ElitismCount < 0 || p.ElitismCount > p.PopulationSize:
		return fmt.Errorf("%w: 精英数量必须在 0 到种群大小之间", ErrInvalidParameters)
	case p.TournamentSize < 1:
		return fmt.Errorf("%w: 锦标赛规模必须大于 0", ErrInvalidParameters)
	}
	return nil
}

func validateRequirements(req *Requirements) error {
	if req.TotalQuestions < 1 {
		return fmt.Errorf("%w: 题目总数必须大于 0", ErrInvalidRequirements)
	}

	for _, cr := range req.ChapterRequirements {
		if cr.QuestionCount < 0 {
			return fmt.Errorf("%w: 章节 %d 的题目数量不能为负数", ErrInvalidRequirements, cr.ChapterID)
		}
	}

	counts := []int{
		req.ReqSimpleCount,
		req.ReqDifficultCount,
		req.ReqRemindingCount,
		req.ReqUnderstandingCount,
		req.ReqCreativityCount,
	}
	for _, c := range counts {
		if c < 0 {
			return fmt.Errorf("%w: 难度和目标层次的要求数量不能为负数", ErrInvalidRequirements)
		}
	}

	return nil
}
