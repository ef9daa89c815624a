package optimizer

import (
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
)

// randomInitChromosome 随机初始化一个染色体
// 优先按章节要求从对应章节中抽题，不足的部分从整个题库中随机补齐，超出的部分截断
func (o *Optimizer) randomInitChromosome(r *run) *Chromosome {
	genes := make([]*domain.Question, 0, r.req.TotalQuestions)
	used := make(map[int64]bool, r.req.TotalQuestions)

	for _, cr := range r.req.ChapterRequirements {
		// 打乱该章节题目的副本，避免修改分组中的顺序
		candidates := o.shuffled(r.byChapter[cr.ChapterID])

		chosen := 0
		for _, q := range candidates {
			if chosen >= cr.QuestionCount {
				break
			}
			// 同一章节可能在要求中出现多次，这里需要跳过已经选过的题目
			if used[q.ID] {
				continue
			}
			genes = append(genes, q)
			used[q.ID] = true
			chosen++
		}
	}

	genes = o.fill(genes, used, r.pool, r.req.TotalQuestions)

	if len(genes) > r.req.TotalQuestions {
		genes = genes[:r.req.TotalQuestions]
	}

	return &Chromosome{
		genes: genes,
	}
}

// calcFitness 计算染色体的适应度并赋值给染色体
func (o *Optimizer) calcFitness(ch *Chromosome, req *Requirements) {
	ch.fitness = Evaluate(ch.genes, req)
}

// 锦标赛选择：有放回地随机抽取 TournamentSize 个个体，适应度最高者胜出
// pop 需要已经计算过适应度
func (o *Optimizer) selectByTournament(pop []*Chromosome) *Chromosome {
	best := pop[o.rng.Intn(len(pop))]

	for i := 1; i < o.parameters.TournamentSize; i++ {
		candidate := pop[o.rng.Intn(len(pop))]
		if candidate.fitness > best.fitness {
			best = candidate
		}
	}

	return best
}

// 均匀交叉
// 每个位置抛硬币决定取自哪个父本，如果该题目已经在子代中出现则空出这个位置，最后从题库中随机补齐
func (o *Optimizer) uniformCrossover(p1 *Chromosome, p2 *Chromosome, r *run) *Chromosome {
	genes := make([]*domain.Question, 0, r.req.TotalQuestions)
	used := make(map[int64]bool, r.req.TotalQuestions)

	for i := 0; i < r.req.TotalQuestions; i++ {
		source := p1
		if o.rng.Intn(2) == 1 {
			source = p2
		}

		// 父本长度不足时（题库不够大）这个位置直接留空
		if i >= len(source.genes) {
			continue
		}

		q := source.genes[i]
		if used[q.ID] {
			continue
		}
		genes = append(genes, q)
		used[q.ID] = true
	}

	genes = o.fill(genes, used, r.pool, r.req.TotalQuestions)

	return &Chromosome{
		genes: genes,
	}
}

// 变异
// 每个基因都有 MutationRate 的概率被替换成一道不在当前试卷中的题目，找不到可替换的题目时保持不变
func (o *Optimizer) mutate(ch *Chromosome, r *run) {
	used := make(map[int64]bool, len(ch.genes))
	for _, q := range ch.genes {
		used[q.ID] = true
	}

	for i := range ch.genes {
		if o.rng.Float64() >= o.parameters.MutationRate {
			continue
		}

		candidates := make([]*domain.Question, 0, len(r.pool))
		for _, q := range r.pool {
			if !used[q.ID] {
				candidates = append(candidates, q)
			}
		}

		if len(candidates) == 0 {
			continue
		}

		replacement := candidates[o.rng.Intn(len(candidates))]
		delete(used, ch.genes[i].ID)
		ch.genes[i] = replacement
		used[replacement.ID] = true
	}
}

// fill 从题库中随机抽取未使用的题目，把 genes 补齐到 target 道题
// 题库中的可用题目不够时 genes 会短于 target
func (o *Optimizer) fill(genes []*domain.Question, used map[int64]bool, pool []*domain.Question, target int) []*domain.Question {
	if len(genes) >= target {
		return genes
	}

	remaining := make([]*domain.Question, 0, len(pool))
	for _, q := range pool {
		if !used[q.ID] {
			remaining = append(remaining, q)
		}
	}
	o.shuffle(remaining)

	for _, q := range remaining {
		if len(genes) >= target {
			break
		}
		genes = append(genes, q)
		used[q.ID] = true
	}

	return genes
}

// 返回打乱后的副本
func (o *Optimizer) shuffled(questions []*domain.Question) []*domain.Question {
	cp := append([]*domain.Question{}, questions...) // 复制数组，避免修改原数组
	o.shuffle(cp)
	return cp
}

// 原地打乱
func (o *Optimizer) shuffle(questions []*domain.Question) {
	o.rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
}
