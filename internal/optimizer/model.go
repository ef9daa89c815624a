package optimizer

import (
	"errors"

	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
)

var (
	ErrInvalidParameters   = errors.New("遗传算法参数无效")
	ErrInvalidRequirements = errors.New("组卷要求无效")
)

// ChapterRequirement: 某个章节需要抽取的题目数量
type ChapterRequirement struct {
	ChapterID     int64 `json:"chapterID"`
	QuestionCount int   `json:"questionCount"`
}

// Requirements: 组卷的优化目标
// 难度和目标层次的要求数量之和为 0 时表示该项要求未启用（视为满足）
type Requirements struct {
	TotalQuestions        int                  `json:"totalQuestions"`
	ChapterRequirements   []ChapterRequirement `json:"chapterRequirements"`
	ReqSimpleCount        int                  `json:"reqSimpleCount"`
	ReqDifficultCount     int                  `json:"reqDifficultCount"`
	ReqRemindingCount     int                  `json:"reqRemindingCount"`
	ReqUnderstandingCount int                  `json:"reqUnderstandingCount"`
	ReqCreativityCount    int                  `json:"reqCreativityCount"`
}

// Chromosome: 一份候选试卷，基因即题目
type Chromosome struct {
	genes   []*domain.Question
	fitness float64
}

func (ch *Chromosome) clone() *Chromosome {
	genes := make([]*domain.Question, len(ch.genes))
	copy(genes, ch.genes)
	return &Chromosome{
		genes:   genes,
		fitness: ch.fitness,
	}
}

// 遗传算法参数
type Parameters struct {
	PopulationSize int     `json:"populationSize"` // 种群大小
	Generations    int     `json:"generations"`    // 最大迭代次数
	MutationRate   float64 `json:"mutationRate"`   // 每个基因的变异概率
	ElitismCount   int     `json:"elitismCount"`   // 精英数量
	TournamentSize int     `json:"tournamentSize"` // 锦标赛规模
}

func DefaultParameters() Parameters {
	return Parameters{
		PopulationSize: 100,
		Generations:    50,
		MutationRate:   0.1,
		ElitismCount:   2,
		TournamentSize: 5,
	}
}

type DifficultyStatistics struct {
	Simple    int `json:"simple"`
	Difficult int `json:"difficult"`
}

type ObjectiveStatistics struct {
	Reminding     int `json:"reminding"`
	Understanding int `json:"understanding"`
	Creativity    int `json:"creativity"`
}

type Statistics struct {
	TotalQuestions int                  `json:"totalQuestions"`
	ByChapter      map[int64]int        `json:"byChapter"`
	ByDifficulty   DifficultyStatistics `json:"byDifficulty"`
	ByObjective    ObjectiveStatistics  `json:"byObjective"`
}

// Result: 组卷结果
// Questions 为 nil 表示没有得到任何解
type Result struct {
	Questions   []*domain.Question `json:"questions"`
	Fitness     float64            `json:"fitness"`
	Statistics  Statistics         `json:"statistics"`
	Generations int                `json:"generations"` // 实际执行的代数
	Converged   bool               `json:"converged"`   // 是否因为达到收敛阈值而提前结束
	Interrupted bool               `json:"interrupted"` // 是否因为 context 取消而提前结束
	History     []float64          `json:"history"`     // 每一代结束后的历史最佳适应度
}
