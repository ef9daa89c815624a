package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
)

func newQuestion(id, chapterID int64, d domain.Difficulty, o domain.Objective) *domain.Question {
	return &domain.Question{
		ID:         id,
		ChapterID:  chapterID,
		Difficulty: d,
		Objective:  o,
	}
}

// 2 个章节 x 2 种难度 x 3 种目标层次，每种组合一道题
func completeBank() []*domain.Question {
	difficulties := []domain.Difficulty{domain.DifficultySimple, domain.DifficultyDifficult}
	objectives := []domain.Objective{domain.ObjectiveReminding, domain.ObjectiveUnderstanding, domain.ObjectiveCreativity}

	questions := make([]*domain.Question, 0, 12)
	id := int64(1)
	for chapterID := int64(1); chapterID <= 2; chapterID++ {
		for _, d := range difficulties {
			for _, o := range objectives {
				questions = append(questions, newQuestion(id, chapterID, d, o))
				id++
			}
		}
	}
	return questions
}

func balancedRequirements() Requirements {
	return Requirements{
		TotalQuestions: 12,
		ChapterRequirements: []ChapterRequirement{
			{ChapterID: 1, QuestionCount: 6},
			{ChapterID: 2, QuestionCount: 6},
		},
		ReqSimpleCount:        6,
		ReqDifficultCount:     6,
		ReqRemindingCount:     4,
		ReqUnderstandingCount: 4,
		ReqCreativityCount:    4,
	}
}

func TestEvaluatePerfectMatch(t *testing.T) {
	req := balancedRequirements()
	assert.InDelta(t, 1.0, Evaluate(completeBank(), &req), 1e-9)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	req := balancedRequirements()
	questions := completeBank()[:6]
	req.TotalQuestions = 6

	first := Evaluate(questions, &req)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(questions, &req))
	}
}

func TestEvaluateWrongSize(t *testing.T) {
	req := balancedRequirements()
	bank := completeBank()

	assert.Equal(t, 0.0, Evaluate(nil, &req))
	assert.Equal(t, 0.0, Evaluate(bank[:11], &req))
	assert.Equal(t, 0.0, Evaluate(append(bank, newQuestion(13, 1, domain.DifficultySimple, domain.ObjectiveReminding)), &req))
}

func TestEvaluateDuplicates(t *testing.T) {
	req := balancedRequirements()
	questions := completeBank()
	// 用第一题替换最后一题：数量正确，但存在重复
	questions[11] = questions[0]

	assert.Equal(t, 0.0, Evaluate(questions, &req))
}

func TestEvaluateVacuousRequirements(t *testing.T) {
	// 全部来自章节 1 的简单识记题
	questions := make([]*domain.Question, 0, 4)
	for i := int64(1); i <= 4; i++ {
		questions = append(questions, newQuestion(i, 1, domain.DifficultySimple, domain.ObjectiveReminding))
	}

	req := Requirements{TotalQuestions: 4}
	assert.InDelta(t, 1.0, Evaluate(questions, &req), 1e-9)

	// 只启用章节要求，且要求的章节完全不匹配
	req.ChapterRequirements = []ChapterRequirement{{ChapterID: 2, QuestionCount: 4}}
	assert.InDelta(t, 0.6, Evaluate(questions, &req), 1e-9)
}

func TestEvaluatePartialDeviation(t *testing.T) {
	bank := completeBank()
	// 章节 1 的全部 6 道题：3 简单 3 困难，每种目标层次 2 道
	questions := bank[:6]

	req := Requirements{
		TotalQuestions:        6,
		ChapterRequirements:   []ChapterRequirement{{ChapterID: 1, QuestionCount: 3}, {ChapterID: 2, QuestionCount: 3}},
		ReqSimpleCount:        4,
		ReqDifficultCount:     2,
		ReqRemindingCount:     2,
		ReqUnderstandingCount: 2,
		ReqCreativityCount:    2,
	}

	// chapter: 偏差 |6-3| + |0-3| = 6，要求 6 => 0
	// difficulty: 偏差 |3-4| + |3-2| = 2，要求 6 => 2/3
	// objective: 完全匹配 => 1
	expected := 0.4*0 + 0.3*(2.0/3.0) + 0.3*1
	assert.InDelta(t, expected, Evaluate(questions, &req), 1e-9)
}

func TestEvaluateScoreNeverNegative(t *testing.T) {
	questions := []*domain.Question{
		newQuestion(1, 1, domain.DifficultyDifficult, domain.ObjectiveCreativity),
		newQuestion(2, 1, domain.DifficultyDifficult, domain.ObjectiveCreativity),
	}
	req := Requirements{
		TotalQuestions:      2,
		ChapterRequirements: []ChapterRequirement{{ChapterID: 9, QuestionCount: 1}},
		ReqSimpleCount:      1,
		ReqRemindingCount:   1,
	}

	// 每一项的偏差都超过了要求数量，得分应当被截断为 0 而不是负数
	assert.Equal(t, 0.0, Evaluate(questions, &req))
}

func TestCalcStatistics(t *testing.T) {
	stats := calcStatistics(completeBank())

	assert.Equal(t, 12, stats.TotalQuestions)
	assert.Equal(t, map[int64]int{1: 6, 2: 6}, stats.ByChapter)
	assert.Equal(t, DifficultyStatistics{Simple: 6, Difficult: 6}, stats.ByDifficulty)
	assert.Equal(t, ObjectiveStatistics{Reminding: 4, Understanding: 4, Creativity: 4}, stats.ByObjective)
}
