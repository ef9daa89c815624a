package optimizer

import (
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
)

// 三项子得分的权重，和为 1 以保证总分落在 [0, 1]
const (
	ChapterWeight    = 0.4
	DifficultyWeight = 0.3
	ObjectiveWeight  = 0.3
)

/**
 * 计算一份候选试卷相对于组卷要求的适应度
 * fitness = 0.4 * chapterScore + 0.3 * difficultyScore + 0.3 * objectiveScore
 * 其中:
 *		1. 题目数量不等于 TotalQuestions 的试卷直接记 0 分
 *		2. 存在重复题目的试卷直接记 0 分（硬约束）
 *		3. 每项子得分为 max(0, 1 - 总偏差 / 总要求数)，要求数之和为 0 时记 1 分
 */
func Evaluate(questions []*domain.Question, req *Requirements) float64 {
	if questions == nil || req == nil || len(questions) != req.TotalQuestions {
		return 0
	}

	seen := make(map[int64]bool, len(questions))
	for _, q := range questions {
		if q == nil || seen[q.ID] {
			return 0
		}
		seen[q.ID] = true
	}

	stats := calcStatistics(questions)

	return ChapterWeight*chapterScore(stats, req.ChapterRequirements) +
		DifficultyWeight*difficultyScore(stats, req) +
		ObjectiveWeight*objectiveScore(stats, req)
}

func chapterScore(stats Statistics, chapterRequirements []ChapterRequirement) float64 {
	if len(chapterRequirements) == 0 {
		return 1
	}

	deviation, required := 0, 0
	for _, cr := range chapterRequirements {
		deviation += abs(stats.ByChapter[cr.ChapterID] - cr.QuestionCount)
		required += cr.QuestionCount
	}

	return deviationScore(deviation, required)
}

func difficultyScore(stats Statistics, req *Requirements) float64 {
	deviation := abs(stats.ByDifficulty.Simple-req.ReqSimpleCount) +
		abs(stats.ByDifficulty.Difficult-req.ReqDifficultCount)

	return deviationScore(deviation, req.ReqSimpleCount+req.ReqDifficultCount)
}

func objectiveScore(stats Statistics, req *Requirements) float64 {
	deviation := abs(stats.ByObjective.Reminding-req.ReqRemindingCount) +
		abs(stats.ByObjective.Understanding-req.ReqUnderstandingCount) +
		abs(stats.ByObjective.Creativity-req.ReqCreativityCount)

	return deviationScore(deviation, req.ReqRemindingCount+req.ReqUnderstandingCount+req.ReqCreativityCount)
}

// 要求数之和为 0 时视为该项要求未启用
func deviationScore(deviation, required int) float64 {
	if required == 0 {
		return 1
	}
	return max(0, 1-float64(deviation)/float64(required))
}

// 一次遍历统计试卷中各章节、难度、目标层次的题目数量
func calcStatistics(questions []*domain.Question) Statistics {
	stats := Statistics{
		TotalQuestions: len(questions),
		ByChapter:      make(map[int64]int),
	}

	for _, q := range questions {
		stats.ByChapter[q.ChapterID]++

		switch q.Difficulty {
		case domain.DifficultySimple:
			stats.ByDifficulty.Simple++
		case domain.DifficultyDifficult:
			stats.ByDifficulty.Difficult++
		}

		switch q.Objective {
		case domain.ObjectiveReminding:
			stats.ByObjective.Reminding++
		case domain.ObjectiveUnderstanding:
			stats.ByObjective.Understanding++
		case domain.ObjectiveCreativity:
			stats.ByObjective.Creativity++
		}
	}

	return stats
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
