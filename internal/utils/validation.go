package utils

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
)

var (
	difficulties = []domain.Difficulty{domain.DifficultySimple, domain.DifficultyDifficult}
	objectives   = []domain.Objective{domain.ObjectiveReminding, domain.ObjectiveUnderstanding, domain.ObjectiveCreativity}
)

func IsValidDifficulty(d domain.Difficulty) bool {
	return slices.Contains(difficulties, d)
}

func IsValidObjective(o domain.Objective) bool {
	return slices.Contains(objectives, o)
}

// ValidateExamRequirements 检查考试的各项要求数量是否自洽
// 难度和目标层次的要求数量之和要么为 0（不启用），要么等于题目总数
func ValidateExamRequirements(exam *domain.Exam) error {
	if exam.TotalQuestions <= 0 {
		return errors.New("题目总数必须大于 0")
	}

	if len(exam.ChapterRequirements) == 0 {
		return errors.New("至少需要一个章节要求")
	}

	var chapterSum int32 = 0
	seen := make(map[int64]bool)
	for i, cr := range exam.ChapterRequirements {
		if cr.RequiredQuestionCount <= 0 {
			return fmt.Errorf("第 %d 个章节要求的题目数量必须大于 0", i+1)
		}
		if seen[cr.ChapterID] {
			return fmt.Errorf("章节 %d 重复出现在要求中", cr.ChapterID)
		}
		seen[cr.ChapterID] = true
		chapterSum += cr.RequiredQuestionCount
	}

	if chapterSum != exam.TotalQuestions {
		return fmt.Errorf("章节要求的题目数量之和 %d 不等于题目总数 %d", chapterSum, exam.TotalQuestions)
	}

	difficultySum := exam.ReqSimpleCount + exam.ReqDifficultCount
	if exam.ReqSimpleCount < 0 || exam.ReqDifficultCount < 0 {
		return errors.New("难度要求数量不能为负数")
	}
	if difficultySum != 0 && difficultySum != exam.TotalQuestions {
		return errors.New("难度要求数量之和必须等于题目总数")
	}

	objectiveSum := exam.ReqRemindingCount + exam.ReqUnderstandingCount + exam.ReqCreativityCount
	if exam.ReqRemindingCount < 0 || exam.ReqUnderstandingCount < 0 || exam.ReqCreativityCount < 0 {
		return errors.New("目标层次要求数量不能为负数")
	}
	if objectiveSum != 0 && objectiveSum != exam.TotalQuestions {
		return errors.New("目标层次要求数量之和必须等于题目总数")
	}

	return nil
}

func ValidateQuestion(q *domain.Question) error {
	if q.QuestionText == "" {
		return errors.New("题干不能为空")
	}

	for i, choice := range q.Choices {
		if choice == "" {
			return fmt.Errorf("选项 %d 不能为空", i+1)
		}
	}

	if q.CorrectChoice < 1 || q.CorrectChoice > int32(len(q.Choices)) {
		return fmt.Errorf("正确选项必须在 1 到 %d 之间", len(q.Choices))
	}

	if !IsValidDifficulty(q.Difficulty) {
		return fmt.Errorf("无效的难度 %q", q.Difficulty)
	}

	if !IsValidObjective(q.Objective) {
		return fmt.Errorf("无效的目标层次 %q", q.Objective)
	}

	return nil
}

// ValidateSelection 检查一组选中的题目能否作为该考试的题目：
// 数量等于题目总数、没有重复、且每道题都来自考试要求的章节
func ValidateSelection(exam *domain.Exam, pool []*domain.Question, ids []int64) error {
	if len(ids) != int(exam.TotalQuestions) {
		return fmt.Errorf("选中的题目数量 %d 不等于题目总数 %d", len(ids), exam.TotalQuestions)
	}

	available := make(map[int64]bool, len(pool))
	for _, q := range pool {
		available[q.ID] = true
	}

	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("题目 %d 重复出现", id)
		}
		seen[id] = true

		if !available[id] {
			return fmt.Errorf("题目 %d 不属于该考试要求的章节", id)
		}
	}

	return nil
}
