package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
)

func validExam() *domain.Exam {
	return &domain.Exam{
		ID:             1,
		TotalQuestions: 6,
		ChapterRequirements: []domain.ExamChapterRequirement{
			{ChapterID: 10, RequiredQuestionCount: 4},
			{ChapterID: 20, RequiredQuestionCount: 2},
		},
		ReqSimpleCount:        3,
		ReqDifficultCount:     3,
		ReqRemindingCount:     2,
		ReqUnderstandingCount: 2,
		ReqCreativityCount:    2,
	}
}

func TestValidateExamRequirements(t *testing.T) {
	require.NoError(t, ValidateExamRequirements(validExam()))

	// 难度和目标层次要求全为 0 表示不启用
	exam := validExam()
	exam.ReqSimpleCount, exam.ReqDifficultCount = 0, 0
	exam.ReqRemindingCount, exam.ReqUnderstandingCount, exam.ReqCreativityCount = 0, 0, 0
	assert.NoError(t, ValidateExamRequirements(exam))

	tests := []struct {
		name   string
		modify func(e *domain.Exam)
	}{
		{"zero total", func(e *domain.Exam) { e.TotalQuestions = 0 }},
		{"no chapters", func(e *domain.Exam) { e.ChapterRequirements = nil }},
		{"chapter sum mismatch", func(e *domain.Exam) { e.ChapterRequirements[0].RequiredQuestionCount = 5 }},
		{"duplicate chapter", func(e *domain.Exam) { e.ChapterRequirements[1].ChapterID = 10 }},
		{"zero chapter count", func(e *domain.Exam) {
			e.ChapterRequirements = append(e.ChapterRequirements, domain.ExamChapterRequirement{ChapterID: 30})
		}},
		{"difficulty sum mismatch", func(e *domain.Exam) { e.ReqSimpleCount = 4 }},
		{"negative difficulty", func(e *domain.Exam) { e.ReqSimpleCount, e.ReqDifficultCount = -1, 7 }},
		{"objective sum mismatch", func(e *domain.Exam) { e.ReqCreativityCount = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exam := validExam()
			tt.modify(exam)
			assert.Error(t, ValidateExamRequirements(exam))
		})
	}
}

func TestValidateQuestion(t *testing.T) {
	q := &domain.Question{
		QuestionText:  "极限的定义是什么",
		Choices:       [3]string{"A", "B", "C"},
		CorrectChoice: 2,
		Difficulty:    domain.DifficultySimple,
		Objective:     domain.ObjectiveUnderstanding,
	}
	require.NoError(t, ValidateQuestion(q))

	bad := *q
	bad.CorrectChoice = 4
	assert.Error(t, ValidateQuestion(&bad))

	bad = *q
	bad.Choices[2] = ""
	assert.Error(t, ValidateQuestion(&bad))

	bad = *q
	bad.Difficulty = "medium"
	assert.Error(t, ValidateQuestion(&bad))

	bad = *q
	bad.Objective = "analysis"
	assert.Error(t, ValidateQuestion(&bad))
}

func TestValidateSelection(t *testing.T) {
	exam := validExam()
	exam.TotalQuestions = 3

	pool := []*domain.Question{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}

	assert.NoError(t, ValidateSelection(exam, pool, []int64{4, 2, 1}))
	assert.Error(t, ValidateSelection(exam, pool, []int64{1, 2}))
	assert.Error(t, ValidateSelection(exam, pool, []int64{1, 2, 2}))
	assert.Error(t, ValidateSelection(exam, pool, []int64{1, 2, 99}))
}

func TestChapterCode(t *testing.T) {
	assert.Equal(t, "C01-JX", ChapterCode(1, "极限"))
	assert.Equal(t, "C12-SJJG", ChapterCode(12, "数据结构"))
	assert.Equal(t, "C03", ChapterCode(3, "ABC"))
}

func TestGenerateRandomExamIsConsistent(t *testing.T) {
	chapters := []*domain.Chapter{{ID: 1}, {ID: 2}, {ID: 3}}

	for i := 0; i < 50; i++ {
		exam := GenerateRandomExam(7, chapters, 20)
		assert.Equal(t, int64(7), exam.CourseID)
		assert.Len(t, exam.ChapterRequirements, 3)
		assert.NoError(t, ValidateExamRequirements(exam))
	}

	// 题目总数少于章节数时只使用前面的章节
	exam := GenerateRandomExam(7, chapters, 2)
	assert.Len(t, exam.ChapterRequirements, 2)
	assert.NoError(t, ValidateExamRequirements(exam))
}

func TestGenerateRandomQuestionIsValid(t *testing.T) {
	for i := 0; i < 50; i++ {
		q := GenerateRandomQuestion(3)
		assert.Equal(t, int64(3), q.ChapterID)
		assert.NoError(t, ValidateQuestion(q))
	}
}
