package seed

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/utils"
)

type memoryStore struct {
	nextID    int64
	courses   []*domain.Course
	chapters  []*domain.Chapter
	questions []*domain.Question
	exams     []*domain.Exam
}

func (s *memoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memoryStore) CreateCourse(c *domain.Course) error {
	c.ID = s.id()
	s.courses = append(s.courses, c)
	return nil
}

func (s *memoryStore) GetCourseByName(name string) (*domain.Course, error) {
	for _, c := range s.courses {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memoryStore) CreateChapter(ch *domain.Chapter) error {
	ch.ID = s.id()
	s.chapters = append(s.chapters, ch)
	return nil
}

func (s *memoryStore) GetChaptersByCourseID(courseID int64) ([]*domain.Chapter, error) {
	res := make([]*domain.Chapter, 0)
	for _, ch := range s.chapters {
		if ch.CourseID == courseID {
			res = append(res, ch)
		}
	}
	return res, nil
}

func (s *memoryStore) CreateQuestion(q *domain.Question) error {
	q.ID = s.id()
	s.questions = append(s.questions, q)
	return nil
}

func (s *memoryStore) CreateExam(exam *domain.Exam) error {
	exam.ID = s.id()
	s.exams = append(s.exams, exam)
	return nil
}

const sampleBank = `chapter_number,question_text,choice_1,choice_2,choice_3,correct_choice,difficulty,objective
1,极限的定义,A,B,C,1,simple,reminding
2,导数的几何意义,A,B,C,3,Difficult,Creativity
`

func TestParseQuestionBank(t *testing.T) {
	records, err := ParseQuestionBank(strings.NewReader(sampleBank))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, int32(1), records[0].ChapterNumber)
	assert.Equal(t, "极限的定义", records[0].Question.QuestionText)
	assert.Equal(t, domain.DifficultySimple, records[0].Question.Difficulty)
	assert.Equal(t, domain.DifficultyDifficult, records[1].Question.Difficulty)
	assert.Equal(t, domain.ObjectiveCreativity, records[1].Question.Objective)
	assert.Equal(t, int32(3), records[1].Question.CorrectChoice)
	assert.Empty(t, records[0].ChapterTitle)
}

func TestParseQuestionBankErrors(t *testing.T) {
	_, err := ParseQuestionBank(strings.NewReader("chapter_number,question_text\n1,题目\n"))
	assert.ErrorContains(t, err, "choice_1")

	_, err = ParseQuestionBank(strings.NewReader(strings.Replace(sampleBank, "2,导数", "x,导数", 1)))
	assert.ErrorContains(t, err, "第 3 行")

	_, err = ParseQuestionBank(strings.NewReader(strings.Replace(sampleBank, "simple", "medium", 1)))
	assert.ErrorContains(t, err, "第 2 行")

	_, err = ParseQuestionBank(strings.NewReader(""))
	assert.Error(t, err)
}

func TestImportQuestionBank(t *testing.T) {
	s := &memoryStore{}

	cnt, err := ImportQuestionBank(s, "高等数学", "./data/questions.csv")
	require.NoError(t, err)
	assert.Equal(t, 36, cnt)
	require.Len(t, s.courses, 1)
	require.Len(t, s.chapters, 3)
	assert.Equal(t, "函数与极限", s.chapters[0].Title)
	assert.Equal(t, utils.ChapterCode(1, "函数与极限"), s.chapters[0].Code)

	// 再次导入时复用已有的课程和章节
	cnt, err = ImportQuestionBank(s, "高等数学", "./data/questions.csv")
	require.NoError(t, err)
	assert.Equal(t, 36, cnt)
	assert.Len(t, s.courses, 1)
	assert.Len(t, s.chapters, 3)
	assert.Len(t, s.questions, 72)
}

func TestSeedRandomCourseAndExam(t *testing.T) {
	s := &memoryStore{}

	course, err := SeedRandomCourse(s, 4, 10)
	require.NoError(t, err)
	assert.Len(t, s.chapters, 4)
	assert.Len(t, s.questions, 40)

	exam, err := SeedRandomExam(s, course.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, int32(12), exam.TotalQuestions)
	assert.Len(t, exam.ChapterRequirements, 4)
	assert.NoError(t, utils.ValidateExamRequirements(exam))

	_, err = SeedRandomExam(s, 999, 12)
	assert.Error(t, err)
}
