package seed

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/utils"
)

// Store 由 repository.Repository 实现
type Store interface {
	CreateCourse(c *domain.Course) error
	GetCourseByName(name string) (*domain.Course, error)
	CreateChapter(ch *domain.Chapter) error
	GetChaptersByCourseID(courseID int64) ([]*domain.Chapter, error)
	CreateQuestion(q *domain.Question) error
	CreateExam(exam *domain.Exam) error
}

var requiredHeaders = []string{
	"chapter_number",
	"question_text",
	"choice_1",
	"choice_2",
	"choice_3",
	"correct_choice",
	"difficulty",
	"objective",
}

// Record 是题库文件中的一行
type Record struct {
	ChapterNumber int32
	ChapterTitle  string
	Question      domain.Question
}

// ParseQuestionBank 解析题库 CSV，chapter_title 列是可选的
func ParseQuestionBank(r io.Reader) ([]*Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	index := make(map[string]int)
	for i, header := range headers {
		index[strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))] = i
	}
	for _, header := range requiredHeaders {
		if _, ok := index[header]; !ok {
			return nil, fmt.Errorf("没有找到 %s 列", header)
		}
	}

	records := make([]*Record, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("第 %d 行读取失败: %w", line, err)
		}

		get := func(header string) string {
			i, ok := index[header]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		chapterNumber, err := strconv.ParseInt(get("chapter_number"), 10, 32)
		if err != nil || chapterNumber <= 0 {
			return nil, fmt.Errorf("第 %d 行的章节序号无效", line)
		}

		correctChoice, err := strconv.ParseInt(get("correct_choice"), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("第 %d 行的正确选项无效", line)
		}

		record := &Record{
			ChapterNumber: int32(chapterNumber),
			ChapterTitle:  get("chapter_title"),
			Question: domain.Question{
				QuestionText:  get("question_text"),
				Choices:       [3]string{get("choice_1"), get("choice_2"), get("choice_3")},
				CorrectChoice: int32(correctChoice),
				Difficulty:    domain.Difficulty(strings.ToLower(get("difficulty"))),
				Objective:     domain.Objective(strings.ToLower(get("objective"))),
			},
		}

		if err := utils.ValidateQuestion(&record.Question); err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}

		records = append(records, record)
	}

	return records, nil
}

// ImportQuestionBank 将题库文件导入到名为 courseName 的课程中，课程和章节不存在时会自动创建
func ImportQuestionBank(s Store, courseName string, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	records, err := ParseQuestionBank(file)
	if err != nil {
		return 0, err
	}

	course, err := s.GetCourseByName(courseName)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
		course = &domain.Course{Name: courseName, Description: "从题库文件导入"}
		if err := s.CreateCourse(course); err != nil {
			return 0, err
		}
	}

	existing, err := s.GetChaptersByCourseID(course.ID)
	if err != nil {
		return 0, err
	}
	chapters := make(map[int32]*domain.Chapter)
	for _, ch := range existing {
		chapters[ch.ChapterNumber] = ch
	}

	cnt := 0
	for _, record := range records {
		ch, ok := chapters[record.ChapterNumber]
		if !ok {
			title := record.ChapterTitle
			if title == "" {
				title = fmt.Sprintf("第%d章", record.ChapterNumber)
			}
			ch = &domain.Chapter{
				CourseID:      course.ID,
				ChapterNumber: record.ChapterNumber,
				Title:         title,
				Code:          utils.ChapterCode(record.ChapterNumber, title),
			}
			if err := s.CreateChapter(ch); err != nil {
				return cnt, err
			}
			chapters[ch.ChapterNumber] = ch
		}

		q := record.Question
		q.ChapterID = ch.ID
		if err := s.CreateQuestion(&q); err != nil {
			slog.Error("插入题目失败", "chapter", record.ChapterNumber, "error", err)
			continue
		}
		cnt++
	}

	slog.Info("导入题库完成", "course", course.Name, "questions", cnt)
	return cnt, nil
}

// SeedRandomCourse 插入一门随机课程，包含 chapters 个章节，每个章节 questionsPerChapter 道题
func SeedRandomCourse(s Store, chapters int, questionsPerChapter int) (*domain.Course, error) {
	course := utils.GenerateRandomCourse()
	if err := s.CreateCourse(course); err != nil {
		return nil, err
	}

	for i := 1; i <= chapters; i++ {
		ch := utils.GenerateRandomChapter(course.ID, int32(i))
		if err := s.CreateChapter(ch); err != nil {
			return nil, err
		}

		for j := 0; j < questionsPerChapter; j++ {
			if err := s.CreateQuestion(utils.GenerateRandomQuestion(ch.ID)); err != nil {
				return nil, err
			}
		}
	}

	return course, nil
}

// SeedRandomExam 在课程的所有章节上插入一场随机考试
func SeedRandomExam(s Store, courseID int64, totalQuestions int32) (*domain.Exam, error) {
	chapters, err := s.GetChaptersByCourseID(courseID)
	if err != nil {
		return nil, err
	}
	if len(chapters) == 0 {
		return nil, errors.New("该课程没有任何章节")
	}

	exam := utils.GenerateRandomExam(courseID, chapters, totalQuestions)
	if err := utils.ValidateExamRequirements(exam); err != nil {
		return nil, err
	}

	if err := s.CreateExam(exam); err != nil {
		return nil, err
	}

	return exam, nil
}
