package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
)

var courseSubjects = []string{
	"高等数学", "线性代数", "概率论", "数据结构", "操作系统",
	"计算机网络", "数据库系统", "编译原理", "大学物理", "离散数学",
}

var chapterTopics = []string{
	"基本概念", "定理证明", "典型例题", "综合应用", "习题讲解",
	"历史发展", "模型分析", "实验设计", "算法设计", "复习总结",
}

var digits = "0123456789"
var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

func GenerateRandomID(letterLength int, digitLength int) string {
	random_id := make([]rune, letterLength+digitLength)
	for i := range random_id {
		if i < letterLength {
			random_id[i] = letters[rand.Intn(len(letters))]
		} else {
			random_id[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(random_id)
}

// ChapterCode 根据章节序号和标题生成章节代码，例如 "第一章 基本概念" -> "C01-JBGN"
func ChapterCode(chapterNumber int32, title string) string {
	args := pinyin.NewArgs()
	args.Style = pinyin.FirstLetter
	initials := pinyin.LazyPinyin(title, args)
	code := strings.ToUpper(strings.Join(initials, ""))
	if code == "" {
		return fmt.Sprintf("C%02d", chapterNumber)
	}
	return fmt.Sprintf("C%02d-%s", chapterNumber, code)
}

func GenerateRandomCourse() *domain.Course {
	subject := courseSubjects[rand.Intn(len(courseSubjects))]
	return &domain.Course{
		Name:        subject + GenerateRandomID(2, 3),
		Description: subject + "课程题库",
	}
}

func GenerateRandomChapter(courseID int64, chapterNumber int32) *domain.Chapter {
	title := chapterTopics[rand.Intn(len(chapterTopics))]
	return &domain.Chapter{
		CourseID:      courseID,
		ChapterNumber: chapterNumber,
		Title:         title,
		Code:          ChapterCode(chapterNumber, title),
	}
}

func GenerateRandomQuestion(chapterID int64) *domain.Question {
	q := &domain.Question{
		ChapterID:     chapterID,
		QuestionText:  "题目" + GenerateRandomID(6, 4),
		CorrectChoice: int32(rand.Intn(3) + 1),
		Difficulty:    difficulties[rand.Intn(len(difficulties))],
		Objective:     objectives[rand.Intn(len(objectives))],
	}

	for i := range q.Choices {
		q.Choices[i] = fmt.Sprintf("选项%c-%s", 'A'+i, GenerateRandomID(4, 2))
	}

	return q
}

// split 将 total 随机拆分为 parts 份，每份都不小于 0
func split(total int32, parts int) []int32 {
	res := make([]int32, parts)
	for i := int32(0); i < total; i++ {
		res[rand.Intn(parts)]++
	}
	return res
}

// GenerateRandomExam 在给定章节上随机生成一场考试，生成的各项要求保证彼此一致
func GenerateRandomExam(courseID int64, chapters []*domain.Chapter, totalQuestions int32) *domain.Exam {
	exam := &domain.Exam{
		CourseID:       courseID,
		Name:           "考试" + GenerateRandomID(3, 3),
		TotalQuestions: totalQuestions,
	}

	// 每个章节至少分配一道题
	n := min(len(chapters), int(totalQuestions))
	counts := split(totalQuestions-int32(n), n)
	for i := 0; i < n; i++ {
		exam.ChapterRequirements = append(exam.ChapterRequirements, domain.ExamChapterRequirement{
			ChapterID:             chapters[i].ID,
			RequiredQuestionCount: counts[i] + 1,
		})
	}

	d := split(totalQuestions, 2)
	exam.ReqSimpleCount, exam.ReqDifficultCount = d[0], d[1]

	o := split(totalQuestions, 3)
	exam.ReqRemindingCount, exam.ReqUnderstandingCount, exam.ReqCreativityCount = o[0], o[1], o[2]

	return exam
}
