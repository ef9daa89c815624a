package domain

import "time"

type ExamChapterRequirement struct {
	ChapterID             int64 `json:"chapterID"`
	RequiredQuestionCount int32 `json:"requiredQuestionCount"`
}

type Exam struct {
	ID                    int64                    `json:"id"`
	CourseID              int64                    `json:"courseID"`
	Name                  string                   `json:"name"`
	TotalQuestions        int32                    `json:"totalQuestions"`
	ReqSimpleCount        int32                    `json:"reqSimpleCount"`
	ReqDifficultCount     int32                    `json:"reqDifficultCount"`
	ReqRemindingCount     int32                    `json:"reqRemindingCount"`
	ReqUnderstandingCount int32                    `json:"reqUnderstandingCount"`
	ReqCreativityCount    int32                    `json:"reqCreativityCount"`
	ChapterRequirements   []ExamChapterRequirement `json:"chapterRequirements"`
	CreatedAt             time.Time                `json:"createdAt"`
	Version               int32                    `json:"-"`
}

// ChapterIDs 返回考试要求中涉及的所有章节 ID（保持要求中的顺序，去重）
func (e *Exam) ChapterIDs() []int64 {
	ids := make([]int64, 0, len(e.ChapterRequirements))
	seen := make(map[int64]bool)
	for _, req := range e.ChapterRequirements {
		if seen[req.ChapterID] {
			continue
		}
		seen[req.ChapterID] = true
		ids = append(ids, req.ChapterID)
	}
	return ids
}
