package domain

import "time"

type Difficulty string

const (
	DifficultySimple    Difficulty = "simple"
	DifficultyDifficult Difficulty = "difficult"
)

type Objective string

const (
	ObjectiveReminding     Objective = "reminding"
	ObjectiveUnderstanding Objective = "understanding"
	ObjectiveCreativity    Objective = "creativity"
)

type Question struct {
	ID            int64      `json:"id"`
	ChapterID     int64      `json:"chapterID"`
	QuestionText  string     `json:"questionText"`
	Choices       [3]string  `json:"choices"`
	CorrectChoice int32      `json:"correctChoice"` // 1~3
	Difficulty    Difficulty `json:"difficulty"`
	Objective     Objective  `json:"objective"`
	CreatedAt     time.Time  `json:"createdAt"`
	Version       int32      `json:"-"`
}
