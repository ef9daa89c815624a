package domain

import "time"

type Course struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	Version     int32     `json:"-"`
}

type Chapter struct {
	ID            int64     `json:"id"`
	CourseID      int64     `json:"courseID"`
	ChapterNumber int32     `json:"chapterNumber"`
	Title         string    `json:"title"`
	Code          string    `json:"code"` // 由章节序号和标题的拼音首字母生成，如第 1 章 "极限" 对应 "C01-JX"
	CreatedAt     time.Time `json:"createdAt"`
	Version       int32     `json:"-"`
}
