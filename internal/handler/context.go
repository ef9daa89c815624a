package handler

type ContextKey string

var (
	ExamCtx ContextKey = "exam"
)
