package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

const (
	MailTypeExamGenerated        = "exam_generated"
	MailTypeExamGenerationFailed = "exam_generation_failed"
)

type ExamGeneratedMailData struct {
	ExamID        int64   `json:"examID"`
	ExamName      string  `json:"examName"`
	QuestionCount int     `json:"questionCount"`
	Fitness       float64 `json:"fitness"`
	JobID         string  `json:"jobID"`
}

type ExamGenerationFailedMailData struct {
	ExamID int64  `json:"examID"`
	JobID  string `json:"jobID"`
	Reason string `json:"reason"`
}
