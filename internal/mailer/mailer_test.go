package mailer

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
)

// 模拟 worker 投递、mail 消费者反序列化的过程
func decode(t *testing.T, m domain.MailMessage) *domain.MailMessage {
	t.Helper()
	body, err := json.Marshal(m)
	require.NoError(t, err)

	res := &domain.MailMessage{}
	require.NoError(t, json.Unmarshal(body, res))
	return res
}

func render(t *testing.T, m *domain.MailMessage) string {
	t.Helper()
	msg, err := Build("noreply@example.com", m)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	_, err = msg.WriteTo(buf)
	require.NoError(t, err)
	return buf.String()
}

func TestBuildExamGenerated(t *testing.T) {
	m := decode(t, domain.MailMessage{
		Type: domain.MailTypeExamGenerated,
		To:   "instructor@example.com",
		Data: domain.ExamGeneratedMailData{
			ExamID:        3,
			ExamName:      "Final",
			QuestionCount: 20,
			Fitness:       0.98765,
			JobID:         "job-1",
		},
	})

	content := render(t, m)
	assert.Contains(t, content, "instructor@example.com")
	assert.Contains(t, content, "Final")
	assert.Contains(t, content, "0.9877")
	assert.Contains(t, content, "job-1")
}

func TestBuildExamGenerationFailed(t *testing.T) {
	m := decode(t, domain.MailMessage{
		Type: domain.MailTypeExamGenerationFailed,
		To:   "instructor@example.com",
		Data: domain.ExamGenerationFailedMailData{ExamID: 3, JobID: "job-2", Reason: "timeout"},
	})

	content := render(t, m)
	assert.Contains(t, content, "job-2")
	assert.Contains(t, content, "timeout")
}

func TestBuildRejectsUnknownType(t *testing.T) {
	_, err := Build("noreply@example.com", &domain.MailMessage{Type: "reset_password", To: "a@example.com"})
	assert.Error(t, err)

	_, err = Build("noreply@example.com", &domain.MailMessage{Type: domain.MailTypeExamGenerated, To: "not an address"})
	assert.Error(t, err)
}
