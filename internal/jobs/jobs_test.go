package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/config"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/generation"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/metrics"
)

type published struct {
	queue string
	msg   amqp.Publishing
}

type fakePublisher struct {
	messages []published
}

func (p *fakePublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	p.messages = append(p.messages, published{queue: key, msg: msg})
	return nil
}

type fakeStates struct {
	history  []domain.GenerationJobState
	unlocked []string
}

func (s *fakeStates) SetJobState(state *domain.GenerationJobState) error {
	s.history = append(s.history, *state)
	return nil
}

func (s *fakeStates) Unlock(examID int64, owner string) error {
	s.unlocked = append(s.unlocked, owner)
	return nil
}

type fakeGenerator struct {
	outcome *generation.Outcome
	err     error
	saved   bool
}

func (g *fakeGenerator) Generate(ctx context.Context, examID int64, opts domain.GenerationOptions, save bool) (*generation.Outcome, error) {
	g.saved = save
	if g.err != nil {
		return nil, g.err
	}
	return g.outcome, nil
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.RabbitMQ.PublishTimeout = 1
	cfg.RabbitMQ.MailQueue = "email_queue"
	return cfg
}

func encodeJob(t *testing.T, job *domain.GenerationJob) []byte {
	t.Helper()
	body, err := json.Marshal(job)
	require.NoError(t, err)
	return body
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "exam_7_generation_lock", LockKey(7))
	assert.Equal(t, "exam_7_generation_preview", PreviewKey(7))
	assert.Equal(t, "generation_job_abc", JobKey("abc"))
}

func TestNewJob(t *testing.T) {
	size := 30
	job := NewJob(3, domain.GenerationOptions{PopulationSize: &size}, "instructor@example.com")

	_, err := uuid.Parse(job.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), job.ExamID)
	assert.Equal(t, 30, *job.Options.PopulationSize)
	assert.NotEqual(t, job.ID, NewJob(3, domain.GenerationOptions{}, "").ID)
}

func TestPublishJSON(t *testing.T) {
	p := &fakePublisher{}
	require.NoError(t, PublishJSON(p, "exam_generation_queue", time.Second, map[string]int{"examID": 1}))

	require.Len(t, p.messages, 1)
	assert.Equal(t, "exam_generation_queue", p.messages[0].queue)
	assert.Equal(t, "application/json", p.messages[0].msg.ContentType)
	assert.JSONEq(t, `{"examID":1}`, string(p.messages[0].msg.Body))
}

func TestWorkerProcessSuccess(t *testing.T) {
	gen := &fakeGenerator{outcome: &generation.Outcome{
		ExamID:      5,
		ExamName:    "期中考试",
		QuestionIDs: []int64{3, 1, 2},
		Fitness:     0.97,
	}}
	states := &fakeStates{}
	pub := &fakePublisher{}
	m := metrics.New(prometheus.NewRegistry())
	w := NewWorker(newTestConfig(), gen, states, pub, m)

	job := NewJob(5, domain.GenerationOptions{}, "instructor@example.com")
	require.NoError(t, w.Process(context.Background(), encodeJob(t, job)))

	assert.True(t, gen.saved)
	require.Len(t, states.history, 2)
	assert.Equal(t, domain.GenerationJobRunning, states.history[0].Status)
	assert.Equal(t, domain.GenerationJobSucceeded, states.history[1].Status)
	assert.Equal(t, []int64{3, 1, 2}, states.history[1].QuestionIDs)
	assert.InDelta(t, 0.97, *states.history[1].Fitness, 1e-9)
	assert.Equal(t, []string{job.ID}, states.unlocked)

	require.Len(t, pub.messages, 1)
	assert.Equal(t, "email_queue", pub.messages[0].queue)

	var msg struct {
		Type string                       `json:"type"`
		To   string                       `json:"to"`
		Data domain.ExamGeneratedMailData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(pub.messages[0].msg.Body, &msg))
	assert.Equal(t, domain.MailTypeExamGenerated, msg.Type)
	assert.Equal(t, "instructor@example.com", msg.To)
	assert.Equal(t, "期中考试", msg.Data.ExamName)
	assert.Equal(t, 3, msg.Data.QuestionCount)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsTotal.WithLabelValues("succeeded")))
}

func TestWorkerProcessFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("题库中的题目数量不足")}
	states := &fakeStates{}
	pub := &fakePublisher{}
	w := NewWorker(newTestConfig(), gen, states, pub, nil)

	job := NewJob(5, domain.GenerationOptions{}, "instructor@example.com")
	require.NoError(t, w.Process(context.Background(), encodeJob(t, job)))

	last := states.history[len(states.history)-1]
	assert.Equal(t, domain.GenerationJobFailed, last.Status)
	assert.Equal(t, "题库中的题目数量不足", last.Error)
	assert.Nil(t, last.Fitness)
	assert.Equal(t, []string{job.ID}, states.unlocked)

	require.Len(t, pub.messages, 1)
	var msg domain.MailMessage
	require.NoError(t, json.Unmarshal(pub.messages[0].msg.Body, &msg))
	assert.Equal(t, domain.MailTypeExamGenerationFailed, msg.Type)
}

func TestWorkerProcessWithoutNotification(t *testing.T) {
	gen := &fakeGenerator{outcome: &generation.Outcome{ExamID: 5}}
	pub := &fakePublisher{}
	w := NewWorker(newTestConfig(), gen, &fakeStates{}, pub, nil)

	require.NoError(t, w.Process(context.Background(), encodeJob(t, NewJob(5, domain.GenerationOptions{}, ""))))
	assert.Empty(t, pub.messages)
}

func TestWorkerProcessMalformedMessage(t *testing.T) {
	states := &fakeStates{}
	w := NewWorker(newTestConfig(), &fakeGenerator{}, states, &fakePublisher{}, nil)

	assert.Error(t, w.Process(context.Background(), []byte("not json")))
	assert.Empty(t, states.history)
	assert.Empty(t, states.unlocked)
}
