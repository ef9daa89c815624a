package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
)

// Publisher 由 *amqp.Channel 实现
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// PublishJSON 将 v 序列化后投递到默认交换机上名为 queue 的队列中
func PublishJSON(p Publisher, queue string, timeout time.Duration, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return p.PublishWithContext(
		ctx,
		"",
		queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func NewJob(examID int64, opts domain.GenerationOptions, notifyEmail string) *domain.GenerationJob {
	return &domain.GenerationJob{
		ID:          uuid.NewString(),
		ExamID:      examID,
		Options:     opts,
		NotifyEmail: notifyEmail,
		CreatedAt:   time.Now(),
	}
}
