package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/config"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
)

var (
	ErrLocked          = errors.New("该考试正在组卷中，请稍后再试")
	ErrPreviewNotFound = errors.New("预览结果不存在或已过期")
	ErrJobNotFound     = errors.New("组卷任务不存在或已过期")
)

func LockKey(examID int64) string {
	return fmt.Sprintf("exam_%d_generation_lock", examID)
}

func PreviewKey(examID int64) string {
	return fmt.Sprintf("exam_%d_generation_preview", examID)
}

func JobKey(jobID string) string {
	return fmt.Sprintf("generation_job_%s", jobID)
}

// 只有持有锁的一方才能释放锁
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Preview 是保存在 redis 中等待确认的选题结果
type Preview struct {
	ExamID      int64     `json:"examID"`
	QuestionIDs []int64   `json:"questionIDs"`
	Fitness     float64   `json:"fitness"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Tracker 使用 redis 保存组卷锁、预览结果和异步任务状态
type Tracker struct {
	config *config.Config
	rdb    redis.Cmdable
}

func NewTracker(cfg *config.Config, rdb redis.Cmdable) *Tracker {
	return &Tracker{
		config: cfg,
		rdb:    rdb,
	}
}

func (t *Tracker) operationContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(t.config.Redis.OperationExpiration)*time.Second)
}

// Lock 尝试获取考试的组卷锁，owner 用于之后释放锁
func (t *Tracker) Lock(examID int64, owner string) error {
	ctx, cancel := t.operationContext()
	defer cancel()

	ok, err := t.rdb.SetNX(ctx, LockKey(examID), owner, time.Duration(t.config.Generation.LockExpiration)*time.Second).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrLocked
	}

	return nil
}

func (t *Tracker) Unlock(examID int64, owner string) error {
	ctx, cancel := t.operationContext()
	defer cancel()

	return unlockScript.Run(ctx, t.rdb, []string{LockKey(examID)}, owner).Err()
}

func (t *Tracker) SavePreview(p *Preview) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	ctx, cancel := t.operationContext()
	defer cancel()

	return t.rdb.Set(ctx, PreviewKey(p.ExamID), data, time.Duration(t.config.Generation.PreviewExpiration)*time.Second).Err()
}

func (t *Tracker) GetPreview(examID int64) (*Preview, error) {
	ctx, cancel := t.operationContext()
	defer cancel()

	data, err := t.rdb.Get(ctx, PreviewKey(examID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPreviewNotFound
		}
		return nil, err
	}

	p := &Preview{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (t *Tracker) DeletePreview(examID int64) error {
	ctx, cancel := t.operationContext()
	defer cancel()

	return t.rdb.Del(ctx, PreviewKey(examID)).Err()
}

func (t *Tracker) SetJobState(state *domain.GenerationJobState) error {
	state.UpdatedAt = time.Now()

	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	ctx, cancel := t.operationContext()
	defer cancel()

	return t.rdb.Set(ctx, JobKey(state.ID), data, time.Duration(t.config.Generation.JobExpiration)*time.Second).Err()
}

func (t *Tracker) GetJobState(jobID string) (*domain.GenerationJobState, error) {
	ctx, cancel := t.operationContext()
	defer cancel()

	data, err := t.rdb.Get(ctx, JobKey(jobID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	state := &domain.GenerationJobState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}

	return state, nil
}
