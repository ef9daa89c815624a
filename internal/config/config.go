package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"120"` // 同步组卷可能耗时较长
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	Email struct {
		SMTP struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN             string `env:"DSN,required"`
		PublishTimeout  int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
		GenerationQueue string `env:"GENERATION_QUEUE" envDefault:"exam_generation_queue"`
		MailQueue       string `env:"MAIL_QUEUE" envDefault:"email_queue"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD,required"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"` // 单次操作的超时时间，单位为秒
	} `envPrefix:"REDIS_"`
	GeneticAlgorithm struct {
		PopulationSize int     `env:"POPULATION_SIZE" envDefault:"100"`
		Generations    int     `env:"GENERATIONS" envDefault:"50"`
		MutationRate   float64 `env:"MUTATION_RATE" envDefault:"0.1"`
		ElitismCount   int     `env:"ELITISM_COUNT" envDefault:"2"`
		TournamentSize int     `env:"TOURNAMENT_SIZE" envDefault:"5"`
		Restarts       int     `env:"RESTARTS" envDefault:"1"` // 并行独立运行的次数，取其中最优解
	} `envPrefix:"GA_"`
	Generation struct {
		Timeout           int `env:"TIMEOUT" envDefault:"60"`              // 单次组卷的时间上限，0 表示不限制
		LockExpiration    int `env:"LOCK_EXPIRATION" envDefault:"300"`     // 同一场考试组卷锁的过期时间
		PreviewExpiration int `env:"PREVIEW_EXPIRATION" envDefault:"1800"` // 预览结果的保留时间
		JobExpiration     int `env:"JOB_EXPIRATION" envDefault:"86400"`    // 异步任务状态的保留时间
	} `envPrefix:"GENERATION_"`
	Worker struct {
		Concurrency int `env:"CONCURRENCY" envDefault:"2"`
		Prefetch    int `env:"PREFETCH" envDefault:"2"`
	} `envPrefix:"WORKER_"`
	Seed struct {
		QuestionBankPath string `env:"QUESTION_BANK_PATH" envDefault:"./internal/seed/data/questions.csv"`
	} `envPrefix:"SEED_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
