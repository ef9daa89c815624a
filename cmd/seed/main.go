package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/config"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/repository"
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var chapters int
	var questions int
	var courseName string
	var file string
	var courseID int64
	var total int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机课程和题目, 2: 导入题库文件, 3: 插入随机考试)")
	flag.IntVar(&chapters, "chapters", 5, "随机课程的章节数量")
	flag.IntVar(&questions, "questions", 30, "随机课程每个章节的题目数量")
	flag.StringVar(&courseName, "course", "高等数学", "导入题库时的课程名称")
	flag.StringVar(&file, "file", "", "题库文件路径，默认使用配置中的路径")
	flag.Int64Var(&courseID, "course-id", 0, "随机考试所属的课程 ID")
	flag.IntVar(&total, "total", 20, "随机考试的题目总数")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		logger.Error("未指定操作")
	case 1:
		if chapters <= 0 || questions <= 0 {
			logger.Error("请输入合法的章节数量和题目数量")
			return
		}

		course, err := seed.SeedRandomCourse(repo, chapters, questions)
		if err != nil {
			logger.Error("无法插入随机课程", slog.String("error", err.Error()))
			return
		}

		logger.Info("插入随机课程成功", slog.Int64("course_id", course.ID), slog.Int("questions", chapters*questions))
	case 2:
		if file == "" {
			file = cfg.Seed.QuestionBankPath
		}

		cnt, err := seed.ImportQuestionBank(repo, courseName, file)
		if err != nil {
			logger.Error("无法导入题库", slog.String("file", file), slog.String("error", err.Error()))
			return
		}

		logger.Info("导入题库成功", slog.Int("count", cnt))
	case 3:
		if courseID <= 0 || total <= 0 {
			logger.Error("请输入合法的课程 ID 和题目总数")
			return
		}

		exam, err := seed.SeedRandomExam(repo, courseID, int32(total))
		if err != nil {
			logger.Error("无法插入随机考试", slog.String("error", err.Error()))
			return
		}

		logger.Info("插入随机考试成功", slog.Int64("exam_id", exam.ID), slog.Int("chapters", len(exam.ChapterRequirements)))
	default:
		logger.Error("指定的操作非法")
	}
}
