package repository

import (
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
)

func (r *Repository) GetExamByID(id int64) (*domain.Exam, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT
			e.id,
			e.course_id,
			e.name,
			e.total_questions,
			e.req_simple_count,
			e.req_difficult_count,
			e.req_reminding_count,
			e.req_understanding_count,
			e.req_creativity_count,
			e.created_at,
			e.version,
			ecr.chapter_id,
			ecr.required_question_count
		FROM exams e
		LEFT JOIN exam_chapter_requirements ecr ON e.id = ecr.exam_id
		WHERE e.id = $1
		ORDER BY ecr.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exam *domain.Exam

	for rows.Next() {
		var row struct {
			ID                    int64
			CourseID              int64
			Name                  string
			TotalQuestions        int32
			ReqSimpleCount        int32
			ReqDifficultCount     int32
			ReqRemindingCount     int32
			ReqUnderstandingCount int32
			ReqCreativityCount    int32
			CreatedAt             time.Time
			Version               int32

			ChapterID             sql.NullInt64
			RequiredQuestionCount sql.NullInt32
		}

		dst := []any{
			&row.ID,
			&row.CourseID,
			&row.Name,
			&row.TotalQuestions,
			&row.ReqSimpleCount,
			&row.ReqDifficultCount,
			&row.ReqRemindingCount,
			&row.ReqUnderstandingCount,
			&row.ReqCreativityCount,
			&row.CreatedAt,
			&row.Version,
			&row.ChapterID,
			&row.RequiredQuestionCount,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if exam == nil {
			exam = &domain.Exam{
				ID:                    row.ID,
				CourseID:              row.CourseID,
				Name:                  row.Name,
				TotalQuestions:        row.TotalQuestions,
				ReqSimpleCount:        row.ReqSimpleCount,
				ReqDifficultCount:     row.ReqDifficultCount,
				ReqRemindingCount:     row.ReqRemindingCount,
				ReqUnderstandingCount: row.ReqUnderstandingCount,
				ReqCreativityCount:    row.ReqCreativityCount,
				CreatedAt:             row.CreatedAt,
				Version:               row.Version,
				ChapterRequirements:   make([]domain.ExamChapterRequirement, 0),
			}
		}

		// 考试没有任何章节要求时 LEFT JOIN 得到的是空值
		if !row.ChapterID.Valid {
			continue
		}

		exam.ChapterRequirements = append(exam.ChapterRequirements, domain.ExamChapterRequirement{
			ChapterID:             row.ChapterID.Int64,
			RequiredQuestionCount: row.RequiredQuestionCount.Int32,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if exam == nil {
		return nil, sql.ErrNoRows
	}

	return exam, nil
}

func (r *Repository) CreateExam(exam *domain.Exam) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO exams (
			course_id,
			name,
			total_questions,
			req_simple_count,
			req_difficult_count,
			req_reminding_count,
			req_understanding_count,
			req_creativity_count
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`
	params := []any{
		exam.CourseID,
		exam.Name,
		exam.TotalQuestions,
		exam.ReqSimpleCount,
		exam.ReqDifficultCount,
		exam.ReqRemindingCount,
		exam.ReqUnderstandingCount,
		exam.ReqCreativityCount,
	}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&exam.ID, &exam.CreatedAt, &exam.Version); err != nil {
		return err
	}

	for _, cr := range exam.ChapterRequirements {
		query = `
			INSERT INTO exam_chapter_requirements (exam_id, chapter_id, required_question_count)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, exam.ID, cr.ChapterID, cr.RequiredQuestionCount); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// ReplaceExamQuestions 用新的选题结果替换考试原有的题目，题目顺序即为 questionIDs 中的顺序
func (r *Repository) ReplaceExamQuestions(examID int64, questionIDs []int64) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 锁住考试记录，同时确认考试存在
	var id int64
	query := `SELECT id FROM exams WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, query, examID).Scan(&id); err != nil {
		return err
	}

	query = `DELETE FROM exam_questions WHERE exam_id = $1`
	if _, err := tx.ExecContext(ctx, query, examID); err != nil {
		return err
	}

	for i, questionID := range questionIDs {
		query = `
			INSERT INTO exam_questions (exam_id, question_id, question_order)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, examID, questionID, i+1); err != nil {
			return err
		}
	}

	query = `UPDATE exams SET version = version + 1 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, examID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetExamQuestionIDs(examID int64) ([]int64, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT question_id
		FROM exam_questions
		WHERE exam_id = $1
		ORDER BY question_order
	`

	rows, err := r.dbpool.QueryContext(ctx, query, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
