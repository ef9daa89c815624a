package repository

import (
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
)

// GetQuestionsByChapterIDs 获取给定章节中的所有题目，按题目 ID 排序
func (r *Repository) GetQuestionsByChapterIDs(chapterIDs []int64) ([]*domain.Question, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT
			id,
			chapter_id,
			question_text,
			choice_1,
			choice_2,
			choice_3,
			correct_choice,
			difficulty,
			objective,
			created_at,
			version
		FROM questions
		WHERE chapter_id = ANY($1)
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, chapterIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]*domain.Question, 0)
	for rows.Next() {
		q := &domain.Question{}
		dst := []any{
			&q.ID,
			&q.ChapterID,
			&q.QuestionText,
			&q.Choices[0],
			&q.Choices[1],
			&q.Choices[2],
			&q.CorrectChoice,
			&q.Difficulty,
			&q.Objective,
			&q.CreatedAt,
			&q.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *Repository) CreateQuestion(q *domain.Question) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO questions (chapter_id, question_text, choice_1, choice_2, choice_3, correct_choice, difficulty, objective)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, version
	`
	params := []any{
		q.ChapterID,
		q.QuestionText,
		q.Choices[0],
		q.Choices[1],
		q.Choices[2],
		q.CorrectChoice,
		q.Difficulty,
		q.Objective,
	}

	return r.dbpool.QueryRowContext(ctx, query, params...).Scan(&q.ID, &q.CreatedAt, &q.Version)
}
