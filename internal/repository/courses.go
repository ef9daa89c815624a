package repository

import (
	"github.com/sysu-ecnc-dev/exam-generator/backend/internal/domain"
)

func (r *Repository) CreateCourse(c *domain.Course) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO courses (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`

	return r.dbpool.QueryRowContext(ctx, query, c.Name, c.Description).Scan(&c.ID, &c.CreatedAt, &c.Version)
}

func (r *Repository) GetCourseByName(name string) (*domain.Course, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, name, description, created_at, version
		FROM courses
		WHERE name = $1
	`

	c := &domain.Course{}
	if err := r.dbpool.QueryRowContext(ctx, query, name).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.Version); err != nil {
		return nil, err
	}

	return c, nil
}

func (r *Repository) CreateChapter(ch *domain.Chapter) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO chapters (course_id, chapter_number, title, code)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`
	params := []any{ch.CourseID, ch.ChapterNumber, ch.Title, ch.Code}

	return r.dbpool.QueryRowContext(ctx, query, params...).Scan(&ch.ID, &ch.CreatedAt, &ch.Version)
}

func (r *Repository) GetChaptersByCourseID(courseID int64) ([]*domain.Chapter, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, course_id, chapter_number, title, code, created_at, version
		FROM chapters
		WHERE course_id = $1
		ORDER BY chapter_number
	`

	rows, err := r.dbpool.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chapters := make([]*domain.Chapter, 0)
	for rows.Next() {
		ch := &domain.Chapter{}
		if err := rows.Scan(&ch.ID, &ch.CourseID, &ch.ChapterNumber, &ch.Title, &ch.Code, &ch.CreatedAt, &ch.Version); err != nil {
			return nil, err
		}
		chapters = append(chapters, ch)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return chapters, nil
}
