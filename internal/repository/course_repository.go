package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuskit/coursedesk/internal/domain"
)

// CourseRepository encapsulates course persistence.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	Update(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id int64) (*domain.Course, error)
	List(ctx context.Context) ([]domain.Course, error)
	ListActive(ctx context.Context) ([]domain.Course, error)
}

type courseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository instantiates repository.
func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

const courseColumns = "id, code, title, author_id, tutor_id, active, created_at, updated_at"

func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	const query = `
        INSERT INTO courses (code, title, author_id, tutor_id, active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		course.Code,
		course.Title,
		course.AuthorID,
		course.TutorID,
		course.Active,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
}

func (r *courseRepository) Update(ctx context.Context, course *domain.Course) error {
	const query = `
        UPDATE courses SET code=$1, title=$2, author_id=$3, tutor_id=$4, active=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		course.Code,
		course.Title,
		course.AuthorID,
		course.TutorID,
		course.Active,
		course.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, id int64) (*domain.Course, error) {
	var course domain.Course
	if err := r.pool.QueryRow(ctx, "SELECT "+courseColumns+" FROM courses WHERE id=$1", id).Scan(
		&course.ID,
		&course.Code,
		&course.Title,
		&course.AuthorID,
		&course.TutorID,
		&course.Active,
		&course.CreatedAt,
		&course.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepository) List(ctx context.Context) ([]domain.Course, error) {
	return r.list(ctx, "SELECT "+courseColumns+" FROM courses ORDER BY code")
}

func (r *courseRepository) ListActive(ctx context.Context) ([]domain.Course, error) {
	return r.list(ctx, "SELECT "+courseColumns+" FROM courses WHERE active ORDER BY code")
}

func (r *courseRepository) list(ctx context.Context, query string) ([]domain.Course, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Course
	for rows.Next() {
		var course domain.Course
		if err := rows.Scan(
			&course.ID,
			&course.Code,
			&course.Title,
			&course.AuthorID,
			&course.TutorID,
			&course.Active,
			&course.CreatedAt,
			&course.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, course)
	}
	return result, rows.Err()
}
