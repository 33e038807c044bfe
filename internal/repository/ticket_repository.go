package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuskit/coursedesk/internal/domain"
	apperrors "github.com/campuskit/coursedesk/pkg/util"
)

// TicketFilter captures search parameters. The scope fields are set by the
// service layer from the caller's role and ownership before any caller
// criteria are applied; they restrict, never widen, the result set.
type TicketFilter struct {
	// ScopeCreatorID limits results to tickets created by this user.
	ScopeCreatorID *int64
	// ScopeStaffID limits results to tickets created by this user plus
	// tickets of courses this user authors or tutors.
	ScopeStaffID *int64

	Status   *domain.Status
	Category *domain.Category
	Priority *domain.Priority
	CourseID *int64
	Search   *string
	Limit    int
	Offset   int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	// Create inserts the ticket and its medium atomically. If the medium
	// cannot be persisted the ticket row is rolled back.
	Create(ctx context.Context, ticket *domain.Ticket, medium domain.Medium) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	// UpdateStatus applies a compare-and-set transition. A concurrent change
	// that already moved the ticket away from `from` yields a conflict.
	UpdateStatus(ctx context.Context, ticketID int64, from, to domain.Status) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool  *pgxpool.Pool
	media MediumStore
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool, media MediumStore) TicketRepository {
	return &ticketRepository{pool: pool, media: media}
}

const ticketColumns = "id, type, title, description, category, priority, status, course_id, creator_id, created_at, updated_at"

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket, medium domain.Medium) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO tickets (type, title, description, category, priority, status, course_id, creator_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, query,
		ticket.Type,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.CourseID,
		ticket.CreatorID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}

	if err := r.media.SaveTx(ctx, tx, ticket.ID, medium); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, category=$3, priority=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Priority,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, ticketID int64, from, to domain.Status) error {
	const query = `UPDATE tickets SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`
	cmd, err := r.pool.Exec(ctx, query, to, ticketID, from)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewConflict("ticket status changed concurrently", map[string]any{
			"ticket_id": ticketID,
			"expected":  from.String(),
		})
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, "SELECT "+ticketColumns+" FROM tickets WHERE id=$1", id).Scan(
		&ticket.ID,
		&ticket.Type,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Status,
		&ticket.CourseID,
		&ticket.CreatorID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := "SELECT " + ticketColumns + " FROM tickets"
	clauses := []string{"1=1"}
	args := []any{}

	// Visibility scope comes first and is structural; caller criteria can
	// only narrow it further.
	if filter.ScopeCreatorID != nil {
		args = append(args, *filter.ScopeCreatorID)
		clauses = append(clauses, fmt.Sprintf("creator_id=$%d", len(args)))
	}
	if filter.ScopeStaffID != nil {
		args = append(args, *filter.ScopeStaffID)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(creator_id=$%d OR course_id IN (SELECT id FROM courses WHERE author_id=$%d OR tutor_id=$%d))", n, n, n))
	}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.CourseID != nil {
		args = append(args, *filter.CourseID)
		clauses = append(clauses, fmt.Sprintf("course_id=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		args = append(args, search)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(title) LIKE $%d OR LOWER(description) LIKE $%d OR EXISTS (SELECT 1 FROM comments WHERE comments.ticket_id=tickets.id AND LOWER(comments.message) LIKE $%d))", n, n, n))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d",
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Type,
			&ticket.Title,
			&ticket.Description,
			&ticket.Category,
			&ticket.Priority,
			&ticket.Status,
			&ticket.CourseID,
			&ticket.CreatorID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
