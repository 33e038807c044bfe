package repository

import (
	"context"
	"errors"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuskit/coursedesk/internal/domain"
	apperrors "github.com/campuskit/coursedesk/pkg/util"
)

// MediumStore persists and reconstructs the medium variants. It is the only
// component aware of the tag-to-table mapping: each variant has its own
// backing table keyed by ticket id, and the variant tag is resolved at load
// time from the ticket type. A handle whose backing row is missing is data
// corruption, not a normal miss.
type MediumStore interface {
	SaveTx(ctx context.Context, tx pgx.Tx, ticketID int64, medium domain.Medium) error
	Load(ctx context.Context, ticketID int64, kind domain.MediumKind) (domain.Medium, error)
}

type mediumStore struct {
	pool *pgxpool.Pool
}

// NewMediumStore instantiates the Postgres-backed variant store.
func NewMediumStore(pool *pgxpool.Pool) MediumStore {
	return &mediumStore{pool: pool}
}

func (s *mediumStore) SaveTx(ctx context.Context, tx pgx.Tx, ticketID int64, medium domain.Medium) error {
	switch m := medium.(type) {
	case domain.TextMedium:
		// the counters go into 32-bit columns; reject what would not
		// survive the round trip instead of wrapping
		if m.Page > math.MaxInt32 || m.Line > math.MaxInt32 {
			return apperrors.NewValidationError("page and line out of range", nil)
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO medium_texts (ticket_id, page, line) VALUES ($1, $2, $3)`,
			ticketID, int32(m.Page), int32(m.Line))
		return err
	case domain.RecordingMedium:
		_, err := tx.Exec(ctx,
			`INSERT INTO medium_recordings (ticket_id, time) VALUES ($1, $2)`,
			ticketID, m.Time.String())
		return err
	case domain.InteractiveMedium:
		_, err := tx.Exec(ctx,
			`INSERT INTO medium_interactives (ticket_id, url) VALUES ($1, $2)`,
			ticketID, m.URL)
		return err
	case domain.QuestionnaireMedium:
		if m.Question > math.MaxInt32 {
			return apperrors.NewValidationError("question out of range", nil)
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO medium_questionnaires (ticket_id, question, answer) VALUES ($1, $2, $3)`,
			ticketID, int32(m.Question), m.Answer)
		return err
	default:
		return apperrors.NewValidationError("unsupported medium variant", nil)
	}
}

func (s *mediumStore) Load(ctx context.Context, ticketID int64, kind domain.MediumKind) (domain.Medium, error) {
	switch kind {
	case domain.MediumText:
		var page, line int32
		err := s.pool.QueryRow(ctx,
			`SELECT page, line FROM medium_texts WHERE ticket_id=$1`, ticketID).Scan(&page, &line)
		if err != nil {
			return nil, s.loadErr(err)
		}
		return domain.TextMedium{Page: uint(page), Line: uint(line)}, nil
	case domain.MediumRecording:
		var raw string
		err := s.pool.QueryRow(ctx,
			`SELECT time FROM medium_recordings WHERE ticket_id=$1`, ticketID).Scan(&raw)
		if err != nil {
			return nil, s.loadErr(err)
		}
		tc, err := domain.ParseTimecode(raw)
		if err != nil {
			return nil, apperrors.NewCorruptionError("stored recording timecode is malformed", err)
		}
		return domain.RecordingMedium{Time: tc}, nil
	case domain.MediumInteractive:
		var url string
		err := s.pool.QueryRow(ctx,
			`SELECT url FROM medium_interactives WHERE ticket_id=$1`, ticketID).Scan(&url)
		if err != nil {
			return nil, s.loadErr(err)
		}
		return domain.InteractiveMedium{URL: url}, nil
	case domain.MediumQuestionnaire:
		var question int32
		var answer string
		err := s.pool.QueryRow(ctx,
			`SELECT question, answer FROM medium_questionnaires WHERE ticket_id=$1`, ticketID).Scan(&question, &answer)
		if err != nil {
			return nil, s.loadErr(err)
		}
		return domain.QuestionnaireMedium{Question: uint(question), Answer: answer}, nil
	default:
		return nil, apperrors.NewValidationError("unsupported medium kind", nil)
	}
}

func (s *mediumStore) loadErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewCorruptionError("medium record missing for ticket", err)
	}
	return err
}
