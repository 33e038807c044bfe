package service

import (
	"context"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/campuskit/coursedesk/internal/domain"
	"github.com/campuskit/coursedesk/internal/repository"
	apperrors "github.com/campuskit/coursedesk/pkg/util"
)

// In-memory repository fakes mirroring the Postgres implementations closely
// enough to exercise the service layer: ErrNoRows misses, compare-and-set
// status updates, scope-aware filtering and the medium store contract.

type fakeUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.nextID++
	user.ID = r.nextID
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByActivationCode(_ context.Context, code string) (*domain.User, error) {
	if code == "" {
		return nil, pgx.ErrNoRows
	}
	for _, user := range r.users {
		if user.ActivationCode == code {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.users[id])
	}
	return out, nil
}

type fakeCourseRepo struct {
	courses map[int64]*domain.Course
	nextID  int64
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: map[int64]*domain.Course{}}
}

func (r *fakeCourseRepo) Create(_ context.Context, course *domain.Course) error {
	r.nextID++
	course.ID = r.nextID
	copied := *course
	r.courses[course.ID] = &copied
	return nil
}

func (r *fakeCourseRepo) Update(_ context.Context, course *domain.Course) error {
	if _, ok := r.courses[course.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *course
	r.courses[course.ID] = &copied
	return nil
}

func (r *fakeCourseRepo) GetByID(_ context.Context, id int64) (*domain.Course, error) {
	course, ok := r.courses[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *course
	return &copied, nil
}

func (r *fakeCourseRepo) List(_ context.Context) ([]domain.Course, error) {
	return r.list(func(*domain.Course) bool { return true }), nil
}

func (r *fakeCourseRepo) ListActive(_ context.Context) ([]domain.Course, error) {
	return r.list(func(c *domain.Course) bool { return c.Active }), nil
}

func (r *fakeCourseRepo) list(keep func(*domain.Course) bool) []domain.Course {
	ids := make([]int64, 0, len(r.courses))
	for id := range r.courses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := []domain.Course{}
	for _, id := range ids {
		if keep(r.courses[id]) {
			out = append(out, *r.courses[id])
		}
	}
	return out
}

type fakeMediumStore struct {
	media map[int64]domain.Medium
}

func newFakeMediumStore() *fakeMediumStore {
	return &fakeMediumStore{media: map[int64]domain.Medium{}}
}

func (s *fakeMediumStore) SaveTx(_ context.Context, _ pgx.Tx, ticketID int64, medium domain.Medium) error {
	s.media[ticketID] = medium
	return nil
}

func (s *fakeMediumStore) Load(_ context.Context, ticketID int64, kind domain.MediumKind) (domain.Medium, error) {
	medium, ok := s.media[ticketID]
	if !ok || medium.Kind() != kind {
		return nil, apperrors.NewCorruptionError("medium record missing", nil)
	}
	return medium, nil
}

type fakeTicketRepo struct {
	tickets  map[int64]*domain.Ticket
	media    *fakeMediumStore
	courses  *fakeCourseRepo
	comments *fakeCommentRepo
	nextID   int64

	// beforeUpdateStatus, when set, runs before the compare-and-set check to
	// simulate a concurrent writer.
	beforeUpdateStatus func()
}

func newFakeTicketRepo(media *fakeMediumStore, courses *fakeCourseRepo, comments *fakeCommentRepo) *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[int64]*domain.Ticket{}, media: media, courses: courses, comments: comments}
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket, medium domain.Medium) error {
	r.nextID++
	ticket.ID = r.nextID
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return r.media.SaveTx(ctx, nil, ticket.ID, medium)
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) UpdateStatus(_ context.Context, ticketID int64, from, to domain.Status) error {
	if r.beforeUpdateStatus != nil {
		r.beforeUpdateStatus()
	}
	ticket, ok := r.tickets[ticketID]
	if !ok || ticket.Status != from {
		return apperrors.NewConflict("ticket status changed concurrently", map[string]any{
			"ticket_id": ticketID,
			"expected":  from.String(),
		})
	}
	ticket.Status = to
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	ids := make([]int64, 0, len(r.tickets))
	for id := range r.tickets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	out := []domain.Ticket{}
	for _, id := range ids {
		ticket := r.tickets[id]
		if !r.matches(ticket, filter) {
			continue
		}
		out = append(out, *ticket)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			out = nil
		} else {
			out = out[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *fakeTicketRepo) matches(ticket *domain.Ticket, filter repository.TicketFilter) bool {
	if filter.ScopeCreatorID != nil && ticket.CreatorID != *filter.ScopeCreatorID {
		return false
	}
	if filter.ScopeStaffID != nil && ticket.CreatorID != *filter.ScopeStaffID {
		course := r.courses.courses[ticket.CourseID]
		if course == nil || (course.AuthorID != *filter.ScopeStaffID && course.TutorID != *filter.ScopeStaffID) {
			return false
		}
	}
	if filter.Status != nil && ticket.Status != *filter.Status {
		return false
	}
	if filter.Category != nil && ticket.Category != *filter.Category {
		return false
	}
	if filter.Priority != nil && ticket.Priority != *filter.Priority {
		return false
	}
	if filter.CourseID != nil && ticket.CourseID != *filter.CourseID {
		return false
	}
	if filter.Search != nil {
		needle := strings.ToLower(*filter.Search)
		if !strings.Contains(strings.ToLower(ticket.Title), needle) &&
			!strings.Contains(strings.ToLower(ticket.Description), needle) &&
			!r.commentsMatch(ticket.ID, needle) {
			return false
		}
	}
	return true
}

func (r *fakeTicketRepo) commentsMatch(ticketID int64, needle string) bool {
	for _, comment := range r.comments.comments {
		if comment.TicketID == ticketID && strings.Contains(strings.ToLower(comment.Message), needle) {
			return true
		}
	}
	return false
}

type fakeCommentRepo struct {
	comments []domain.Comment
	nextID   int64
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.nextID++
	comment.ID = r.nextID
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Comment, error) {
	out := []domain.Comment{}
	for _, comment := range r.comments {
		if comment.TicketID == ticketID {
			out = append(out, comment)
		}
	}
	return out, nil
}
