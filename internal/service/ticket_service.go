package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campuskit/coursedesk/internal/domain"
	"github.com/campuskit/coursedesk/internal/events"
	"github.com/campuskit/coursedesk/internal/repository"
	apperrors "github.com/campuskit/coursedesk/pkg/util"
)

// TicketService coordinates the ticket workflow: creation, editing, the
// status state machine, comments and scoped search.
type TicketService struct {
	tickets    repository.TicketRepository
	media      repository.MediumStore
	comments   repository.CommentRepository
	courses    repository.CourseRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	MediumStore repository.MediumStore
	CommentRepo repository.CommentRepository
	CourseRepo  repository.CourseRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		media:      deps.MediumStore,
		comments:   deps.CommentRepo,
		courses:    deps.CourseRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicketInput describes ticket creation payload. The medium variant
// must agree with the medium kind the ticket type prescribes.
type CreateTicketInput struct {
	Type        domain.TicketType
	Title       string
	Description string
	Category    domain.Category
	Priority    domain.Priority
	CourseID    int64
	Medium      domain.Medium
}

// EditTicketInput describes the mutable ticket fields. The type and medium
// are fixed at creation.
type EditTicketInput struct {
	Title       string
	Description string
	Category    domain.Category
	Priority    domain.Priority
}

// SearchCriteria describes an optional multi-criteria ticket query. Unset
// fields filter nothing. The caller's visibility scope is applied on top of
// these and cannot be widened through them.
type SearchCriteria struct {
	Status   *domain.Status
	Category *domain.Category
	Priority *domain.Priority
	CourseID *int64
	Search   *string
	Limit    int
	Offset   int
}

type transitionKey struct {
	from  domain.Status
	event domain.StatusEvent
}

// transitions is the complete edge set of the ticket state machine. Any
// (status, event) pair outside this table is rejected as an invalid
// transition, never coerced.
var transitions = map[transitionKey]domain.Status{
	{domain.StatusOpen, domain.EventClaim}:         domain.StatusInProgress,
	{domain.StatusForwarded, domain.EventClaim}:    domain.StatusInProgress,
	{domain.StatusOpen, domain.EventForward}:       domain.StatusForwarded,
	{domain.StatusInProgress, domain.EventForward}: domain.StatusForwarded,
	{domain.StatusInProgress, domain.EventAnswer}:  domain.StatusAnswered,
	{domain.StatusAnswered, domain.EventReopen}:    domain.StatusOpen,
	{domain.StatusOpen, domain.EventClose}:         domain.StatusClosed,
	{domain.StatusInProgress, domain.EventClose}:   domain.StatusClosed,
	{domain.StatusAnswered, domain.EventClose}:     domain.StatusClosed,
}

// CreateTicket creates a ticket together with its medium. Both are written in
// one transaction; a failed medium write aborts the whole creation.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input CreateTicketInput) (*domain.Ticket, error) {
	if !actor.Role.HasRank(domain.RoleStudent) {
		return nil, apperrors.NewPermissionError("student rank required")
	}
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}
	if input.Medium == nil {
		return nil, apperrors.NewValidationError("medium required", nil)
	}
	if input.Medium.Kind() != input.Type.MediumKind() {
		return nil, apperrors.NewValidationError("medium does not match ticket type", map[string]any{
			"ticket_type": input.Type.String(),
			"expected":    input.Type.MediumKind().String(),
			"got":         input.Medium.Kind().String(),
		})
	}
	if err := validateMediumBounds(input.Medium); err != nil {
		return nil, err
	}

	course, err := s.getCourse(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}
	if !course.Active {
		return nil, apperrors.NewValidationError("course is disabled", nil)
	}

	ticket := &domain.Ticket{
		Type:        input.Type,
		Title:       title,
		Description: description,
		Category:    input.Category,
		Priority:    input.Priority,
		Status:      domain.StatusOpen,
		CourseID:    course.ID,
		CreatorID:   actor.ID,
	}

	if err := s.tickets.Create(ctx, ticket, input.Medium); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventTicketCreated,
		ActorID: actor.ID,
		Payload: events.TicketCreatedPayload{
			TicketID: ticket.ID,
			CourseID: ticket.CourseID,
			Title:    ticket.Title,
			Type:     ticket.Type,
			Priority: ticket.Priority,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket with its medium and comments, enforcing the
// caller's visibility scope.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, domain.Medium, []domain.Comment, error) {
	ticket, course, err := s.getTicketWithCourse(ctx, ticketID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !s.canSee(actor, ticket, course) {
		return nil, nil, nil, apperrors.NewPermissionError("access denied")
	}

	medium, err := s.media.Load(ctx, ticket.ID, ticket.Type.MediumKind())
	if err != nil {
		return nil, nil, nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return ticket, medium, comments, nil
}

// EditTicket updates title, description, category and priority. Only the
// creator or an admin may edit; the medium is immutable.
func (s *TicketService) EditTicket(ctx context.Context, actor *domain.User, ticketID int64, input EditTicketInput) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.CreatorID != actor.ID && actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewPermissionError("only the creator or an admin may edit a ticket")
	}
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description required", nil)
	}

	ticket.Title = title
	ticket.Description = description
	ticket.Category = input.Category
	ticket.Priority = input.Priority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ChangeStatus applies a state machine event to the ticket. The transition
// must be an edge of the table and the actor must satisfy the edge's guard.
// The status write is compare-and-set, so of two racing transitions only one
// succeeds.
func (s *TicketService) ChangeStatus(ctx context.Context, actor *domain.User, ticketID int64, event domain.StatusEvent) (*domain.Ticket, error) {
	ticket, course, err := s.getTicketWithCourse(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	next, ok := transitions[transitionKey{ticket.Status, event}]
	if !ok {
		return nil, apperrors.NewInvalidTransition(ticket.Status.String(), event.String())
	}
	if !s.allowedTransition(actor, ticket, course, event) {
		return nil, apperrors.NewPermissionError("not allowed to " + event.String() + " this ticket")
	}

	oldStatus := ticket.Status
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, oldStatus, next); err != nil {
		return nil, err
	}
	ticket.Status = next

	s.publishEvent(ctx, events.Event{
		Type:    events.EventTicketStatusChanged,
		ActorID: actor.ID,
		Payload: events.TicketStatusChangedPayload{
			TicketID:    ticket.ID,
			TicketTitle: ticket.Title,
			CreatorID:   ticket.CreatorID,
			OldStatus:   oldStatus,
			NewStatus:   next,
			Event:       event,
		},
	})
	if event == domain.EventForward {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventTicketForwarded,
			ActorID: actor.ID,
			Payload: events.TicketForwardedPayload{
				TicketID:    ticket.ID,
				TicketTitle: ticket.Title,
				AuthorID:    course.AuthorID,
			},
		})
	}
	return ticket, nil
}

// AddComment appends a comment to the ticket's thread.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, ticketID int64, message string) (*domain.Comment, error) {
	ticket, course, err := s.getTicketWithCourse(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !s.canSee(actor, ticket, course) {
		return nil, apperrors.NewPermissionError("access denied")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		AuthorID: actor.ID,
		Message:  message,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventTicketCommented,
		ActorID: actor.ID,
		Payload: events.TicketCommentedPayload{
			TicketID:    ticket.ID,
			TicketTitle: ticket.Title,
			CreatorID:   ticket.CreatorID,
			CommentID:   comment.ID,
			WriterID:    actor.ID,
			BodyPreview: stringPreview(comment.Message, 120),
		},
	})
	return comment, nil
}

// Search returns tickets matching the criteria within the caller's
// visibility scope. The scope is derived from the caller's role and
// ownership before any criterion is applied and cannot be bypassed.
func (s *TicketService) Search(ctx context.Context, actor *domain.User, criteria SearchCriteria) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{
		Status:   criteria.Status,
		Category: criteria.Category,
		Priority: criteria.Priority,
		CourseID: criteria.CourseID,
		Search:   criteria.Search,
		Limit:    criteria.Limit,
		Offset:   criteria.Offset,
	}
	s.applyVisibilityScope(&filter, actor)
	return s.tickets.ListWithFilter(ctx, filter)
}

func (s *TicketService) applyVisibilityScope(filter *repository.TicketFilter, actor *domain.User) {
	filter.ScopeCreatorID = nil
	filter.ScopeStaffID = nil

	switch {
	case actor.Role == domain.RoleAdmin:
		// admins see everything
	case actor.Role.HasRank(domain.RoleTutor):
		id := actor.ID
		filter.ScopeStaffID = &id
	default:
		id := actor.ID
		filter.ScopeCreatorID = &id
	}
}

// allowedTransition evaluates the guard of a valid edge. Admins do not
// bypass the reopen guard: reopening stays with the ticket creator.
func (s *TicketService) allowedTransition(actor *domain.User, ticket *domain.Ticket, course *domain.Course, event domain.StatusEvent) bool {
	isCreator := ticket.CreatorID == actor.ID
	isCourseStaff := course.AuthorID == actor.ID || course.TutorID == actor.ID
	isAdmin := actor.Role == domain.RoleAdmin

	switch event {
	case domain.EventClaim:
		return actor.Role.HasRank(domain.RoleTutor) && (isCourseStaff || isAdmin)
	case domain.EventForward:
		return isCreator || actor.Role.HasRank(domain.RoleTutor)
	case domain.EventAnswer:
		return isCourseStaff || isAdmin
	case domain.EventReopen:
		return isCreator
	case domain.EventClose:
		return isCreator || isCourseStaff || isAdmin
	default:
		return false
	}
}

func (s *TicketService) canSee(actor *domain.User, ticket *domain.Ticket, course *domain.Course) bool {
	if actor.Role == domain.RoleAdmin {
		return true
	}
	if ticket.CreatorID == actor.ID {
		return true
	}
	return actor.Role.HasRank(domain.RoleTutor) &&
		(course.AuthorID == actor.ID || course.TutorID == actor.ID)
}

func (s *TicketService) getTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) getTicketWithCourse(ctx context.Context, id int64) (*domain.Ticket, *domain.Course, error) {
	ticket, err := s.getTicket(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	course, err := s.getCourse(ctx, ticket.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, course, nil
}

func (s *TicketService) getCourse(ctx context.Context, id int64) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("course", map[string]any{"id": id})
		}
		return nil, err
	}
	return course, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// stringPreview truncates to max runes, never splitting a multi-byte
// character.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// The page, line and question counters land in 32-bit columns.
func validateMediumBounds(medium domain.Medium) error {
	switch m := medium.(type) {
	case domain.TextMedium:
		if m.Page > math.MaxInt32 || m.Line > math.MaxInt32 {
			return apperrors.NewValidationError("page and line out of range", map[string]any{
				"max": math.MaxInt32,
			})
		}
	case domain.QuestionnaireMedium:
		if m.Question > math.MaxInt32 {
			return apperrors.NewValidationError("question out of range", map[string]any{
				"max": math.MaxInt32,
			})
		}
	}
	return nil
}
