package service

import (
	"context"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/coursedesk/internal/domain"
	"github.com/campuskit/coursedesk/internal/events"
	apperrors "github.com/campuskit/coursedesk/pkg/util"
)

type ticketEnv struct {
	users    *fakeUserRepo
	courses  *fakeCourseRepo
	media    *fakeMediumStore
	tickets  *fakeTicketRepo
	comments *fakeCommentRepo
	events   *[]events.Event
	svc      *TicketService

	student      *domain.User
	otherStudent *domain.User
	tutor        *domain.User
	author       *domain.User
	otherTutor   *domain.User
	otherAuthor  *domain.User
	admin        *domain.User
	course       *domain.Course
	otherCourse  *domain.Course
}

func newTicketEnv(t *testing.T) *ticketEnv {
	t.Helper()
	ctx := context.Background()

	env := &ticketEnv{
		users:    newFakeUserRepo(),
		courses:  newFakeCourseRepo(),
		media:    newFakeMediumStore(),
		comments: newFakeCommentRepo(),
	}
	env.tickets = newFakeTicketRepo(env.media, env.courses, env.comments)

	seed := func(name string, role domain.Role) *domain.User {
		user := &domain.User{Name: name, Email: name + "@example.org", Role: role, Active: true}
		require.NoError(t, env.users.Create(ctx, user))
		return user
	}
	env.student = seed("student", domain.RoleStudent)
	env.otherStudent = seed("student2", domain.RoleStudent)
	env.tutor = seed("tutor", domain.RoleTutor)
	env.author = seed("author", domain.RoleAuthor)
	env.otherTutor = seed("tutor2", domain.RoleTutor)
	env.otherAuthor = seed("author2", domain.RoleAuthor)
	env.admin = seed("admin", domain.RoleAdmin)

	env.course = &domain.Course{Code: "GO101", Title: "Go Basics", AuthorID: env.author.ID, TutorID: env.tutor.ID, Active: true}
	require.NoError(t, env.courses.Create(ctx, env.course))
	env.otherCourse = &domain.Course{Code: "DB201", Title: "Databases", AuthorID: env.otherAuthor.ID, TutorID: env.otherTutor.ID, Active: true}
	require.NoError(t, env.courses.Create(ctx, env.otherCourse))

	captured := &[]events.Event{}
	dispatcher := events.NewInMemoryDispatcher()
	for _, eventType := range []events.EventType{
		events.EventTicketCreated, events.EventTicketStatusChanged,
		events.EventTicketForwarded, events.EventTicketCommented,
	} {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			*captured = append(*captured, event)
			return nil
		})
	}
	env.events = captured

	env.svc = NewTicketService(TicketDependencies{
		TicketRepo:  env.tickets,
		MediumStore: env.media,
		CommentRepo: env.comments,
		CourseRepo:  env.courses,
		UserRepo:    env.users,
		Dispatcher:  dispatcher,
	})
	return env
}

func (env *ticketEnv) createTicket(t *testing.T, creator *domain.User, course *domain.Course) *domain.Ticket {
	t.Helper()
	ticket, err := env.svc.CreateTicket(context.Background(), creator, CreateTicketInput{
		Type:        domain.TypeCourseBook,
		Title:       "typo in chapter two",
		Description: "the example on slicing is wrong",
		Category:    domain.CategoryEditorial,
		Priority:    domain.PriorityMedium,
		CourseID:    course.ID,
		Medium:      domain.TextMedium{Page: 42, Line: 7},
	})
	require.NoError(t, err)
	return ticket
}

func TestCreateTicketStoresMedium(t *testing.T) {
	env := newTicketEnv(t)
	ticket := env.createTicket(t, env.student, env.course)

	assert.Equal(t, domain.StatusOpen, ticket.Status)
	assert.Equal(t, env.student.ID, ticket.CreatorID)

	got, medium, comments, err := env.svc.GetTicket(context.Background(), env.student, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)
	assert.Equal(t, domain.TextMedium{Page: 42, Line: 7}, medium)
	assert.Empty(t, comments)
}

func TestCreateTicketMediumMustMatchType(t *testing.T) {
	env := newTicketEnv(t)
	_, err := env.svc.CreateTicket(context.Background(), env.student, CreateTicketInput{
		Type:        domain.TypeVodcast,
		Title:       "audio drops out",
		Description: "sound is missing after the intro",
		Category:    domain.CategoryContent,
		Priority:    domain.PriorityHigh,
		CourseID:    env.course.ID,
		Medium:      domain.TextMedium{Page: 1, Line: 1},
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}

func TestCreateTicketRejectsDisabledCourse(t *testing.T) {
	env := newTicketEnv(t)
	env.course.Active = false
	require.NoError(t, env.courses.Update(context.Background(), env.course))

	_, err := env.svc.CreateTicket(context.Background(), env.student, CreateTicketInput{
		Type:        domain.TypeCourseBook,
		Title:       "typo",
		Description: "details",
		Category:    domain.CategoryEditorial,
		Priority:    domain.PriorityLow,
		CourseID:    env.course.ID,
		Medium:      domain.TextMedium{Page: 1, Line: 1},
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}

// TestTransitionMatrix drives every (status, event) pair with an actor that
// satisfies the edge's guard, asserting that exactly the table's edges pass
// and everything else is rejected as an invalid transition.
func TestTransitionMatrix(t *testing.T) {
	valid := map[[2]string]domain.Status{
		{"open", "claim"}:          domain.StatusInProgress,
		{"forwarded", "claim"}:     domain.StatusInProgress,
		{"open", "forward"}:        domain.StatusForwarded,
		{"in-progress", "forward"}: domain.StatusForwarded,
		{"in-progress", "answer"}:  domain.StatusAnswered,
		{"answered", "reopen"}:     domain.StatusOpen,
		{"open", "close"}:          domain.StatusClosed,
		{"in-progress", "close"}:   domain.StatusClosed,
		{"answered", "close"}:      domain.StatusClosed,
	}

	allStatuses := []domain.Status{domain.StatusOpen, domain.StatusInProgress, domain.StatusAnswered, domain.StatusClosed, domain.StatusForwarded}
	allEvents := []domain.StatusEvent{domain.EventClaim, domain.EventForward, domain.EventAnswer, domain.EventReopen, domain.EventClose}

	for _, from := range allStatuses {
		for _, event := range allEvents {
			t.Run(from.String()+"_"+event.String(), func(t *testing.T) {
				env := newTicketEnv(t)
				ticket := env.createTicket(t, env.student, env.course)
				env.tickets.tickets[ticket.ID].Status = from

				// actor satisfying the guard of the edge, if it exists
				actor := env.tutor
				if event == domain.EventReopen {
					actor = env.student
				}

				updated, err := env.svc.ChangeStatus(context.Background(), actor, ticket.ID, event)
				if next, ok := valid[[2]string{from.String(), event.String()}]; ok {
					require.NoError(t, err)
					assert.Equal(t, next, updated.Status)
					assert.Equal(t, next, env.tickets.tickets[ticket.ID].Status)
				} else {
					assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition), "got %v", err)
					assert.Equal(t, from, env.tickets.tickets[ticket.ID].Status)
				}
			})
		}
	}
}

func TestClaimGuards(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()

	ticket := env.createTicket(t, env.student, env.course)
	_, err := env.svc.ChangeStatus(ctx, env.student, ticket.ID, domain.EventClaim)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden), "students cannot claim")

	_, err = env.svc.ChangeStatus(ctx, env.otherTutor, ticket.ID, domain.EventClaim)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden), "tutor of another course cannot claim")

	_, err = env.svc.ChangeStatus(ctx, env.tutor, ticket.ID, domain.EventClaim)
	assert.NoError(t, err, "course tutor claims")

	ticket2 := env.createTicket(t, env.student, env.course)
	_, err = env.svc.ChangeStatus(ctx, env.admin, ticket2.ID, domain.EventClaim)
	assert.NoError(t, err, "admin claims any ticket")
}

func TestReopenStaysWithCreator(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()

	ticket := env.createTicket(t, env.student, env.course)
	env.tickets.tickets[ticket.ID].Status = domain.StatusAnswered

	_, err := env.svc.ChangeStatus(ctx, env.admin, ticket.ID, domain.EventReopen)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden), "admin does not bypass the reopen guard")

	_, err = env.svc.ChangeStatus(ctx, env.tutor, ticket.ID, domain.EventReopen)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	updated, err := env.svc.ChangeStatus(ctx, env.student, ticket.ID, domain.EventReopen)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, updated.Status)
}

func TestForwardNotifiesCourseAuthor(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()

	ticket := env.createTicket(t, env.student, env.course)
	*env.events = nil

	updated, err := env.svc.ChangeStatus(ctx, env.student, ticket.ID, domain.EventForward)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusForwarded, updated.Status)

	var forwarded *events.TicketForwardedPayload
	for _, event := range *env.events {
		if payload, ok := event.Payload.(events.TicketForwardedPayload); ok {
			forwarded = &payload
		}
	}
	require.NotNil(t, forwarded, "forward emits a routing event")
	assert.Equal(t, env.author.ID, forwarded.AuthorID)
}

func TestChangeStatusConcurrentLoserConflicts(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()

	ticket := env.createTicket(t, env.student, env.course)
	env.tickets.beforeUpdateStatus = func() {
		env.tickets.tickets[ticket.ID].Status = domain.StatusClosed
	}

	_, err := env.svc.ChangeStatus(ctx, env.tutor, ticket.ID, domain.EventClaim)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict), "got %v", err)
	assert.Equal(t, domain.StatusClosed, env.tickets.tickets[ticket.ID].Status, "winner's status stands")
}

func TestGetTicketVisibility(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()

	ticket := env.createTicket(t, env.student, env.course)

	_, _, _, err := env.svc.GetTicket(ctx, env.otherStudent, ticket.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, _, _, err = env.svc.GetTicket(ctx, env.otherTutor, ticket.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden), "staff of other courses see nothing")

	for _, actor := range []*domain.User{env.student, env.tutor, env.author, env.admin} {
		_, _, _, err := env.svc.GetTicket(ctx, actor, ticket.ID)
		assert.NoError(t, err, "actor %s", actor.Name)
	}

	_, _, _, err = env.svc.GetTicket(ctx, env.admin, 9999)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestGetTicketMissingMediumIsCorruption(t *testing.T) {
	env := newTicketEnv(t)
	ticket := env.createTicket(t, env.student, env.course)
	delete(env.media.media, ticket.ID)

	_, _, _, err := env.svc.GetTicket(context.Background(), env.student, ticket.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDataCorruption))
}

func TestEditTicketPermissions(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()
	ticket := env.createTicket(t, env.student, env.course)

	input := EditTicketInput{
		Title:       "typo in chapter three",
		Description: "moved in the new edition",
		Category:    domain.CategoryContent,
		Priority:    domain.PriorityLow,
	}

	_, err := env.svc.EditTicket(ctx, env.tutor, ticket.ID, input)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden), "course staff cannot edit")

	updated, err := env.svc.EditTicket(ctx, env.student, ticket.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "typo in chapter three", updated.Title)
	assert.Equal(t, domain.CategoryContent, updated.Category)

	_, err = env.svc.EditTicket(ctx, env.admin, ticket.ID, input)
	assert.NoError(t, err, "admin may edit")
}

func TestAddCommentVisibilityAndOrder(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()
	ticket := env.createTicket(t, env.student, env.course)

	_, err := env.svc.AddComment(ctx, env.otherStudent, ticket.ID, "me too")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = env.svc.AddComment(ctx, env.student, ticket.ID, "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))

	first, err := env.svc.AddComment(ctx, env.student, ticket.ID, "any update?")
	require.NoError(t, err)
	second, err := env.svc.AddComment(ctx, env.tutor, ticket.ID, "looking into it")
	require.NoError(t, err)

	_, _, comments, err := env.svc.GetTicket(ctx, env.student, ticket.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, second.ID, comments[1].ID)
}

func TestSearchVisibilityScopes(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()

	mine := env.createTicket(t, env.student, env.course)
	foreignSameCourse := env.createTicket(t, env.otherStudent, env.course)
	foreignOtherCourse := env.createTicket(t, env.otherStudent, env.otherCourse)

	ids := func(tickets []domain.Ticket) []int64 {
		out := []int64{}
		for _, ticket := range tickets {
			out = append(out, ticket.ID)
		}
		return out
	}

	got, err := env.svc.Search(ctx, env.student, SearchCriteria{})
	require.NoError(t, err)
	assert.Equal(t, []int64{mine.ID}, ids(got), "students see only their own tickets")

	// Criteria cannot widen the scope past the caller's own tickets.
	courseID := env.otherCourse.ID
	got, err = env.svc.Search(ctx, env.student, SearchCriteria{CourseID: &courseID})
	require.NoError(t, err)
	assert.Empty(t, ids(got))

	got, err = env.svc.Search(ctx, env.tutor, SearchCriteria{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{mine.ID, foreignSameCourse.ID}, ids(got), "course tutor sees the course's tickets")

	got, err = env.svc.Search(ctx, env.admin, SearchCriteria{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{mine.ID, foreignSameCourse.ID, foreignOtherCourse.ID}, ids(got))
}

func TestSearchCriteria(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()

	ticket := env.createTicket(t, env.student, env.course)
	other := env.createTicket(t, env.student, env.otherCourse)
	env.tickets.tickets[other.ID].Status = domain.StatusClosed

	status := domain.StatusOpen
	got, err := env.svc.Search(ctx, env.student, SearchCriteria{Status: &status})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ticket.ID, got[0].ID)

	needle := "SLICING"
	got, err = env.svc.Search(ctx, env.student, SearchCriteria{Search: &needle})
	require.NoError(t, err)
	assert.Len(t, got, 2, "free text matches case-insensitively")
}

func TestSearchMatchesCommentBodies(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()

	ticket := env.createTicket(t, env.student, env.course)
	env.createTicket(t, env.student, env.course)

	_, err := env.svc.AddComment(ctx, env.tutor, ticket.ID, "the diagram flickers on page load")
	require.NoError(t, err)

	// The needle appears in a comment only, not in any title or description.
	needle := "FLICKERS"
	got, err := env.svc.Search(ctx, env.student, SearchCriteria{Search: &needle})
	require.NoError(t, err)
	require.Len(t, got, 1, "free text reaches into comment bodies")
	assert.Equal(t, ticket.ID, got[0].ID)
}

func TestCreateTicketRejectsOversizedMedium(t *testing.T) {
	env := newTicketEnv(t)
	_, err := env.svc.CreateTicket(context.Background(), env.student, CreateTicketInput{
		Type:        domain.TypeCourseBook,
		Title:       "page number overflows",
		Description: "the reference points past any real page",
		Category:    domain.CategoryEditorial,
		Priority:    domain.PriorityLow,
		CourseID:    env.course.ID,
		Medium:      domain.TextMedium{Page: math.MaxInt32 + 1, Line: 1},
	})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
}

func TestCommentPreviewKeepsRunesIntact(t *testing.T) {
	env := newTicketEnv(t)
	ctx := context.Background()
	ticket := env.createTicket(t, env.student, env.course)
	*env.events = nil

	_, err := env.svc.AddComment(ctx, env.tutor, ticket.ID, strings.Repeat("ü", 200))
	require.NoError(t, err)

	require.Len(t, *env.events, 1)
	payload, ok := (*env.events)[0].Payload.(events.TicketCommentedPayload)
	require.True(t, ok)
	assert.True(t, utf8.ValidString(payload.BodyPreview), "preview never splits a multi-byte character")
	assert.Equal(t, 120, utf8.RuneCountInString(payload.BodyPreview))
	assert.True(t, strings.HasSuffix(payload.BodyPreview, "..."))
}
