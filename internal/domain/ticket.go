package domain

import (
	"fmt"
	"time"
)

// TicketType enumerates the kinds of course material a ticket can be raised
// against. The type decides which medium variant is attached to the ticket.
type TicketType string

const (
	TypeCourseBook            TicketType = "course-book"
	TypeReadingList           TicketType = "reading-list"
	TypeInteractiveBook       TicketType = "interactive-book"
	TypePracticeExam          TicketType = "practice-exam"
	TypePracticeExamSolution  TicketType = "practice-exam-solution"
	TypeVodcast               TicketType = "vodcast"
	TypePodcast               TicketType = "podcast"
	TypePresentation          TicketType = "presentation"
	TypeLiveTutorialRecording TicketType = "live-tutorial-recording"
	TypeOnlineTest            TicketType = "online-test"
)

var ticketTypeMedia = map[TicketType]MediumKind{
	TypeCourseBook:            MediumText,
	TypeReadingList:           MediumText,
	TypePresentation:          MediumText,
	TypeVodcast:               MediumRecording,
	TypePodcast:               MediumRecording,
	TypeLiveTutorialRecording: MediumRecording,
	TypeInteractiveBook:       MediumInteractive,
	TypePracticeExam:          MediumQuestionnaire,
	TypePracticeExamSolution:  MediumQuestionnaire,
	TypeOnlineTest:            MediumQuestionnaire,
}

// ParseTicketType converts form input into a TicketType.
func ParseTicketType(s string) (TicketType, error) {
	ty := TicketType(s)
	if _, ok := ticketTypeMedia[ty]; !ok {
		return "", fmt.Errorf("%w: ticket type %q", ErrUnknownEnum, s)
	}
	return ty, nil
}

func (t TicketType) String() string { return string(t) }

// MediumKind returns the medium variant that tickets of this type carry.
func (t TicketType) MediumKind() MediumKind { return ticketTypeMedia[t] }

// Category groups tickets into content topics.
type Category string

const (
	CategoryEditorial   Category = "editorial"
	CategoryContent     Category = "content"
	CategoryImprovement Category = "improvement"
	CategoryAddition    Category = "addition"
)

var categories = map[Category]struct{}{
	CategoryEditorial:   {},
	CategoryContent:     {},
	CategoryImprovement: {},
	CategoryAddition:    {},
}

// ParseCategory converts form input into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categories[c]; !ok {
		return "", fmt.Errorf("%w: category %q", ErrUnknownEnum, s)
	}
	return c, nil
}

func (c Category) String() string { return string(c) }

// Priority enumerates ticket urgency.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

var priorities = map[Priority]struct{}{
	PriorityCritical: {},
	PriorityHigh:     {},
	PriorityMedium:   {},
	PriorityLow:      {},
}

// ParsePriority converts form input into a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if _, ok := priorities[p]; !ok {
		return "", fmt.Errorf("%w: priority %q", ErrUnknownEnum, s)
	}
	return p, nil
}

func (p Priority) String() string { return string(p) }

// Status is the lifecycle state of a ticket.
//
// A ticket starts open, is claimed into in-progress by the responsible tutor
// or author, answered, and finally closed. Forwarding routes the ticket to the
// course author without closing it; a forwarded ticket can be claimed again.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusAnswered   Status = "answered"
	StatusClosed     Status = "closed"
	StatusForwarded  Status = "forwarded"
)

var statuses = map[Status]struct{}{
	StatusOpen:       {},
	StatusInProgress: {},
	StatusAnswered:   {},
	StatusClosed:     {},
	StatusForwarded:  {},
}

// ParseStatus converts form input into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := statuses[st]; !ok {
		return "", fmt.Errorf("%w: status %q", ErrUnknownEnum, s)
	}
	return st, nil
}

func (s Status) String() string { return string(s) }

// StatusEvent names a requested transition of the ticket state machine.
type StatusEvent string

const (
	EventClaim   StatusEvent = "claim"
	EventForward StatusEvent = "forward"
	EventAnswer  StatusEvent = "answer"
	EventReopen  StatusEvent = "reopen"
	EventClose   StatusEvent = "close"
)

var statusEvents = map[StatusEvent]struct{}{
	EventClaim:   {},
	EventForward: {},
	EventAnswer:  {},
	EventReopen:  {},
	EventClose:   {},
}

// ParseStatusEvent converts form input into a StatusEvent.
func ParseStatusEvent(s string) (StatusEvent, error) {
	ev := StatusEvent(s)
	if _, ok := statusEvents[ev]; !ok {
		return "", fmt.Errorf("%w: status event %q", ErrUnknownEnum, s)
	}
	return ev, nil
}

func (e StatusEvent) String() string { return string(e) }

// Ticket is the aggregate for reported issues against course material.
// The medium is fixed at creation and immutable afterwards; comments and
// forwards only append history.
type Ticket struct {
	ID          int64
	Type        TicketType
	Title       string
	Description string
	Category    Category
	Priority    Priority
	Status      Status
	CourseID    int64
	CreatorID   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
