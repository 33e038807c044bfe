package events

import (
	"time"

	"github.com/campuskit/coursedesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserInvited         EventType = "user_invited"
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketForwarded     EventType = "ticket_forwarded"
	EventTicketCommented     EventType = "ticket_commented"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserInvitedPayload carries the data for the invitation email.
type UserInvitedPayload struct {
	UserID         int64  `json:"user_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ActivationCode string `json:"activation_code"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID int64             `json:"ticket_id"`
	CourseID int64             `json:"course_id"`
	Title    string            `json:"title"`
	Type     domain.TicketType `json:"type"`
	Priority domain.Priority   `json:"priority"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	TicketID    int64              `json:"ticket_id"`
	TicketTitle string             `json:"ticket_title"`
	CreatorID   int64              `json:"creator_id"`
	OldStatus   domain.Status      `json:"old_status"`
	NewStatus   domain.Status      `json:"new_status"`
	Event       domain.StatusEvent `json:"event"`
}

// TicketForwardedPayload payload. Forwarding routes the ticket to the course
// author without changing the author-of-record.
type TicketForwardedPayload struct {
	TicketID    int64  `json:"ticket_id"`
	TicketTitle string `json:"ticket_title"`
	AuthorID    int64  `json:"author_id"`
}

// TicketCommentedPayload payload.
type TicketCommentedPayload struct {
	TicketID    int64  `json:"ticket_id"`
	TicketTitle string `json:"ticket_title"`
	CreatorID   int64  `json:"creator_id"`
	CommentID   int64  `json:"comment_id"`
	WriterID    int64  `json:"writer_id"`
	BodyPreview string `json:"body_preview"`
}
