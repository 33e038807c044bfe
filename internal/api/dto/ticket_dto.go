package dto

import "time"

// MediumRequest carries the variant fields for ticket creation. Which fields
// are read depends on the medium kind the ticket type prescribes; the rest
// are ignored.
type MediumRequest struct {
	Page     uint   `json:"page"`
	Line     uint   `json:"line"`
	Time     string `json:"time"`
	URL      string `json:"url"`
	Question uint   `json:"question"`
	Answer   string `json:"answer"`
}

// MediumResponse is the serialized medium variant, discriminated by kind.
type MediumResponse struct {
	Kind     string `json:"kind"`
	Page     *uint  `json:"page,omitempty"`
	Line     *uint  `json:"line,omitempty"`
	Time     string `json:"time,omitempty"`
	URL      string `json:"url,omitempty"`
	Question *uint  `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`
}

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Type        string        `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Priority    string        `json:"priority"`
	CourseID    int64         `json:"course_id"`
	Medium      MediumRequest `json:"medium"`
}

// EditTicketRequest payload. Type and medium are fixed at creation.
type EditTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

// StatusChangeRequest names the state machine event to apply.
type StatusChangeRequest struct {
	Event string `json:"event"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Message string `json:"message"`
}

// TicketSummary response.
type TicketSummary struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Priority  string    `json:"priority"`
	Status    string    `json:"status"`
	CourseID  int64     `json:"course_id"`
	CreatorID int64     `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info with medium and thread.
type TicketDetailResponse struct {
	ID          int64             `json:"id"`
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Priority    string            `json:"priority"`
	Status      string            `json:"status"`
	CourseID    int64             `json:"course_id"`
	CreatorID   int64             `json:"creator_id"`
	Medium      MediumResponse    `json:"medium"`
	Comments    []CommentResponse `json:"comments"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
