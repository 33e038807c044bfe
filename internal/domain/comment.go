package domain

import "time"

// Comment is an append-only note in a ticket's discussion thread. Comments
// have no edit or delete operation; their lifetime is bounded by the ticket.
type Comment struct {
	ID        int64
	TicketID  int64
	AuthorID  int64
	Message   string
	CreatedAt time.Time
}
