package domain

import "time"

// Course is a unit of teaching that tickets are raised against. Every course
// has a responsible author who owns the material and a tutor who works
// incoming tickets; forwarding a ticket routes it from the tutor to the author.
type Course struct {
	ID        int64
	Code      string
	Title     string
	AuthorID  int64
	TutorID   int64
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
