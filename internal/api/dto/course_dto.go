package dto

import "time"

// CourseRequest payload for create and edit.
type CourseRequest struct {
	Code     string `json:"code"`
	Title    string `json:"title"`
	AuthorID int64  `json:"author_id"`
	TutorID  int64  `json:"tutor_id"`
}

// CourseResponse response shape for courses.
type CourseResponse struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Title     string    `json:"title"`
	AuthorID  int64     `json:"author_id"`
	TutorID   int64     `json:"tutor_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
