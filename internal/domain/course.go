package domain

import "time"

type Course struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type CourseModule struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	Title     string    `json:"title"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

type Lesson struct {
	ID            string    `json:"id"`
	ModuleID      string    `json:"module_id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Position      int       `json:"position"`
	IsFreePreview bool      `json:"is_free_preview"`
	CreatedAt     time.Time `json:"created_at"`
}
