package domain

import "time"

// LessonProgress es el progreso de un usuario sobre una leccion.
// Se hace upsert por (user, lesson); nunca se duplica.
type LessonProgress struct {
	UserID       string     `json:"user_id"`
	LessonID     string     `json:"lesson_id"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	LastViewedAt time.Time  `json:"last_viewed_at"`
	CreatedAt    time.Time  `json:"created_at"`
}
