package service

import (
	"math"
	"sort"
	"time"

	"launchpad/internal/domain"
)

// LessonRef identifica una leccion apuntada por el dashboard (next o resume).
type LessonRef struct {
	LessonID string `json:"lessonId"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Locked   bool   `json:"locked"`
}

// ResumeRef es la leccion "continua aqui"; siempre sale del conjunto accesible.
type ResumeRef struct {
	LessonID string `json:"lessonId"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	ModuleID string `json:"moduleId"`
}

// ModuleProgress es el progreso agregado de un modulo.
type ModuleProgress struct {
	ModuleID   string     `json:"moduleId"`
	Title      string     `json:"title"`
	Percent    int        `json:"percent"`
	Completed  int        `json:"completed"`
	Total      int        `json:"total"`
	NextLesson *LessonRef `json:"nextLesson,omitempty"`
}

// CourseProgress es el resultado completo de la agregacion de un curso.
type CourseProgress struct {
	Modules        []ModuleProgress `json:"modules"`
	OverallPercent int              `json:"overallPercent"`
	Resume         *ResumeRef       `json:"-"`
	LastActivityAt *time.Time       `json:"-"`
}

// AggregateProgress combina catalogo ordenado y progreso disperso por leccion.
//
// El denominador de cada porcentaje es el conjunto accesible: con enrollment
// vale todo el catalogo, sin el solo las lecciones free-preview. Las lecciones
// bloqueadas quedan fuera de la cuenta por completo. lastActivityAt en cambio
// se calcula sobre TODAS las filas de progreso recibidas; puede reflejar
// actividad fuera del acceso actual y esa asimetria es intencional.
func AggregateProgress(modules []domain.CourseModule, lessons []domain.Lesson, progress []domain.LessonProgress, isEnrolled bool) CourseProgress {
	progressByLesson := make(map[string]domain.LessonProgress, len(progress))
	for _, p := range progress {
		progressByLesson[p.LessonID] = p
	}

	lessonsByModule := make(map[string][]domain.Lesson)
	for _, l := range lessons {
		lessonsByModule[l.ModuleID] = append(lessonsByModule[l.ModuleID], l)
	}
	for _, list := range lessonsByModule {
		sort.Slice(list, func(i, j int) bool { return list[i].Position < list[j].Position })
	}

	result := CourseProgress{Modules: make([]ModuleProgress, 0, len(modules))}

	var (
		totalAccessible int
		totalCompleted  int
		lastViewed      time.Time
		haveResume      bool
		resume          ResumeRef
	)

	// Orden de recorrido estable: posicion de modulo, luego posicion de leccion.
	// El desempate de lastViewedAt es estricto-mayor, asi que gana la primera
	// leccion encontrada.
	for _, mod := range modules {
		var (
			completed  int
			total      int
			nextLesson *LessonRef
		)
		for _, les := range lessonsByModule[mod.ID] {
			if !isEnrolled && !les.IsFreePreview {
				continue
			}
			total++
			p, seen := progressByLesson[les.ID]
			if seen && p.CompletedAt != nil {
				completed++
			} else if nextLesson == nil {
				nextLesson = &LessonRef{
					LessonID: les.ID,
					Title:    les.Title,
					Slug:     les.Slug,
					Locked:   !isEnrolled && !les.IsFreePreview,
				}
			}
			if seen && p.LastViewedAt.After(lastViewed) {
				lastViewed = p.LastViewedAt
				resume = ResumeRef{
					LessonID: les.ID,
					Title:    les.Title,
					Slug:     les.Slug,
					ModuleID: mod.ID,
				}
				haveResume = true
			}
		}

		totalAccessible += total
		totalCompleted += completed
		result.Modules = append(result.Modules, ModuleProgress{
			ModuleID:   mod.ID,
			Title:      mod.Title,
			Percent:    percentOf(completed, total),
			Completed:  completed,
			Total:      total,
			NextLesson: nextLesson,
		})
	}

	result.OverallPercent = percentOf(totalCompleted, totalAccessible)

	// Seleccion de resume: ultima vista, luego primer next-lesson desbloqueado
	// en orden de modulos, luego primera leccion free-preview del catalogo.
	if !haveResume {
		for i, mod := range result.Modules {
			if mod.NextLesson != nil && !mod.NextLesson.Locked {
				resume = ResumeRef{
					LessonID: mod.NextLesson.LessonID,
					Title:    mod.NextLesson.Title,
					Slug:     mod.NextLesson.Slug,
					ModuleID: modules[i].ID,
				}
				haveResume = true
				break
			}
		}
	}
	if !haveResume {
	freePreview:
		for _, mod := range modules {
			for _, les := range lessonsByModule[mod.ID] {
				if les.IsFreePreview {
					resume = ResumeRef{
						LessonID: les.ID,
						Title:    les.Title,
						Slug:     les.Slug,
						ModuleID: mod.ID,
					}
					haveResume = true
					break freePreview
				}
			}
		}
	}
	if haveResume {
		result.Resume = &resume
	}

	// Ultima actividad sobre todas las filas, incluidas lecciones bloqueadas.
	var lastActivity time.Time
	for _, p := range progress {
		if p.LastViewedAt.After(lastActivity) {
			lastActivity = p.LastViewedAt
		}
	}
	if !lastActivity.IsZero() {
		result.LastActivityAt = &lastActivity
	}

	return result
}

// percentOf redondea 100*completed/total; 0 cuando no hay lecciones accesibles.
func percentOf(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}
