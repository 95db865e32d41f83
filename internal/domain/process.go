package domain

import "time"

// Estados posibles de un proceso asincrónico del pipeline.
const (
	ProcessPending    = "pending"
	ProcessInProgress = "in_progress"
	ProcessCompleted  = "completed"
	ProcessFailed     = "failed"
)

// Categorías de falla de un proceso. Las condiciones de dominio recuperables
// (perfil ausente, sin géneros elegibles, sin candidatas) se distinguen de
// las fallas de sistema.
const (
	FailureInternal         = "internal"
	FailureNoProfile        = "no_profile"
	FailureNoEligibleGenres = "no_eligible_genres"
	FailureNoCandidateFilms = "no_candidate_films"
	FailureIncompleteInput  = "incomplete_input"
)

// ProcessStatus describe el avance de una corrida del pipeline (scoring o
// recomendación) disparada en background.
type ProcessStatus struct {
	ProcessID   string `json:"process_id"`
	UserID      string `json:"user_id"`
	ProcessType string `json:"process_type"`
	Status      string `json:"status"`
	Stage       string `json:"stage,omitempty"`
	Message     string `json:"message,omitempty"`
	Percentage  int    `json:"percentage"`
	ErrorDetail string `json:"error_detail,omitempty"`
	// ErrorCategory distingue condiciones de dominio recuperables de fallas
	// de sistema cuando Status es failed.
	ErrorCategory string         `json:"error_category,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
	StartedAt     time.Time      `json:"started_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
