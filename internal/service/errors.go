package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNoResponses indica que el usuario no tiene respuestas registradas.
	ErrNoResponses = errors.New("no questionnaire responses for user")
	// ErrNoProfile indica que el usuario no tiene perfil de personalidad.
	ErrNoProfile = errors.New("no personality profile for user")
	// ErrNoEligibleGenres indica que el perfil no activa ninguna regla de
	// inclusión de géneros. Es una condición recuperable, no una falla.
	ErrNoEligibleGenres = errors.New("no eligible genres for profile")
	// ErrNoCandidateFilms indica que ningún film cumple los criterios de género.
	ErrNoCandidateFilms = errors.New("no candidate films for genre criteria")
)

// IncompleteInputError reporta entradas faltantes del test: preguntas sin
// responder o facetas sin ninguna respuesta. Nunca se calcula ni persiste un
// perfil con entradas faltantes.
type IncompleteInputError struct {
	MissingQuestions []string
	MissingFacets    []string
}

func (e *IncompleteInputError) Error() string {
	var parts []string
	if len(e.MissingQuestions) > 0 {
		missing := append([]string(nil), e.MissingQuestions...)
		sort.Strings(missing)
		parts = append(parts, "unanswered questions "+strings.Join(missing, ", "))
	}
	if len(e.MissingFacets) > 0 {
		missing := append([]string(nil), e.MissingFacets...)
		sort.Strings(missing)
		parts = append(parts, "missing responses for facets "+strings.Join(missing, ", "))
	}
	if len(parts) == 0 {
		return "incomplete input"
	}
	return "incomplete input: " + strings.Join(parts, "; ")
}

// ProfileValidationError reporta un perfil incompleto o con scores fuera de rango.
type ProfileValidationError struct {
	Reason string
}

func (e *ProfileValidationError) Error() string {
	return "invalid profile: " + e.Reason
}
