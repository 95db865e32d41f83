package service

import (
	"fmt"
	"math"

	"moodmovies/internal/domain"
)

// Rango aceptado para cualquier T-score persistido o consumido.
const (
	scoreFloor   = 0.0
	scoreCeiling = 100.0
)

// ValidateScores verifica que el ScoreSet esté completo (5 dominios + 30
// facetas) y que cada valor sea finito y esté dentro de [0, 100].
//
// El recomendador nunca debe aceptar un perfil que no pase esta validación.
func ValidateScores(scores domain.ScoreSet) error {
	for _, d := range domain.DomainCodes {
		v, ok := scores.Domains[d]
		if !ok {
			return &ProfileValidationError{Reason: fmt.Sprintf("missing domain score %q", d)}
		}
		if err := checkScore(d, v); err != nil {
			return err
		}
	}

	facetCodes := domain.FacetCodes()
	for _, f := range facetCodes {
		v, ok := scores.Facets[f]
		if !ok {
			return &ProfileValidationError{Reason: fmt.Sprintf("missing facet score %q", f)}
		}
		if err := checkScore(f, v); err != nil {
			return err
		}
	}

	// Claves extra delatan un cálculo o una fila corrupta.
	if len(scores.Domains) != len(domain.DomainCodes) {
		return &ProfileValidationError{Reason: fmt.Sprintf("expected %d domain scores, got %d", len(domain.DomainCodes), len(scores.Domains))}
	}
	if len(scores.Facets) != len(facetCodes) {
		return &ProfileValidationError{Reason: fmt.Sprintf("expected %d facet scores, got %d", len(facetCodes), len(scores.Facets))}
	}

	return nil
}

func checkScore(code string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ProfileValidationError{Reason: fmt.Sprintf("score %q is not finite", code)}
	}
	if v < scoreFloor || v > scoreCeiling {
		return &ProfileValidationError{Reason: fmt.Sprintf("score %q = %.2f outside [%.0f, %.0f]", code, v, scoreFloor, scoreCeiling)}
	}
	return nil
}
