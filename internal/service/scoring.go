package service

import (
	"fmt"
	"math"
	"strings"

	"moodmovies/internal/domain"
)

const (
	tScoreMean   = 50.0
	tScoreStdDev = 10.0
	minPoint     = 1
	maxPoint     = 5
)

// Scorer calcula los 35 T-scores Big Five a partir de las respuestas del test.
//
// Metodología en seis pasos:
//  1. Agrupar respuestas por faceta, ajustando ítems de puntaje inverso (6 - p).
//  2. Promediar el puntaje crudo de cada faceta.
//  3. Calcular el z-score de cada faceta contra la media/desvío poblacional.
//  4. Convertir a T-score (media 50, desvío 10) redondeado a 2 decimales.
//  5. Promediar las 6 facetas de cada dominio para el T-score del dominio.
//  6. Armar el ScoreSet final con claves minúsculas.
//
// El cálculo es determinístico: mismas respuestas, mismo resultado.
type Scorer struct {
	populationMean   float64
	populationStdDev float64
}

func NewScorer(populationMean, populationStdDev float64) (*Scorer, error) {
	if populationStdDev == 0 {
		return nil, fmt.Errorf("population standard deviation cannot be zero")
	}
	return &Scorer{
		populationMean:   populationMean,
		populationStdDev: populationStdDev,
	}, nil
}

// Calculate computa el perfil completo. Si alguna de las 30 facetas no tiene
// ninguna respuesta devuelve IncompleteInputError y no produce resultado
// parcial: el llamador no debe persistir nada.
func (s *Scorer) Calculate(responses []domain.ResponseItem) (domain.ScoreSet, error) {
	adjusted, err := groupAndAdjust(responses)
	if err != nil {
		return domain.ScoreSet{}, err
	}

	facetCodes := domain.FacetCodes()

	var missing []string
	for _, code := range facetCodes {
		if len(adjusted[code]) == 0 {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		return domain.ScoreSet{}, &IncompleteInputError{MissingFacets: missing}
	}

	facetT := make(map[string]float64, len(facetCodes))
	for _, code := range facetCodes {
		raw := mean(adjusted[code])
		z := (raw - s.populationMean) / s.populationStdDev
		facetT[code] = roundHalfUp(tScoreMean+tScoreStdDev*z, 2)
	}

	domains := make(map[string]float64, len(domain.DomainCodes))
	for _, d := range domain.DomainCodes {
		var sum float64
		for i := 1; i <= domain.FacetsPerDomain; i++ {
			sum += facetT[fmt.Sprintf("%s_f%d", d, i)]
		}
		domains[d] = roundHalfUp(sum/float64(domain.FacetsPerDomain), 2)
	}

	return domain.ScoreSet{Domains: domains, Facets: facetT}, nil
}

// groupAndAdjust agrupa los puntajes ajustados por código de faceta (minúscula).
// Ítems con keyed inverso se transforman a 6 - p antes de agrupar.
func groupAndAdjust(responses []domain.ResponseItem) (map[string][]float64, error) {
	grouped := make(map[string][]float64)
	for _, resp := range responses {
		if resp.FacetCode == "" {
			return nil, fmt.Errorf("response %s has no facet code", resp.ResponseID)
		}

		point := resp.Point
		if resp.ReverseScored {
			point = (maxPoint + 1) - point
		}
		if point < minPoint || point > maxPoint {
			return nil, fmt.Errorf("response %s: adjusted point %d outside [%d,%d]",
				resp.ResponseID, point, minPoint, maxPoint)
		}

		code := strings.ToLower(resp.FacetCode)
		grouped[code] = append(grouped[code], float64(point))
	}
	return grouped, nil
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// roundHalfUp redondea a `places` decimales con la convención "half up"
// (0.005 -> 0.01). Los T-scores del sistema son siempre positivos.
func roundHalfUp(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Floor(v*shift+0.5) / shift
}
