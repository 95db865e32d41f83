package service

import (
	"math"
	"sort"

	"moodmovies/internal/domain"
)

const (
	highBand = 60.0
	lowBand  = 40.0

	maxIncludeGenres = 4
	maxExcludeGenres = 2
)

// genreRule asocia una banda de un dominio con los géneros que sugiere o veta.
type genreRule struct {
	domain   string
	high     bool
	include  []string
	exclude  []string
	forcedEx bool
}

// genreRules es la tabla fija de reglas dominio-género. El orden sigue el de
// DomainCodes para que los desempates sean estables.
var genreRules = []genreRule{
	{domain: "o", high: true, include: []string{"Fantasy", "Science Fiction", "Mystery"}},
	{domain: "o", high: false, include: []string{"Comedy", "Action"}},
	{domain: "c", high: true, include: []string{"Documentary", "History", "Biography"}},
	{domain: "c", high: false, include: []string{"Comedy", "Adventure"}},
	{domain: "e", high: true, include: []string{"Comedy", "Action", "Adventure"}},
	{domain: "e", high: false, include: []string{"Drama", "Mystery"}},
	{domain: "a", high: true, include: []string{"Romance", "Family"}},
	{domain: "a", high: false, include: []string{"Crime", "Thriller"}},
	{domain: "n", high: true, include: []string{"Comedy", "Family", "Animation"}, exclude: []string{"Horror", "Thriller"}, forcedEx: true},
	{domain: "n", high: false, include: []string{"Horror", "Thriller", "Action"}},
}

// GenreCriteria es el resultado de la fase de selección de géneros.
type GenreCriteria struct {
	Include []string
	Exclude []string
}

type weightedGenre struct {
	genre    string
	strength float64
	order    int
}

// SelectGenres aplica la tabla de reglas sobre los puntajes de dominio del
// perfil. Un dominio activa su regla alta con T > 60 y la baja con T < 40;
// la fuerza de cada regla es |T - 50|. Un puntaje de neuroticismo alto veta
// Horror y Thriller de forma incondicional. Si ningún dominio sale de la
// banda media no hay criterio posible y se devuelve ErrNoEligibleGenres.
func SelectGenres(scores domain.ScoreSet) (GenreCriteria, error) {
	var includes []weightedGenre
	var excludes []weightedGenre

	order := 0
	for _, rule := range genreRules {
		t, ok := scores.Domains[rule.domain]
		if !ok {
			continue
		}
		if rule.high && t <= highBand {
			continue
		}
		if !rule.high && t >= lowBand {
			continue
		}

		strength := math.Abs(t - 50.0)
		for _, g := range rule.include {
			includes = append(includes, weightedGenre{genre: g, strength: strength, order: order})
			order++
		}
		for _, g := range rule.exclude {
			s := strength
			if rule.forcedEx {
				// El veto forzado siempre gana frente a cualquier inclusión.
				s = math.Inf(1)
			}
			excludes = append(excludes, weightedGenre{genre: g, strength: s, order: order})
			order++
		}
	}

	excludeSet := pickTop(excludes, maxExcludeGenres, nil)
	vetoed := make(map[string]bool, len(excludeSet))
	for _, g := range excludeSet {
		vetoed[g] = true
	}
	includeSet := pickTop(includes, maxIncludeGenres, vetoed)

	if len(includeSet) == 0 {
		return GenreCriteria{}, ErrNoEligibleGenres
	}

	return GenreCriteria{Include: includeSet, Exclude: excludeSet}, nil
}

// pickTop deduplica por género quedándose con la fuerza mayor, ordena por
// fuerza descendente y orden de tabla como desempate, y corta al límite.
func pickTop(candidates []weightedGenre, limit int, vetoed map[string]bool) []string {
	best := make(map[string]weightedGenre)
	for _, c := range candidates {
		if vetoed[c.genre] {
			continue
		}
		cur, ok := best[c.genre]
		if !ok || c.strength > cur.strength || (c.strength == cur.strength && c.order < cur.order) {
			best[c.genre] = c
		}
	}

	ranked := make([]weightedGenre, 0, len(best))
	for _, c := range best {
		ranked = append(ranked, c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].strength != ranked[j].strength {
			return ranked[i].strength > ranked[j].strength
		}
		return ranked[i].order < ranked[j].order
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]string, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, c.genre)
	}
	return out
}

// genreAffinity devuelve, para cada género incluido, la fuerza de la regla de
// dominio que lo aportó. Lo usa el ranker determinista para puntuar películas.
func genreAffinity(scores domain.ScoreSet, criteria GenreCriteria) map[string]float64 {
	included := make(map[string]bool, len(criteria.Include))
	for _, g := range criteria.Include {
		included[g] = true
	}

	affinity := make(map[string]float64, len(criteria.Include))
	for _, rule := range genreRules {
		t, ok := scores.Domains[rule.domain]
		if !ok {
			continue
		}
		if rule.high && t <= highBand {
			continue
		}
		if !rule.high && t >= lowBand {
			continue
		}
		strength := math.Abs(t - 50.0)
		for _, g := range rule.include {
			if !included[g] {
				continue
			}
			if strength > affinity[g] {
				affinity[g] = strength
			}
		}
	}
	return affinity
}
