package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"moodmovies/internal/domain"
	"moodmovies/internal/llm"
)

// Ranker ordena un conjunto de películas candidatas según el perfil del
// usuario y devuelve a lo sumo limit identificadores.
type Ranker interface {
	Rank(ctx context.Context, scores domain.ScoreSet, criteria GenreCriteria, candidates []domain.Film, limit int) ([]string, error)
}

// RuleBasedRanker puntúa cada candidata sumando la afinidad de los géneros
// incluidos que contiene. Es determinista: mismo perfil y mismas candidatas
// producen siempre el mismo orden.
type RuleBasedRanker struct{}

func NewRuleBasedRanker() *RuleBasedRanker {
	return &RuleBasedRanker{}
}

func (r *RuleBasedRanker) Rank(_ context.Context, scores domain.ScoreSet, criteria GenreCriteria, candidates []domain.Film, limit int) ([]string, error) {
	affinity := genreAffinity(scores, criteria)

	type scored struct {
		film domain.Film
		fit  float64
	}

	ranked := make([]scored, 0, len(candidates))
	for _, f := range candidates {
		fit := 0.0
		for _, g := range f.Genres {
			fit += affinity[g]
		}
		ranked = append(ranked, scored{film: f, fit: fit})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].fit != ranked[j].fit {
			return ranked[i].fit > ranked[j].fit
		}
		if ranked[i].film.Rating != ranked[j].film.Rating {
			return ranked[i].film.Rating > ranked[j].film.Rating
		}
		return ranked[i].film.ID < ranked[j].film.ID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]string, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, s.film.ID)
	}
	return out, nil
}

// LLMRanker delega el ordenamiento en un modelo de lenguaje. Cualquier salida
// que no se pueda interpretar, o que no referencie candidatas reales, se
// reporta como error para que el llamador aplique su fallback.
type LLMRanker struct {
	client llm.LLMClient
	log    *zap.Logger
}

func NewLLMRanker(client llm.LLMClient, log *zap.Logger) *LLMRanker {
	return &LLMRanker{client: client, log: log}
}

type llmRankResponse struct {
	RecommendedFilmIDs []string `json:"recommended_film_ids"`
}

func (r *LLMRanker) Rank(ctx context.Context, scores domain.ScoreSet, criteria GenreCriteria, candidates []domain.Film, limit int) ([]string, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidateFilms
	}

	prompt := buildRankPrompt(scores, criteria, candidates, limit)

	raw, err := r.client.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm generate: %w", err)
	}

	cleaned := cleanLLMJSONResponse(raw)
	obj := extractFirstJSONObject(cleaned)
	if obj == "" {
		return nil, fmt.Errorf("llm response contains no JSON object")
	}

	var parsed llmRankResponse
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		return nil, fmt.Errorf("decode llm response: %w", err)
	}
	if len(parsed.RecommendedFilmIDs) == 0 {
		return nil, fmt.Errorf("llm response has no film ids")
	}

	valid := make(map[string]bool, len(candidates))
	for _, f := range candidates {
		valid[f.ID] = true
	}

	seen := make(map[string]bool, len(parsed.RecommendedFilmIDs))
	out := make([]string, 0, limit)
	dropped := 0
	for _, id := range parsed.RecommendedFilmIDs {
		if !valid[id] {
			dropped++
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		if len(out) == limit {
			break
		}
	}

	if dropped > 0 {
		r.log.Warn("llm ranker returned unknown film ids", zap.Int("dropped", dropped))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("llm response referenced no known candidates")
	}

	return out, nil
}

// buildRankPrompt arma el prompt con el perfil, los criterios de género y el
// catálogo de candidatas en un bloque JSON compacto.
func buildRankPrompt(scores domain.ScoreSet, criteria GenreCriteria, candidates []domain.Film, limit int) string {
	var b strings.Builder

	b.WriteString("You are a movie recommendation engine.\n")
	b.WriteString("The user's Big Five personality profile (T-scores, mean 50, sd 10):\n")
	for _, code := range domain.DomainCodes {
		fmt.Fprintf(&b, "  %s: %.2f\n", code, scores.Domains[code])
	}
	fmt.Fprintf(&b, "Preferred genres: %s\n", strings.Join(criteria.Include, ", "))
	if len(criteria.Exclude) > 0 {
		fmt.Fprintf(&b, "Genres to avoid: %s\n", strings.Join(criteria.Exclude, ", "))
	}

	b.WriteString("Candidate films (id | title | rating | genres):\n")
	for _, f := range candidates {
		fmt.Fprintf(&b, "  %s | %s | %.1f | %s\n", f.ID, f.Title, f.Rating, strings.Join(f.Genres, "/"))
	}

	fmt.Fprintf(&b, "Pick the %d films that best fit this personality, ordered from best to worst fit.\n", limit)
	b.WriteString("Use only ids from the candidate list. Respond with JSON only, no prose:\n")
	b.WriteString(`{"recommended_film_ids": ["id1", "id2"]}`)

	return b.String()
}
