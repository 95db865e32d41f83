package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"moodmovies/internal/domain"
	"moodmovies/internal/llm"
)

func TestRuleBasedRankerOrdersByFitThenRatingThenID(t *testing.T) {
	scores := domainScores(map[string]float64{"o": 70.0})
	criteria, err := SelectGenres(scores)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	candidates := []domain.Film{
		{ID: "film-d", Title: "D", Rating: 9.9, Genres: []string{"Drama"}},
		{ID: "film-c", Title: "C", Rating: 8.0, Genres: []string{"Fantasy"}},
		{ID: "film-b", Title: "B", Rating: 8.0, Genres: []string{"Fantasy"}},
		{ID: "film-a", Title: "A", Rating: 7.0, Genres: []string{"Fantasy", "Mystery"}},
	}

	ids, err := NewRuleBasedRanker().Rank(context.Background(), scores, criteria, candidates, 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// film-a matchea dos géneros incluidos; film-b y film-c empatan en fit y
	// rating y desempatan por id; film-d no matchea nada.
	want := []string{"film-a", "film-b", "film-c", "film-d"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
}

func TestRuleBasedRankerTruncatesToLimit(t *testing.T) {
	scores := domainScores(map[string]float64{"o": 70.0})
	criteria, err := SelectGenres(scores)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	candidates := []domain.Film{
		{ID: "film-1", Rating: 9.0, Genres: []string{"Fantasy"}},
		{ID: "film-2", Rating: 8.0, Genres: []string{"Fantasy"}},
		{ID: "film-3", Rating: 7.0, Genres: []string{"Fantasy"}},
	}

	ids, err := NewRuleBasedRanker().Rank(context.Background(), scores, criteria, candidates, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 results, got %d", len(ids))
	}
}

func TestLLMRankerParsesFencedResponse(t *testing.T) {
	client := &llm.MockClient{
		Response: "```json\n{\"recommended_film_ids\": [\"film-b\", \"film-x\", \"film-a\", \"film-b\"]}\n```",
	}
	ranker := NewLLMRanker(client, zap.NewNop())

	scores := domainScores(map[string]float64{"o": 70.0})
	criteria := GenreCriteria{Include: []string{"Fantasy"}}
	candidates := []domain.Film{
		{ID: "film-a", Title: "A", Genres: []string{"Fantasy"}},
		{ID: "film-b", Title: "B", Genres: []string{"Fantasy"}},
	}

	ids, err := ranker.Rank(context.Background(), scores, criteria, candidates, 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Ids desconocidos y repetidos se descartan preservando el orden del LLM.
	want := []string{"film-b", "film-a"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}

	if len(client.Prompts) != 1 {
		t.Fatalf("expected exactly one llm call, got %d", len(client.Prompts))
	}
}

func TestLLMRankerTruncatesToLimit(t *testing.T) {
	client := &llm.MockClient{
		Response: `{"recommended_film_ids": ["film-a", "film-b", "film-c"]}`,
	}
	ranker := NewLLMRanker(client, zap.NewNop())

	candidates := []domain.Film{
		{ID: "film-a"}, {ID: "film-b"}, {ID: "film-c"},
	}

	ids, err := ranker.Rank(context.Background(), domain.ScoreSet{Domains: map[string]float64{}}, GenreCriteria{}, candidates, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 results, got %d", len(ids))
	}
}

func TestLLMRankerFailsOnGarbage(t *testing.T) {
	client := &llm.MockClient{Response: "I would recommend some nice movies!"}
	ranker := NewLLMRanker(client, zap.NewNop())

	_, err := ranker.Rank(context.Background(), domain.ScoreSet{}, GenreCriteria{}, []domain.Film{{ID: "film-a"}}, 5)
	if err == nil {
		t.Fatalf("expected error for non-JSON response")
	}
}

func TestLLMRankerFailsWhenNoKnownIDs(t *testing.T) {
	client := &llm.MockClient{Response: `{"recommended_film_ids": ["ghost-1", "ghost-2"]}`}
	ranker := NewLLMRanker(client, zap.NewNop())

	_, err := ranker.Rank(context.Background(), domain.ScoreSet{}, GenreCriteria{}, []domain.Film{{ID: "film-a"}}, 5)
	if err == nil {
		t.Fatalf("expected error when no returned id matches a candidate")
	}
}

func TestLLMRankerPropagatesClientError(t *testing.T) {
	client := &llm.MockClient{Err: errors.New("upstream unavailable")}
	ranker := NewLLMRanker(client, zap.NewNop())

	_, err := ranker.Rank(context.Background(), domain.ScoreSet{}, GenreCriteria{}, []domain.Film{{ID: "film-a"}}, 5)
	if err == nil {
		t.Fatalf("expected error from llm client")
	}
}
