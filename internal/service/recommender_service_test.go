package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"moodmovies/internal/domain"
	"moodmovies/internal/llm"
	"moodmovies/internal/repository"
	"moodmovies/internal/webhook"
)

type mockFilmRepo struct {
	candidates []domain.Film
	findErr    error

	replacedUser string
	replacedIDs  []string
	replaceErr   error

	latestIDs []string
	latestAt  time.Time
	latestErr error
}

func (m *mockFilmRepo) DistinctGenres(_ context.Context) ([]string, error) {
	return nil, errors.New("not implemented")
}

func (m *mockFilmRepo) FindByGenreCriteria(_ context.Context, _, _ []string, limit int) ([]domain.Film, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if len(m.candidates) > limit {
		return m.candidates[:limit], nil
	}
	return m.candidates, nil
}

func (m *mockFilmRepo) ReplaceSuggestions(_ context.Context, userID string, filmIDs []string, _ time.Time) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replacedUser = userID
	m.replacedIDs = filmIDs
	return nil
}

func (m *mockFilmRepo) LatestSuggestions(_ context.Context, _ string) ([]string, time.Time, error) {
	return m.latestIDs, m.latestAt, m.latestErr
}

// testProfile devuelve un perfil completo con apertura alta, que activa
// criterios de género sin exclusiones.
func testProfile(t *testing.T) domain.Profile {
	t.Helper()

	items := fullResponses(3)
	// Sube todas las facetas de apertura: crudo 4, z = 2, T = 70.
	for i := range items {
		if items[i].FacetCode[0] == 'O' {
			items[i].Point = 4
		}
	}

	scores, err := newTestScorer(t).Calculate(items)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	return domain.Profile{
		ID:        "profile-1",
		UserID:    "user-1",
		Scores:    scores,
		CreatedAt: time.Now().UTC(),
	}
}

func newTestRecommender(profiles *mockProfileRepo, films *mockFilmRepo, llmRanker Ranker) (*RecommenderService, *StatusManager) {
	statusMgr := NewStatusManager(NewMemoryStatusStore(), zap.NewNop())
	svc := NewRecommenderService(
		profiles,
		films,
		NewRuleBasedRanker(),
		llmRanker,
		NewUserLocks(),
		statusMgr,
		webhook.NewManager("", zap.NewNop()),
		140,
		70,
		zap.NewNop(),
	)
	return svc, statusMgr
}

func TestRecommenderServiceHappyPath(t *testing.T) {
	profiles := &mockProfileRepo{latest: testProfile(t)}
	films := &mockFilmRepo{candidates: []domain.Film{
		{ID: "film-2", Rating: 8.0, Genres: []string{"Fantasy"}},
		{ID: "film-1", Rating: 9.0, Genres: []string{"Fantasy", "Mystery"}},
		{ID: "film-3", Rating: 7.0, Genres: []string{"Science Fiction"}},
	}}

	svc, _ := newTestRecommender(profiles, films, nil)

	rec, err := svc.Recommend(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []string{"film-1", "film-2", "film-3"}
	if !reflect.DeepEqual(rec.FilmIDs, want) {
		t.Fatalf("expected %v, got %v", want, rec.FilmIDs)
	}
	if rec.ProfileID != "profile-1" {
		t.Fatalf("expected profile-1, got %s", rec.ProfileID)
	}

	// Lo rankeado es exactamente lo persistido, en el mismo orden.
	if !reflect.DeepEqual(films.replacedIDs, want) {
		t.Fatalf("expected persisted ids %v, got %v", want, films.replacedIDs)
	}
	if films.replacedUser != "user-1" {
		t.Fatalf("expected suggestions saved for user-1, got %s", films.replacedUser)
	}
}

func TestRecommenderServiceNoProfile(t *testing.T) {
	profiles := &mockProfileRepo{latestErr: repository.ErrNotFound}
	svc, _ := newTestRecommender(profiles, &mockFilmRepo{}, nil)

	_, err := svc.Recommend(context.Background(), "user-1")
	if !errors.Is(err, ErrNoProfile) {
		t.Fatalf("expected ErrNoProfile, got %v", err)
	}
}

func TestRecommenderServiceRejectsCorruptProfile(t *testing.T) {
	corrupt := testProfile(t)
	delete(corrupt.Scores.Facets, "c_f2")

	profiles := &mockProfileRepo{latest: corrupt}
	films := &mockFilmRepo{}
	svc, _ := newTestRecommender(profiles, films, nil)

	_, err := svc.Recommend(context.Background(), "user-1")

	var verr *ProfileValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ProfileValidationError, got %v", err)
	}
	if films.replacedIDs != nil {
		t.Fatalf("expected no suggestions persisted for corrupt profile")
	}
}

func TestRecommenderServiceMidProfileHasNoGenres(t *testing.T) {
	flat := testProfile(t)
	for _, d := range domain.DomainCodes {
		flat.Scores.Domains[d] = 50.0
	}

	profiles := &mockProfileRepo{latest: flat}
	svc, _ := newTestRecommender(profiles, &mockFilmRepo{}, nil)

	_, err := svc.Recommend(context.Background(), "user-1")
	if !errors.Is(err, ErrNoEligibleGenres) {
		t.Fatalf("expected ErrNoEligibleGenres, got %v", err)
	}
}

func TestRecommenderServiceNoCandidates(t *testing.T) {
	profiles := &mockProfileRepo{latest: testProfile(t)}
	svc, _ := newTestRecommender(profiles, &mockFilmRepo{}, nil)

	_, err := svc.Recommend(context.Background(), "user-1")
	if !errors.Is(err, ErrNoCandidateFilms) {
		t.Fatalf("expected ErrNoCandidateFilms, got %v", err)
	}
}

func TestRecommenderServiceUsesLLMOrder(t *testing.T) {
	profiles := &mockProfileRepo{latest: testProfile(t)}
	films := &mockFilmRepo{candidates: []domain.Film{
		{ID: "film-1", Rating: 9.0, Genres: []string{"Fantasy"}},
		{ID: "film-2", Rating: 8.0, Genres: []string{"Fantasy"}},
	}}

	client := &llm.MockClient{Response: `{"recommended_film_ids": ["film-2", "film-1"]}`}
	svc, _ := newTestRecommender(profiles, films, NewLLMRanker(client, zap.NewNop()))

	rec, err := svc.Recommend(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := []string{"film-2", "film-1"}
	if !reflect.DeepEqual(rec.FilmIDs, want) {
		t.Fatalf("expected llm order %v, got %v", want, rec.FilmIDs)
	}
}

func TestRecommenderServiceFallsBackWhenLLMFails(t *testing.T) {
	profiles := &mockProfileRepo{latest: testProfile(t)}
	films := &mockFilmRepo{candidates: []domain.Film{
		{ID: "film-2", Rating: 8.0, Genres: []string{"Fantasy"}},
		{ID: "film-1", Rating: 9.0, Genres: []string{"Fantasy"}},
	}}

	client := &llm.MockClient{Err: errors.New("upstream timeout")}
	svc, _ := newTestRecommender(profiles, films, NewLLMRanker(client, zap.NewNop()))

	rec, err := svc.Recommend(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected fallback instead of error, got %v", err)
	}

	// Orden determinista del ranker de reglas.
	want := []string{"film-1", "film-2"}
	if !reflect.DeepEqual(rec.FilmIDs, want) {
		t.Fatalf("expected rule-based order %v, got %v", want, rec.FilmIDs)
	}
}

func TestRunProcessReportsCompletion(t *testing.T) {
	profiles := &mockProfileRepo{latest: testProfile(t)}
	films := &mockFilmRepo{candidates: []domain.Film{
		{ID: "film-1", Rating: 9.0, Genres: []string{"Fantasy"}},
	}}

	svc, statusMgr := newTestRecommender(profiles, films, nil)

	processID, err := statusMgr.Start(context.Background(), "user-1", "recommendation")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	svc.RunProcess(context.Background(), processID, "user-1")

	st, ok, err := statusMgr.Get(context.Background(), processID)
	if err != nil || !ok {
		t.Fatalf("expected status to exist, ok=%v err=%v", ok, err)
	}
	if st.Status != domain.ProcessCompleted {
		t.Fatalf("expected completed, got %s", st.Status)
	}
	if st.Percentage != 100 {
		t.Fatalf("expected 100%%, got %d", st.Percentage)
	}
}

func TestRunProcessReportsFailure(t *testing.T) {
	profiles := &mockProfileRepo{latestErr: repository.ErrNotFound}
	svc, statusMgr := newTestRecommender(profiles, &mockFilmRepo{}, nil)

	processID, err := statusMgr.Start(context.Background(), "user-1", "recommendation")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	svc.RunProcess(context.Background(), processID, "user-1")

	st, ok, err := statusMgr.Get(context.Background(), processID)
	if err != nil || !ok {
		t.Fatalf("expected status to exist, ok=%v err=%v", ok, err)
	}
	if st.Status != domain.ProcessFailed {
		t.Fatalf("expected failed, got %s", st.Status)
	}
	if st.ErrorDetail == "" {
		t.Fatalf("expected error detail to be set")
	}
	if st.ErrorCategory != domain.FailureNoProfile {
		t.Fatalf("expected category %s, got %s", domain.FailureNoProfile, st.ErrorCategory)
	}
}

func TestRunProcessFailureCategories(t *testing.T) {
	flat := testProfile(t)
	for _, d := range domain.DomainCodes {
		flat.Scores.Domains[d] = 50.0
	}

	cases := []struct {
		name     string
		profiles *mockProfileRepo
		films    *mockFilmRepo
		want     string
	}{
		{
			name:     "no eligible genres",
			profiles: &mockProfileRepo{latest: flat},
			films:    &mockFilmRepo{},
			want:     domain.FailureNoEligibleGenres,
		},
		{
			name:     "no candidate films",
			profiles: &mockProfileRepo{latest: testProfile(t)},
			films:    &mockFilmRepo{},
			want:     domain.FailureNoCandidateFilms,
		},
		{
			name:     "database error",
			profiles: &mockProfileRepo{latestErr: errors.New("connection reset")},
			films:    &mockFilmRepo{},
			want:     domain.FailureInternal,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, statusMgr := newTestRecommender(tc.profiles, tc.films, nil)

			processID, err := statusMgr.Start(context.Background(), "user-1", "recommendation")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			svc.RunProcess(context.Background(), processID, "user-1")

			st, ok, err := statusMgr.Get(context.Background(), processID)
			if err != nil || !ok {
				t.Fatalf("expected status to exist, ok=%v err=%v", ok, err)
			}
			if st.Status != domain.ProcessFailed {
				t.Fatalf("expected failed, got %s", st.Status)
			}
			if st.ErrorCategory != tc.want {
				t.Fatalf("expected category %s, got %s", tc.want, st.ErrorCategory)
			}
		})
	}
}
