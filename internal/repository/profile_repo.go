package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"moodmovies/internal/domain"
)

// ErrNotFound se devuelve cuando la fila buscada no existe. Las capas de
// arriba comparan contra este sentinel, nunca contra errores del driver.
var ErrNotFound = errors.New("not found")

type ProfileRepository interface {
	// Save persiste el perfil como perfil vigente del usuario de forma
	// atómica: reemplaza el anterior o inserta uno nuevo, nunca a medias.
	Save(ctx context.Context, profile domain.Profile) (string, error)
	GetByID(ctx context.Context, profileID string) (domain.Profile, error)
	GetLatestByUser(ctx context.Context, userID string) (domain.Profile, error)
	ListByUser(ctx context.Context, userID string, page, limit int) ([]domain.Profile, int, error)
	HasProfile(ctx context.Context, userID string) (bool, error)
}

type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

// scoreColumns devuelve las 35 columnas de score en orden canónico:
// dominios primero, luego facetas dominio-mayor.
func scoreColumns() []string {
	cols := make([]string, 0, 35)
	cols = append(cols, domain.DomainCodes...)
	cols = append(cols, domain.FacetCodes()...)
	return cols
}

func scoreArgs(s domain.ScoreSet) []any {
	args := make([]any, 0, 35)
	for _, d := range domain.DomainCodes {
		args = append(args, s.Domains[d])
	}
	for _, f := range domain.FacetCodes() {
		args = append(args, s.Facets[f])
	}
	return args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (domain.Profile, error) {
	p := domain.Profile{
		Scores: domain.ScoreSet{
			Domains: make(map[string]float64, len(domain.DomainCodes)),
			Facets:  make(map[string]float64, len(domain.FacetCodes())),
		},
	}

	domVals := make([]float64, len(domain.DomainCodes))
	facetCodes := domain.FacetCodes()
	facetVals := make([]float64, len(facetCodes))

	dests := make([]any, 0, 3+len(domVals)+len(facetVals))
	dests = append(dests, &p.ID, &p.UserID, &p.CreatedAt)
	for i := range domVals {
		dests = append(dests, &domVals[i])
	}
	for i := range facetVals {
		dests = append(dests, &facetVals[i])
	}

	if err := row.Scan(dests...); err != nil {
		return domain.Profile{}, err
	}

	for i, d := range domain.DomainCodes {
		p.Scores.Domains[d] = domVals[i]
	}
	for i, f := range facetCodes {
		p.Scores.Facets[f] = facetVals[i]
	}
	return p, nil
}

func (r *PgProfileRepository) Save(ctx context.Context, profile domain.Profile) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	cols := scoreColumns()

	var existingID string
	err = tx.QueryRow(ctx, `
		SELECT id FROM personality_profiles
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE
	`, profile.UserID).Scan(&existingID)

	switch {
	case err == nil:
		// Perfil existente: se sobreescribe completo en una sola sentencia.
		assigns := make([]string, 0, len(cols)+1)
		assigns = append(assigns, "created_at = $2")
		for i, col := range cols {
			assigns = append(assigns, fmt.Sprintf("%s = $%d", col, i+3))
		}
		query := fmt.Sprintf("UPDATE personality_profiles SET %s WHERE id = $1", strings.Join(assigns, ", "))

		args := make([]any, 0, len(cols)+2)
		args = append(args, existingID, profile.CreatedAt)
		args = append(args, scoreArgs(profile.Scores)...)

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return "", err
		}
		if err := tx.Commit(ctx); err != nil {
			return "", err
		}
		return existingID, nil

	case errors.Is(err, pgx.ErrNoRows):
		placeholders := make([]string, 0, len(cols))
		for i := range cols {
			placeholders = append(placeholders, fmt.Sprintf("$%d", i+4))
		}
		query := fmt.Sprintf(
			"INSERT INTO personality_profiles (id, user_id, created_at, %s) VALUES ($1, $2, $3, %s)",
			strings.Join(cols, ", "),
			strings.Join(placeholders, ", "),
		)

		args := make([]any, 0, len(cols)+3)
		args = append(args, profile.ID, profile.UserID, profile.CreatedAt)
		args = append(args, scoreArgs(profile.Scores)...)

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return "", err
		}
		if err := tx.Commit(ctx); err != nil {
			return "", err
		}
		return profile.ID, nil

	default:
		return "", err
	}
}

func (r *PgProfileRepository) GetByID(ctx context.Context, profileID string) (domain.Profile, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, created_at, %s
		FROM personality_profiles
		WHERE id = $1
	`, strings.Join(scoreColumns(), ", "))

	p, err := scanProfile(r.pool.QueryRow(ctx, query, profileID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, ErrNotFound
	}
	return p, err
}

func (r *PgProfileRepository) GetLatestByUser(ctx context.Context, userID string) (domain.Profile, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, created_at, %s
		FROM personality_profiles
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, strings.Join(scoreColumns(), ", "))

	p, err := scanProfile(r.pool.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, ErrNotFound
	}
	return p, err
}

func (r *PgProfileRepository) ListByUser(ctx context.Context, userID string, page, limit int) ([]domain.Profile, int, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM personality_profiles WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, nil
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, created_at, %s
		FROM personality_profiles
		WHERE user_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`, strings.Join(scoreColumns(), ", "))

	rows, err := r.pool.Query(ctx, query, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}

func (r *PgProfileRepository) HasProfile(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM personality_profiles WHERE user_id = $1)`, userID,
	).Scan(&exists)
	return exists, err
}
