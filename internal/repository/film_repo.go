package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"moodmovies/internal/domain"
)

type FilmRepository interface {
	DistinctGenres(ctx context.Context) ([]string, error)
	// FindByGenreCriteria devuelve films con al menos un género incluido y
	// ninguno excluido, en orden estable: rating desc, estreno desc, id asc.
	FindByGenreCriteria(ctx context.Context, include, exclude []string, limit int) ([]domain.Film, error)
	// ReplaceSuggestions borra las sugerencias previas del usuario e inserta
	// las nuevas preservando el orden, todo dentro de una transacción.
	ReplaceSuggestions(ctx context.Context, userID string, filmIDs []string, createdAt time.Time) error
	LatestSuggestions(ctx context.Context, userID string) ([]string, time.Time, error)
}

type PgFilmRepository struct {
	pool *pgxpool.Pool
}

func NewPgFilmRepository(pool *pgxpool.Pool) *PgFilmRepository {
	return &PgFilmRepository{pool: pool}
}

func (r *PgFilmRepository) DistinctGenres(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT unnest(genres) AS genre FROM films ORDER BY genre`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

func (r *PgFilmRepository) FindByGenreCriteria(ctx context.Context, include, exclude []string, limit int) ([]domain.Film, error) {
	const query = `
		SELECT id, title, rating, release_date, country, runtime, genres
		FROM films
		WHERE genres && $1
		  AND NOT (genres && $2)
		ORDER BY rating DESC NULLS LAST, release_date DESC NULLS LAST, id ASC
		LIMIT $3
	`

	if exclude == nil {
		exclude = []string{}
	}

	rows, err := r.pool.Query(ctx, query, include, exclude, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var films []domain.Film
	for rows.Next() {
		var (
			f       domain.Film
			rating  sql.NullFloat64
			release sql.NullTime
			country sql.NullString
			runtime sql.NullInt64
		)
		if err := rows.Scan(&f.ID, &f.Title, &rating, &release, &country, &runtime, &f.Genres); err != nil {
			return nil, err
		}
		if rating.Valid {
			f.Rating = rating.Float64
		}
		if release.Valid {
			t := release.Time
			f.ReleaseDate = &t
		}
		if country.Valid {
			f.Country = country.String
		}
		if runtime.Valid {
			f.Runtime = int(runtime.Int64)
		}
		films = append(films, f)
	}

	return films, rows.Err()
}

func (r *PgFilmRepository) ReplaceSuggestions(ctx context.Context, userID string, filmIDs []string, createdAt time.Time) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM film_suggestions WHERE user_id = $1`, userID); err != nil {
		return err
	}

	const insert = `
		INSERT INTO film_suggestions (user_id, film_id, position, created_at)
		VALUES ($1, $2, $3, $4)
	`
	for i, filmID := range filmIDs {
		if _, err := tx.Exec(ctx, insert, userID, filmID, i, createdAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PgFilmRepository) LatestSuggestions(ctx context.Context, userID string) ([]string, time.Time, error) {
	const query = `
		SELECT film_id, created_at
		FROM film_suggestions
		WHERE user_id = $1
		ORDER BY position ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer rows.Close()

	var (
		filmIDs   []string
		createdAt time.Time
	)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id, &createdAt); err != nil {
			return nil, time.Time{}, err
		}
		filmIDs = append(filmIDs, id)
	}

	return filmIDs, createdAt, rows.Err()
}
