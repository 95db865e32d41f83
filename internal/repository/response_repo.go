package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"moodmovies/internal/domain"
)

type ResponseRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.ResponseItem, error)
	// ListUnansweredQuestions devuelve los ids de pregunta del cuestionario
	// que el usuario todavía no respondió.
	ListUnansweredQuestions(ctx context.Context, userID string) ([]string, error)
}

type PgResponseRepository struct {
	pool *pgxpool.Pool
}

func NewPgResponseRepository(pool *pgxpool.Pool) *PgResponseRepository {
	return &PgResponseRepository{pool: pool}
}

// ListByUser devuelve las respuestas del usuario unidas con pregunta y opción.
// Si hay más de una respuesta para la misma pregunta gana la más reciente.
func (r *PgResponseRepository) ListByUser(ctx context.Context, userID string) ([]domain.ResponseItem, error) {
	const query = `
		SELECT DISTINCT ON (r.question_id)
			r.id, r.user_id, r.question_id,
			q.domain, q.facet,
			q.domain || '_F' || q.facet AS facet_code,
			q.keyed = 'minus' AS reverse_scored,
			r.answer_id, a.point, r.answered_at
		FROM questionnaire_responses r
		JOIN questions q ON q.id = r.question_id
		JOIN answers a ON a.id = r.answer_id
		WHERE r.user_id = $1
		ORDER BY r.question_id, r.answered_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ResponseItem
	for rows.Next() {
		var item domain.ResponseItem
		if err := rows.Scan(
			&item.ResponseID,
			&item.UserID,
			&item.QuestionID,
			&item.Domain,
			&item.Facet,
			&item.FacetCode,
			&item.ReverseScored,
			&item.AnswerID,
			&item.Point,
			&item.AnsweredAt,
		); err != nil {
			return nil, err
		}
		item.Domain = strings.ToUpper(item.Domain)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// ListUnansweredQuestions lista las preguntas sin respuesta del usuario. El
// cuestionario completo son todas las filas de questions: cualquier faltante
// hace al input incompleto.
func (r *PgResponseRepository) ListUnansweredQuestions(ctx context.Context, userID string) ([]string, error) {
	const query = `
		SELECT q.id
		FROM questions q
		WHERE NOT EXISTS (
			SELECT 1
			FROM questionnaire_responses r
			WHERE r.question_id = q.id AND r.user_id = $1
		)
		ORDER BY q.id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questionIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		questionIDs = append(questionIDs, id)
	}

	return questionIDs, rows.Err()
}
