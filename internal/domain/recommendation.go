package domain

import "time"

// Recommendation es la lista ordenada de films sugeridos a un usuario.
// Cada corrida del recomendador reemplaza la anterior.
type Recommendation struct {
	ID        string    `json:"recommendation_id"`
	UserID    string    `json:"user_id"`
	ProfileID string    `json:"profile_id"`
	FilmIDs   []string  `json:"film_ids"`
	CreatedAt time.Time `json:"created_at"`
}
