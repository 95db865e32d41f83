package domain

import "time"

// Film es un candidato a recomendación con los metadatos disponibles.
// No incluye sinopsis: el ranking trabaja solo con estos campos.
type Film struct {
	ID          string     `json:"film_id"`
	Title       string     `json:"title"`
	Rating      float64    `json:"rating"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	Country     string     `json:"country,omitempty"`
	Runtime     int        `json:"runtime,omitempty"`
	Genres      []string   `json:"genres"`
}

// HasGenre indica si el film pertenece al género dado.
func (f Film) HasGenre(genre string) bool {
	for _, g := range f.Genres {
		if g == genre {
			return true
		}
	}
	return false
}
