package domain

import "time"

// ResponseItem representa una respuesta del usuario a una pregunta del test,
// ya unida con los metadatos de la pregunta y el puntaje de la opción elegida.
type ResponseItem struct {
	ResponseID    string    `json:"response_id"`
	UserID        string    `json:"user_id"`
	QuestionID    string    `json:"question_id"`
	Domain        string    `json:"domain"`     // "O", "C", "E", "A", "N"
	Facet         int       `json:"facet"`      // 1..6
	FacetCode     string    `json:"facet_code"` // ej. "O_F1"
	ReverseScored bool      `json:"reverse_scored"`
	AnswerID      string    `json:"answer_id"`
	Point         int       `json:"point"` // escala Likert 1..5
	AnsweredAt    time.Time `json:"answered_at"`
}
