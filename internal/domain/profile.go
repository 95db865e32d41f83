package domain

import (
	"fmt"
	"time"
)

// DomainCodes son los cinco dominios OCEAN en el orden canónico del sistema.
var DomainCodes = []string{"o", "c", "e", "a", "n"}

const FacetsPerDomain = 6

// FacetCodes devuelve los 30 códigos de faceta en orden dominio-mayor:
// o_f1..o_f6, c_f1..c_f6, etc.
func FacetCodes() []string {
	codes := make([]string, 0, len(DomainCodes)*FacetsPerDomain)
	for _, d := range DomainCodes {
		for i := 1; i <= FacetsPerDomain; i++ {
			codes = append(codes, fmt.Sprintf("%s_f%d", d, i))
		}
	}
	return codes
}

// ScoreSet agrupa los 35 T-scores de un perfil: 5 dominios + 30 facetas.
// Las claves son minúsculas ("o", "o_f1", ...).
type ScoreSet struct {
	Domains map[string]float64 `json:"domains"`
	Facets  map[string]float64 `json:"facets"`
}

// Profile es el perfil de personalidad vigente de un usuario.
// Se recalcula completo en cada corrida del scorer; solo cuenta el más reciente.
type Profile struct {
	ID        string    `json:"profile_id"`
	UserID    string    `json:"user_id"`
	Scores    ScoreSet  `json:"scores"`
	CreatedAt time.Time `json:"created_at"`
}

// Domain devuelve el T-score de un dominio, o false si no está presente.
func (s ScoreSet) Domain(code string) (float64, bool) {
	v, ok := s.Domains[code]
	return v, ok
}
