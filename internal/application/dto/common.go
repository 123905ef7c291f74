package dto

// Límites de paginación de los listados (historial de movimientos).
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest paginación para listados (?limit=&offset=).
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage normaliza la página: Limit en [1, MaxPageLimit] (0 o negativo usa
// DefaultPageLimit) y Offset >= 0.
func (p *PageRequest) DefaultPage() {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas. Returned es la cantidad de elementos devueltos.
type PageResponse struct {
	Limit    int `json:"limit"`
	Offset   int `json:"offset"`
	Returned int `json:"returned"`
}

// ErrorResponse cuerpo de error HTTP; Code es estable (p. ej. INSUFFICIENT_STOCK).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
