package entity

import "time"

// Committente representa un cliente (tenant) dueño de una partición de productos y stock.
type Committente struct {
	ID                 string
	Name               string
	AllowNegativeStock *bool // política de backorder; nil = usar el valor por defecto configurado
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
