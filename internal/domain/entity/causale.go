package entity

// Causali de sistema conocidas por el núcleo.
const (
	// CausaleAdjustment es el código por defecto de los ajustes generados por el cierre de inventario.
	CausaleAdjustment = "RETT_INV"
)

// Causale es el código de motivo de un movimiento (dato de referencia, solo lectura).
type Causale struct {
	Code                  string
	Description           string
	RequiresAuthorization bool
	Active                bool
}
