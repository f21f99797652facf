package entity

import "time"

// Familias de ítem. Una mutación multi-ítem no puede mezclar familias.
const (
	CategoryFeed   = "feed"   // alimento balanceado
	CategorySupply = "supply" // insumos (vacunas, vitaminas, desinfectantes...)
)

// Item es el catálogo de artículos consumibles de la operación.
type Item struct {
	ID        string
	Name      string
	Category  string // feed | supply
	Unit      string // kg, sacos, dosis...
	CreatedAt time.Time
}

// ValidCategory indica si la categoría es una familia conocida.
func ValidCategory(c string) bool {
	return c == CategoryFeed || c == CategorySupply
}
