package entity

import "time"

// Farm representa una ubicación física de la operación (granja o galpón) con
// stock propio por ítem.
type Farm struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
}
