package entity

import "time"

// Category representa una categoría de productos (ej. Electrónica, Alimentos).
type Category struct {
	ID          string
	Name        string // único
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
