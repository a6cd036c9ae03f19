package entity

import "time"

// Item representa un ítem del catálogo (combustible, repuesto, insumo).
// Unit es la unidad que se copia a cada transacción al crearla.
type Item struct {
	ID         string
	SKU        string
	Name       string
	Unit       string // L, gal, kg, und
	CategoryID string // vacío si no tiene categoría
	Supplier   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
