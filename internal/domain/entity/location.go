package entity

import "time"

// Warehouse representa una bodega o sitio (patio de tanques, almacén de repuestos).
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location representa una ubicación física dentro de una bodega (estante, tanque, zona).
// Es la unidad sobre la que se calcula el nivel de stock.
type Location struct {
	ID          string
	WarehouseID string
	Name        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
