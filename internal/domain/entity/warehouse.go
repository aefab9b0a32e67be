package entity

// Warehouse es la vista mínima de una bodega que el núcleo necesita para
// validar una transacción (el CRUD completo vive fuera de este módulo).
type Warehouse struct {
	ID       string
	Code     string
	IsActive bool
}
