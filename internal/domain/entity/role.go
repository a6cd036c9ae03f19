package entity

// Roles que llegan en el token. La autorización se resuelve en la capa HTTP,
// antes de invocar los casos de uso de inventario.
const (
	RoleRoot       = "root"
	RoleManager    = "manager"
	RoleSupervisor = "supervisor"
	RoleOperator   = "operator"
)
