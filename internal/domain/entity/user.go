package entity

import "time"

// Perfiles de usuario.
const (
	RoleManager            = "MANAGER"
	RoleCommercialShowroom = "COMMERCIAL_SHOWROOM"
	RoleCommercialTerrain  = "COMMERCIAL_TERRAIN"
	RoleTechnician         = "TECHNICIAN"
)

// ValidRole indica si role es un perfil conocido.
func ValidRole(role string) bool {
	switch role {
	case RoleManager, RoleCommercialShowroom, RoleCommercialTerrain, RoleTechnician:
		return true
	}
	return false
}

// User usuario del sistema.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
