package entity

import "time"

// Roles de usuario.
const (
	RoleAdmin         = "ADMIN"
	RoleProjectLeader = "PROJECT_LEADER"
	RoleViewer        = "VIEWER"
)

// User representa un usuario de la aplicación.
type User struct {
	UserID       string
	Name         string
	Email        string
	PasswordHash string // bcrypt
	Role         string
	CreatedAt    time.Time
}
