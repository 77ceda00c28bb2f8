package models

// user roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// TokenPayload is authorization token payload
type TokenPayload struct {
	UserID uint64
	Role   string
}
