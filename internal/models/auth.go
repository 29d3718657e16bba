package models

import "github.com/golang-jwt/jwt/v5"

// UserRole scopes what an authenticated operator may do. Authorization
// policy itself lives outside the engine; the role is carried for callers.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleFaculty UserRole = "FACULTY"
	RoleViewer  UserRole = "VIEWER"
)

// JWTClaims represents the access-token payload issued by the external
// identity provider.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Pagination describes page metadata in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}
