package models

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
