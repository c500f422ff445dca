package types

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginData is returned by the server after a successful login
type LoginData struct {
	JWT string `json:"jwt"`
}

// UserInfo holds the profile the server keeps for a handle
type UserInfo struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// User represents a registered platform user
type User struct {
	Handle      string   `json:"handle"`
	Name        string   `json:"name"`
	Roles       []string `json:"roles"`
	CreatedTime string   `json:"created_time,omitempty"`
	UpdatedTime string   `json:"updated_time,omitempty"`
}

// RegisterUserRequest creates a new user account
type RegisterUserRequest struct {
	Handle   string   `json:"handle"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// UpdateUserRequest changes a user's display name and roles
type UpdateUserRequest struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}
