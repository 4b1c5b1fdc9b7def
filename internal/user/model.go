package user

import "time"

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"` // Never expose password in JSON
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterInput struct {
	Username string `json:"username" binding:"required,max=255"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"max=255"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateInput replaces the mutable profile fields. The password cannot be
// changed through it.
type UpdateInput struct {
	Username string `json:"username" binding:"required,max=255"`
	Email    string `json:"email" binding:"max=255"`
}

type LoginResult struct {
	Token string
	User  *User
}

// LoginResponse keeps token and user at the top level of the envelope.
type LoginResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}
