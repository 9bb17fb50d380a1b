package model

import "time"

// Role names carried as token claims.
const (
	RoleAdmin    = "Admin"
	RoleOwner    = "Owner"
	RoleCustomer = "Customer"
)

// DefaultRole is assigned to every newly registered account.
const DefaultRole = RoleCustomer

// ElevatedRoles may mutate the catalogue.
var ElevatedRoles = []string{RoleOwner, RoleAdmin}

// User is a registered account.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	DisplayName  string    `json:"displayName" db:"display_name"`
	RewardPoints int       `json:"rewardPoints" db:"reward_points"`
	Roles        []string  `json:"roles" db:"-"`
	CreatedUTC   time.Time `json:"createdUtc" db:"created_utc"`
}

// NameOrEmail returns the display name, falling back to the email.
func (u *User) NameOrEmail() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// Profile is the minimal account view returned to clients.
type Profile struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	DisplayName  string   `json:"displayName"`
	RewardPoints int      `json:"rewardPoints"`
	Roles        []string `json:"roles"`
}

// HasAnyRole reports whether the profile carries one of roles.
func (p *Profile) HasAnyRole(roles ...string) bool {
	return HasAnyRole(p.Roles, roles...)
}

// ProfileOf builds the client view of u.
func ProfileOf(u *User) Profile {
	roles := u.Roles
	if len(roles) == 0 {
		roles = []string{DefaultRole}
	}
	return Profile{
		ID:           u.ID,
		Email:        u.Email,
		DisplayName:  u.NameOrEmail(),
		RewardPoints: u.RewardPoints,
		Roles:        roles,
	}
}

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	DisplayName     string `json:"displayName"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token     string  `json:"token"`
	TokenType string  `json:"tokenType"`
	ExpiresIn int     `json:"expiresIn"`
	User      Profile `json:"user"`
}

// HasAnyRole reports whether have contains at least one of want.
func HasAnyRole(have []string, want ...string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}
