package model

import "github.com/google/uuid"

// Roles stored in users.role and embedded in access-token claims.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User mirrors the 'users' table. PasswordHash never leaves the
// repository/auth layers; handlers expose Profile instead.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	Name         string
	Surname      string
	DateOfBirth  string // YYYY-MM-DD
	Bio          string
	Gender       string // "m" or "f"
	Country      string
	City         string
}

// Profile is the public view of a user returned by the API.
type Profile struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Name        string    `json:"name"`
	Surname     string    `json:"surname"`
	DateOfBirth string    `json:"date_of_birth"`
	Bio         string    `json:"bio,omitempty"`
	Gender      string    `json:"gender"`
	Country     string    `json:"country"`
	City        string    `json:"city"`
}

// NewProfile builds the public view. The role is a parameter rather than
// read from the row because authenticated requests carry the role from the
// token claim, which may lag behind the store until the next login.
func NewProfile(u User, role string) Profile {
	return Profile{
		UserID:      u.ID,
		Email:       u.Email,
		Role:        role,
		Name:        u.Name,
		Surname:     u.Surname,
		DateOfBirth: u.DateOfBirth,
		Bio:         u.Bio,
		Gender:      u.Gender,
		Country:     u.Country,
		City:        u.City,
	}
}

// UserUpdate carries a partial profile update. Nil fields are left
// untouched; the repository applies only what is set.
type UserUpdate struct {
	Email       *string
	Name        *string
	Surname     *string
	DateOfBirth *string
	Bio         *string
	Gender      *string
	Country     *string
	City        *string
}

// Empty reports whether no field is set at all.
func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.Name == nil && u.Surname == nil &&
		u.DateOfBirth == nil && u.Bio == nil && u.Gender == nil &&
		u.Country == nil && u.City == nil
}
