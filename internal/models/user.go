package models

import (
	"fmt"
	"regexp"
	"time"
)

type UserRole string

const (
	UserRolePassenger UserRole = "passenger"
	UserRoleDriver    UserRole = "driver"
	UserRoleAdmin     UserRole = "admin"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email is a validated e-mail address value object.
type Email string

func NewEmail(address string) (Email, error) {
	if !emailRegex.MatchString(address) {
		return "", fmt.Errorf("invalid email address %q", address)
	}
	return Email(address), nil
}

func (e Email) String() string {
	return string(e)
}

// DummyPasswordHash is substituted on read paths so that real hashes never
// leave the auth mutation path.
const DummyPasswordHash = "**redacted**"

type User struct {
	ID           int64    `json:"id"`
	Username     string   `json:"username"`
	Email        Email    `json:"email"`
	PasswordHash string   `json:"-"`
	Photo        *string  `json:"photo,omitempty"`
	Role         UserRole `json:"role"`
	RatingAvg    float64  `json:"rating_avg"`
	RatingCount  int64    `json:"rating_count"`
	Active       bool     `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}
