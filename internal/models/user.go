package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	AdminRole Role = "admin"
	UserRole  Role = "user"
)

// User is a wizard operator account.
type User struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id" redis:"user_id" validate:"omitempty"`
	Username  string    `json:"username" db:"username" redis:"username" validate:"required,lte=30"`
	Email     string    `json:"email" db:"email" redis:"email" validate:"required,email,lte=60"`
	Password  string    `json:"password,omitempty" db:"password" redis:"password" validate:"required,min=8"`
	Role      Role      `json:"role" db:"role" redis:"role" validate:"omitempty,oneof=admin user"`
	CreatedAt time.Time `json:"created_at" db:"created_at" redis:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at" redis:"updated_at"`
}

type UserWithToken struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

func (u *User) SanitizePassword() {
	u.Password = ""
}

func (u *User) HashPassword() error {
	hashedPass, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %v", err)
	}
	u.Password = string(hashedPass)
	return nil
}

func (u *User) ComparePassword(password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return fmt.Errorf("error comparing password: %v", err)
	}
	return nil
}

func (u *User) PrepareCreate() error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Password = strings.TrimSpace(u.Password)
	if err := u.HashPassword(); err != nil {
		return err
	}

	switch u.Role {
	case "":
		u.Role = UserRole
	case UserRole, AdminRole:
	default:
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	return nil
}
