// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Email        string      `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string      `json:"-" gorm:"size:255;not null"`
	Role         AccountRole `json:"role" gorm:"type:varchar(20);not null"`
	Verified     bool        `json:"verified" gorm:"default:false"`
	Status       UserStatus  `json:"status" gorm:"type:varchar(20);default:'active'"`
	ProfileData  JSONB       `json:"profile_data" gorm:"type:jsonb"`
	VerifiedAt   *time.Time  `json:"verified_at"`
	LastLoginAt  *time.Time  `json:"last_login_at"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// CanMint reports whether the account may register new items.
// Minting is reserved for manufacturer accounts an admin has verified.
func (u *User) CanMint() bool {
	return u.Role == RoleManufacturer && u.Verified
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
