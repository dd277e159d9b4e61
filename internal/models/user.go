package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a resident or officer profile. Only the seeder writes it here;
// sign-in lives with the identity provider.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	FullName     string    `gorm:"size:255" json:"full_name"`
	Role         string    `gorm:"size:50;default:'Resident'" json:"role"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
