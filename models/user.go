package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the owner identity behind catalog records. Credential issuance and
// session handling live outside this service; the table exists so records can
// reference their owner and expose the owner summary where configured.
type User struct {
	ID           uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Username     string    `json:"username" db:"username" gorm:"type:text;not null;uniqueIndex:idx_users_username"`
	Email        string    `json:"email" db:"email" gorm:"type:text;not null;uniqueIndex:idx_users_email"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// OwnerSummary is the slice of owner identity exposed alongside a project.
type OwnerSummary struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Summary returns the exposable view of the user.
func (u *User) Summary() OwnerSummary {
	return OwnerSummary{Username: u.Username, Email: u.Email}
}
