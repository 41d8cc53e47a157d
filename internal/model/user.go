package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User backs the login surface. Its scope columns become the Actor the
// middleware rebuilds on every request; the engine itself only ever sees
// the Actor value, never this row.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Password     string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         string         `gorm:"type:varchar(50);not null" json:"role"`
	Global       bool           `gorm:"default:false" json:"global"`
	LocationID   string         `gorm:"type:varchar(64);index" json:"location_id"`
	DepartmentID string         `gorm:"type:varchar(64)" json:"department_id"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Actor converts the stored user into the per-call identity value.
func (u User) Actor() Actor {
	return Actor{
		ID:           u.ID.String(),
		Role:         Role(u.Role),
		Global:       u.Global,
		LocationID:   u.LocationID,
		DepartmentID: u.DepartmentID,
	}
}
