package models

import "time"

// Preference menyimpan state client yang dipersist secara lokal
// (token auth dan bahasa UI). Satu baris per console.
type Preference struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthToken string    `gorm:"type:text" json:"-"`
	Language  string    `gorm:"type:varchar(8);not null;default:'en'" json:"language"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
