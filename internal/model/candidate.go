package model

import "time"

// Candidate is an exam taker. Login doubles as the passport number for
// passport-based authentication, which is why it is unique.
type Candidate struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	FullName     string    `json:"full_name" gorm:"not null"`
	Profession   string    `json:"profession" gorm:"not null;index"`
	Login        string    `json:"login" gorm:"not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Active       bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
