package domain

import "time"

// ShareCode is a single-use login handoff shown to a second device as a QR code.
// The plaintext secret only ever exists in the code handed to the client.
type ShareCode struct {
	ID         string     `gorm:"primaryKey"`
	UserID     string     `gorm:"index;not null"`
	SecretHash string     `gorm:"not null"`
	ExpiresAt  time.Time  `gorm:"index;not null"`
	UsedAt     *time.Time `gorm:"index"`
	CreatedAt  time.Time
}

// Usable reports whether the code can still be redeemed at now.
func (s *ShareCode) Usable(now time.Time) bool {
	return s.UsedAt == nil && now.Before(s.ExpiresAt)
}
