package model

import "time"

// User represents a user in the system. The catalog only reads users; the
// account lifecycle beyond provisioning belongs to other services.
type User struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"size:100;uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Bio       string    `json:"bio,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName keeps gorm on the same table the raw SQL side references.
func (User) TableName() string {
	return "users"
}
