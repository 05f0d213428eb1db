package user

import "time"

// User is one signed-in identity. Email is the identity provider's stable identifier.
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"column:email;not null;uniqueIndex:idx_users_email" json:"email"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string { return "users" }
