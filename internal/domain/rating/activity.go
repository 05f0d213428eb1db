package rating

import "time"

// Activity is a real-world tourism activity, shared by every user that attended it.
type Activity struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Label     string    `gorm:"column:activity;not null;uniqueIndex:idx_activities_activity" json:"activity"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Activity) TableName() string { return "activities" }
