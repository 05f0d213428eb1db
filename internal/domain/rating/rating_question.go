package rating

import (
	"time"

	"github.com/yungbote/rango-rater-backend/internal/domain/user"
)

const (
	// Unrated is the stored rating of a question nobody has answered yet.
	Unrated   = 0
	MinRating = 1
	MaxRating = 5
)

// ScaleLabels names each point of the 1..5 scale, index 0 being rating 1.
var ScaleLabels = [MaxRating]string{"Terrible", "Bad", "Average", "Great", "Awesome"}

// RatingQuestion is one generated (topic, question) pair for a (user, activity).
// (user_id, activity_id, topic, question) is unique.
type RatingQuestion struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64     `gorm:"column:user_id;not null;index:idx_ratings_user;uniqueIndex:idx_ratings_user_activity_topic_question,priority:1" json:"user_id"`
	ActivityID int64     `gorm:"column:activity_id;not null;index:idx_ratings_activity;uniqueIndex:idx_ratings_user_activity_topic_question,priority:2" json:"activity_id"`
	Topic      string    `gorm:"column:topic;not null;uniqueIndex:idx_ratings_user_activity_topic_question,priority:3" json:"topic"`
	Question   string    `gorm:"column:question;not null;uniqueIndex:idx_ratings_user_activity_topic_question,priority:4" json:"question"`
	Rating     int       `gorm:"column:rating;not null;check:chk_ratings_rating,rating >= 0 AND rating <= 5" json:"rating"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	User     *user.User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Activity *Activity  `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE" json:"-"`
}

func (RatingQuestion) TableName() string { return "ratings" }

func (q RatingQuestion) IsRated() bool { return q.Rating != Unrated }

// ValidSubmittedRating reports whether v may be written by a user. 0 is reserved.
func ValidSubmittedRating(v int) bool { return v >= MinRating && v <= MaxRating }

// RatedQuestion is a rating row joined with its activity label.
type RatedQuestion struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	ActivityID int64  `json:"activity_id"`
	Topic      string `json:"topic"`
	Question   string `json:"question"`
	Rating     int    `json:"rating"`
	Activity   string `json:"activity"`
}
