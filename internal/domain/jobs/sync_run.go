package jobs

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SyncOutcomeCommitted  = "committed"
	SyncOutcomeRolledBack = "rolled_back"
	SyncOutcomeEmpty      = "empty"
)

// SyncRun records one ingestion call. It is written after the ingestion transaction settles.
type SyncRun struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64          `gorm:"column:user_id;not null;index" json:"user_id"`
	Labels      datatypes.JSON `gorm:"column:labels" json:"labels"`
	ActivityIDs datatypes.JSON `gorm:"column:activity_ids" json:"activity_ids"`
	Outcome     string         `gorm:"column:outcome;not null;index" json:"outcome"`
	Error       string         `gorm:"column:error" json:"error,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

func (SyncRun) TableName() string { return "sync_runs" }
