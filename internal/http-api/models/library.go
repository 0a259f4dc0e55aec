package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reading status values for a library entry.
const (
	StatusReading    = "READING"
	StatusCompleted  = "COMPLETED"
	StatusPlanToRead = "PLAN_TO_READ"
	StatusOnHold     = "ON_HOLD"
	StatusDropped    = "DROPPED"
)

// Statuses lists every valid reading status.
var Statuses = []string{
	StatusReading,
	StatusCompleted,
	StatusPlanToRead,
	StatusOnHold,
	StatusDropped,
}

// IsValidStatus reports whether s is one of the reading status values.
func IsValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// LibraryEntry is one user's personal record for one catalog title.
// Title, image and totals are denormalized copies taken from the catalog
// at add-time and never re-synced.
type LibraryEntry struct {
	ID            string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string     `gorm:"type:uuid;not null;uniqueIndex:idx_user_mal" json:"user_id"`
	MalID         int64      `gorm:"not null;uniqueIndex:idx_user_mal" json:"mal_id"`
	Title         string     `gorm:"not null" json:"title"`
	ImageURL      string     `json:"image_url"`
	Status        string     `gorm:"not null;default:'PLAN_TO_READ';index" json:"status"`
	Rating        *int       `json:"rating,omitempty"` // 1..10, nil means unrated
	ChaptersRead  int        `gorm:"default:0" json:"chapters_read"`
	VolumesRead   int        `gorm:"default:0" json:"volumes_read"`
	TotalChapters *int       `json:"total_chapters,omitempty"`
	TotalVolumes  *int       `json:"total_volumes,omitempty"`
	OwnedVolumes  []int      `gorm:"serializer:json" json:"owned_volumes"`
	Notes         *string    `json:"notes,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `gorm:"index" json:"updated_at"`

	// Association
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate hook to set UUID before creating a LibraryEntry
func (e *LibraryEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return
}

func (LibraryEntry) TableName() string {
	return "manga_library"
}
