package service

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"mangashelf/internal/http-api/models"
	"mangashelf/internal/http-api/repository"
)

var (
	ErrAlreadyInLibrary = errors.New("manga already in library")
	ErrEntryNotFound    = errors.New("library entry not found")
	ErrInvalidStatus    = errors.New("invalid reading status")
	ErrInvalidRating    = errors.New("rating must be between 1 and 10")
	ErrInvalidProgress  = errors.New("progress counters must be non-negative")
)

// AddParams carries the denormalized catalog fields stored at add-time.
type AddParams struct {
	MalID         int64
	Title         string
	ImageURL      string
	TotalChapters *int
	TotalVolumes  *int
	Status        string // defaults to PLAN_TO_READ when empty
}

// TimePatch distinguishes "clear the timestamp" from "set it".
type TimePatch struct {
	Clear bool
	Time  time.Time
}

// UpdateParams lists the patchable entry fields. Nil means the field was
// omitted from the request and must keep its stored value.
type UpdateParams struct {
	Status       *string
	Rating       *int // 0 clears the rating
	ChaptersRead *int
	VolumesRead  *int
	OwnedVolumes *[]int  // explicit set, normalized
	VolumeRange  *string // free-text expression, used when OwnedVolumes is nil
	Notes        *string // empty string clears
	StartedAt    *TimePatch
	CompletedAt  *TimePatch
}

// LibraryStats aggregates a user's collection.
type LibraryStats struct {
	Total      int     `json:"total"`
	Reading    int     `json:"reading"`
	Completed  int     `json:"completed"`
	PlanToRead int     `json:"planToRead"`
	OnHold     int     `json:"onHold"`
	Dropped    int     `json:"dropped"`
	AvgRating  float64 `json:"avgRating"`
}

type LibraryService interface {
	Add(ctx context.Context, userID string, params AddParams) (*models.LibraryEntry, error)
	List(ctx context.Context, userID, statusFilter string) ([]models.LibraryEntry, error)
	Update(ctx context.Context, userID, entryID string, params UpdateParams) (*models.LibraryEntry, error)
	Remove(ctx context.Context, userID, entryID string) error
	Stats(ctx context.Context, userID string) (*LibraryStats, error)
}

type libraryService struct {
	repo repository.LibraryRepository
}

func NewLibraryService(repo repository.LibraryRepository) LibraryService {
	return &libraryService{repo: repo}
}

func (s *libraryService) Add(ctx context.Context, userID string, params AddParams) (*models.LibraryEntry, error) {
	status := params.Status
	if status == "" {
		status = models.StatusPlanToRead
	}
	if !models.IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	exists, err := s.repo.Exists(ctx, userID, params.MalID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyInLibrary
	}

	entry := &models.LibraryEntry{
		UserID:        userID,
		MalID:         params.MalID,
		Title:         params.Title,
		ImageURL:      params.ImageURL,
		Status:        status,
		TotalChapters: params.TotalChapters,
		TotalVolumes:  params.TotalVolumes,
		OwnedVolumes:  []int{},
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		// Two concurrent adds can both pass the Exists check; the unique
		// index on (user_id, mal_id) is the authority.
		if repository.IsUniqueViolation(err) {
			return nil, ErrAlreadyInLibrary
		}
		return nil, err
	}
	return entry, nil
}

func (s *libraryService) List(ctx context.Context, userID, statusFilter string) ([]models.LibraryEntry, error) {
	return s.repo.List(ctx, userID, statusFilter)
}

func (s *libraryService) Update(ctx context.Context, userID, entryID string, params UpdateParams) (*models.LibraryEntry, error) {
	entry, err := s.repo.FindByID(ctx, userID, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	if params.Status != nil {
		if !models.IsValidStatus(*params.Status) {
			return nil, ErrInvalidStatus
		}
		entry.Status = *params.Status
	}

	if params.Rating != nil {
		switch {
		case *params.Rating == 0:
			entry.Rating = nil
		case *params.Rating >= 1 && *params.Rating <= 10:
			rating := *params.Rating
			entry.Rating = &rating
		default:
			return nil, ErrInvalidRating
		}
	}

	if params.ChaptersRead != nil {
		if *params.ChaptersRead < 0 {
			return nil, ErrInvalidProgress
		}
		entry.ChaptersRead = *params.ChaptersRead
	}

	if params.VolumesRead != nil {
		if *params.VolumesRead < 0 {
			return nil, ErrInvalidProgress
		}
		entry.VolumesRead = *params.VolumesRead
	}

	if params.OwnedVolumes != nil {
		entry.OwnedVolumes = NormalizeVolumes(*params.OwnedVolumes)
	} else if params.VolumeRange != nil {
		entry.OwnedVolumes = ExpandVolumeRange(*params.VolumeRange)
	}

	if params.Notes != nil {
		if *params.Notes == "" {
			entry.Notes = nil
		} else {
			notes := *params.Notes
			entry.Notes = &notes
		}
	}

	if params.StartedAt != nil {
		if params.StartedAt.Clear {
			entry.StartedAt = nil
		} else {
			t := params.StartedAt.Time
			entry.StartedAt = &t
		}
	}

	if params.CompletedAt != nil {
		if params.CompletedAt.Clear {
			entry.CompletedAt = nil
		} else {
			t := params.CompletedAt.Time
			entry.CompletedAt = &t
		}
	}

	entry.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *libraryService) Remove(ctx context.Context, userID, entryID string) error {
	if err := s.repo.Delete(ctx, userID, entryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		return err
	}
	return nil
}

func (s *libraryService) Stats(ctx context.Context, userID string) (*LibraryStats, error) {
	entries, err := s.repo.List(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	stats := &LibraryStats{Total: len(entries)}

	ratingSum := 0
	ratingCount := 0
	for _, e := range entries {
		switch e.Status {
		case models.StatusReading:
			stats.Reading++
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusPlanToRead:
			stats.PlanToRead++
		case models.StatusOnHold:
			stats.OnHold++
		case models.StatusDropped:
			stats.Dropped++
		}
		if e.Rating != nil {
			ratingSum += *e.Rating
			ratingCount++
		}
	}

	if ratingCount > 0 {
		mean := float64(ratingSum) / float64(ratingCount)
		stats.AvgRating = math.Round(mean*100) / 100
	}

	return stats, nil
}
