package dto

import "mangashelf/internal/http-api/models"

// AddToLibraryRequest: payload to add a catalog title to the user's library.
// Title and image are denormalized copies from the catalog.
type AddToLibraryRequest struct {
	MalID         int64  `json:"mal_id" binding:"required"`
	Title         string `json:"title" binding:"required"`
	ImageURL      string `json:"image_url"`
	Status        string `json:"status"`
	TotalChapters *int   `json:"total_chapters"`
	TotalVolumes  *int   `json:"total_volumes"`
}

// UpdateLibraryRequest: partial update, only present fields are applied.
// rating 0 clears the rating; empty notes clears notes; started_at and
// completed_at take RFC3339 timestamps, empty string clears them.
// owned_volumes is an explicit list; volume_range is a free-text expression
// like "1,3,5,7-10" and is used when owned_volumes is absent.
type UpdateLibraryRequest struct {
	Status       *string `json:"status"`
	Rating       *int    `json:"rating"`
	ChaptersRead *int    `json:"chapters_read"`
	VolumesRead  *int    `json:"volumes_read"`
	OwnedVolumes *[]int  `json:"owned_volumes"`
	VolumeRange  *string `json:"volume_range"`
	Notes        *string `json:"notes"`
	StartedAt    *string `json:"started_at"`
	CompletedAt  *string `json:"completed_at"`
}

// LibraryListResponse: the user's entries, most recently updated first.
type LibraryListResponse struct {
	Library []models.LibraryEntry `json:"library"`
	Total   int                   `json:"total"`
}

// EntryResponse wraps a single library entry.
type EntryResponse struct {
	Entry *models.LibraryEntry `json:"entry"`
}
