package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"mangashelf/internal/http-api/models"
)

const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a postgres unique-constraint
// violation, which the database raises on a duplicate (user, title) add.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

type LibraryRepository interface {
	Create(ctx context.Context, entry *models.LibraryEntry) error
	FindByID(ctx context.Context, userID, entryID string) (*models.LibraryEntry, error)
	List(ctx context.Context, userID, status string) ([]models.LibraryEntry, error)
	Exists(ctx context.Context, userID string, malID int64) (bool, error)
	Save(ctx context.Context, entry *models.LibraryEntry) error
	Delete(ctx context.Context, userID, entryID string) error
}

type libraryRepository struct {
	db *gorm.DB
}

func NewLibraryRepository(db *gorm.DB) LibraryRepository {
	return &libraryRepository{db: db}
}

func (r *libraryRepository) Create(ctx context.Context, entry *models.LibraryEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("add to library: %w", err)
	}
	return nil
}

// FindByID scopes the lookup to the owning user, so an entry belonging to
// someone else is indistinguishable from a missing one.
func (r *libraryRepository) FindByID(ctx context.Context, userID, entryID string) (*models.LibraryEntry, error) {
	var entry models.LibraryEntry
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *libraryRepository) List(ctx context.Context, userID, status string) ([]models.LibraryEntry, error) {
	var entries []models.LibraryEntry

	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	if err := q.Order("updated_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	return entries, nil
}

func (r *libraryRepository) Exists(ctx context.Context, userID string, malID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LibraryEntry{}).
		Where("user_id = ? AND mal_id = ?", userID, malID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *libraryRepository) Save(ctx context.Context, entry *models.LibraryEntry) error {
	if err := r.db.WithContext(ctx).Save(entry).Error; err != nil {
		return fmt.Errorf("update library entry: %w", err)
	}
	return nil
}

func (r *libraryRepository) Delete(ctx context.Context, userID, entryID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		Delete(&models.LibraryEntry{})

	if result.Error != nil {
		return fmt.Errorf("remove from library: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
