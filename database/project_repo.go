package database

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atelier-studio/atelier-backend/models"
)

// ProjectFilter narrows project queries. Zero values mean "no restriction";
// a category of "All" is treated the same as no category.
type ProjectFilter struct {
	Category string
	Featured *bool
	Status   string
}

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

func (r *ProjectRepo) applyFilter(tx *gorm.DB, filter ProjectFilter) *gorm.DB {
	if filter.Status != "" {
		tx = tx.Where("status = ?", filter.Status)
	}
	if filter.Category != "" && filter.Category != "All" {
		tx = tx.Where("category = ?", filter.Category)
	}
	if filter.Featured != nil {
		tx = tx.Where("featured = ?", *filter.Featured)
	}
	return tx
}

// FindPublished returns published projects matching the filter, newest first,
// plus the total count before pagination.
func (r *ProjectRepo) FindPublished(filter ProjectFilter, offset, limit int) ([]models.Project, int64, error) {
	filter.Status = models.StatusPublished

	var total int64
	if err := r.applyFilter(r.db.Model(&models.Project{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	err := r.applyFilter(r.db, filter).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// FindPublishedBySlug returns the published project with the given slug, or
// nil when no such record exists.
func (r *ProjectRepo) FindPublishedBySlug(slug string) (*models.Project, error) {
	var project models.Project
	err := r.db.Preload("Owner").
		Where("slug = ? AND status = ?", slug, models.StatusPublished).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

// FindByOwner returns the owner's projects matching the filter, newest first,
// plus the total count before pagination.
func (r *ProjectRepo) FindByOwner(owner uuid.UUID, filter ProjectFilter, offset, limit int) ([]models.Project, int64, error) {
	base := r.db.Model(&models.Project{}).Where("created_by = ?", owner)

	var total int64
	if err := r.applyFilter(base.Session(&gorm.Session{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	err := r.applyFilter(r.db.Where("created_by = ?", owner), filter).
		Preload("Owner").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// FindByIDAndOwner returns the project only when it exists AND belongs to the
// owner; nil otherwise. Callers cannot distinguish "missing" from "not mine".
func (r *ProjectRepo) FindByIDAndOwner(id, owner uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.Preload("Owner").
		Where("id = ? AND created_by = ?", id, owner).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

// Add inserts a new project into the database
func (r *ProjectRepo) Add(project *models.Project) error {
	return r.db.Create(project).Error
}

// Update updates an existing project in the database
func (r *ProjectRepo) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete removes a project from the database by id
func (r *ProjectRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Project{}, "id = ?", id).Error
}

// IsDuplicateSlug reports whether err is a unique-index violation, which for
// projects can only come from the slug index.
func IsDuplicateSlug(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
