package repository

import (
	"context"

	"gorm.io/gorm"

	"uiet-connect/backend/internal/model"
)

// SemesterRepository semester data access
type SemesterRepository interface {
	GetByID(ctx context.Context, id string) (*model.Semester, error)
}

type semesterRepo struct {
	db *gorm.DB
}

// NewSemesterRepo creates a SemesterRepository
func NewSemesterRepo(db *gorm.DB) SemesterRepository {
	return &semesterRepo{db: db}
}

func (r *semesterRepo) GetByID(ctx context.Context, id string) (*model.Semester, error) {
	if !isUUID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var semester model.Semester
	err := r.db.WithContext(ctx).
		Where("semester_id = ?", id).
		First(&semester).Error
	if err != nil {
		return nil, err
	}
	return &semester, nil
}
