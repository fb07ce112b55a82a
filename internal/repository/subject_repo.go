package repository

import (
	"context"

	"gorm.io/gorm"

	"uiet-connect/backend/internal/model"
)

// SubjectRepository subject data access
type SubjectRepository interface {
	// GetByID loads the subject together with its semester, when it has one
	GetByID(ctx context.Context, id string) (*model.Subject, error)
}

type subjectRepo struct {
	db *gorm.DB
}

// NewSubjectRepo creates a SubjectRepository
func NewSubjectRepo(db *gorm.DB) SubjectRepository {
	return &subjectRepo{db: db}
}

func (r *subjectRepo) GetByID(ctx context.Context, id string) (*model.Subject, error) {
	if !isUUID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Preload("Semester").
		Where("subject_id = ?", id).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}
