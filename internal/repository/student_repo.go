package repository

import (
	"context"

	"gorm.io/gorm"

	"uiet-connect/backend/internal/model"
)

// StudentRepository student data access
type StudentRepository interface {
	GetByID(ctx context.Context, id string) (*model.Student, error)
	// ListByIDs returns the subset of ids that exist inside the department
	ListByIDs(ctx context.Context, departmentID string, ids []string) ([]model.Student, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo creates a StudentRepository
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	if !isUUID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) ListByIDs(ctx context.Context, departmentID string, ids []string) ([]model.Student, error) {
	ids = uuidsOnly(ids)
	if len(ids) == 0 || !isUUID(departmentID) {
		return nil, nil
	}
	var students []model.Student
	err := r.db.WithContext(ctx).
		Where("department_id = ? AND student_id IN ?", departmentID, ids).
		Find(&students).Error
	return students, err
}
