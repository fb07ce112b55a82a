package repository

import (
	"context"

	"gorm.io/gorm"

	"uiet-connect/backend/internal/model"
)

// DepartmentRepository department data access. Departments are managed by the
// registration service; this backend only reads them.
type DepartmentRepository interface {
	GetByID(ctx context.Context, id string) (*model.Department, error)
}

// departmentRepo GORM implementation of DepartmentRepository
type departmentRepo struct {
	db *gorm.DB
}

// NewDepartmentRepo creates a DepartmentRepository
func NewDepartmentRepo(db *gorm.DB) DepartmentRepository {
	return &departmentRepo{db: db}
}

func (r *departmentRepo) GetByID(ctx context.Context, id string) (*model.Department, error) {
	if !isUUID(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var dept model.Department
	err := r.db.WithContext(ctx).
		Where("department_id = ?", id).
		First(&dept).Error
	if err != nil {
		return nil, err
	}
	return &dept, nil
}
