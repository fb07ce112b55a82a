package repository

import "gorm.io/gorm"

// Repository aggregates every repository
type Repository struct {
	Department DepartmentRepository
	Semester   SemesterRepository
	Subject    SubjectRepository
	Student    StudentRepository
	Attendance AttendanceRepository
}

// NewRepository builds the aggregate on one connection pool
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Department: NewDepartmentRepo(db),
		Semester:   NewSemesterRepo(db),
		Subject:    NewSubjectRepo(db),
		Student:    NewStudentRepo(db),
		Attendance: NewAttendanceRepo(db),
	}
}
