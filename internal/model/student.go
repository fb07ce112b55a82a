package model

// Student enrolled student (students)
type Student struct {
	StudentID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	DepartmentID string `gorm:"type:uuid;not null"                             json:"department_id"`
	SemesterID   string `gorm:"type:uuid;not null"                             json:"semester_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	BaseModel
}

// TableName maps to students
func (Student) TableName() string { return "students" }
