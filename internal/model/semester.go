package model

// Semester student class / cohort (semesters)
type Semester struct {
	SemesterID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"semester_id"`
	DepartmentID string `gorm:"type:uuid;not null"                             json:"department_id"`
	SemesterText string `gorm:"type:varchar(100);not null"                     json:"semester_text"`
	SemesterNum  int    `gorm:"type:smallint;not null"                         json:"semester_num"`
	BaseModel
}

// TableName maps to semesters
func (Semester) TableName() string { return "semesters" }
