package model

// Subject course taught within a semester (subjects)
type Subject struct {
	SubjectID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_id"`
	DepartmentID    string  `gorm:"type:uuid;not null"                             json:"department_id"`
	SemesterID      *string `gorm:"type:uuid"                                      json:"semester_id,omitempty"` // class reference, may be unset
	SubjectName     string  `gorm:"type:varchar(100);not null"                     json:"subject_name"`
	SubjectCodename string  `gorm:"type:varchar(30);not null"                      json:"subject_codename"`
	BaseModel

	// associations
	Semester *Semester `gorm:"foreignKey:SemesterID;references:SemesterID" json:"semester,omitempty"`
}

// TableName maps to subjects
func (Subject) TableName() string { return "subjects" }

// SemesterLabel resolves the subject's class reference into a label.
func (s *Subject) SemesterLabel() SemesterLabel {
	if s == nil || s.Semester == nil || s.Semester.SemesterText == "" {
		return UnresolvedSemester()
	}
	return ResolvedSemester(s.Semester.SemesterText)
}
