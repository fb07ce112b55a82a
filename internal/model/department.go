package model

// Department tenant root (departments)
type Department struct {
	DepartmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	Timezone     string `gorm:"type:varchar(64);not null;default:''"           json:"timezone,omitempty"` // IANA zone; empty falls back to config
	BaseModel
}

// TableName maps to departments
func (Department) TableName() string { return "departments" }
