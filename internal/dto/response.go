package dto

// ── pagination ──

// PaginationRequest common paging query parameters
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage page number, defaulting to 1
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize page size, defaulting to 20
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset row offset of the current page
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ── identity ──

// MeResponse identity injected by the access gate (GET /auth/me)
type MeResponse struct {
	UserID         string `json:"userId"`
	Role           string `json:"role"`
	DepartmentID   string `json:"departmentId"`
	DepartmentName string `json:"departmentName,omitempty"`
	Timezone       string `json:"timezone"`
}
