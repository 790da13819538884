package dto

type CreateRequestDTO struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
}

// UpdateRequestStatusDTO: цель перехода задаётся кодом или ID статуса.
type UpdateRequestStatusDTO struct {
	StatusCode *string `json:"status_code,omitempty" validate:"omitempty,status_code"`
	StatusID   *uint64 `json:"status_id,omitempty" validate:"omitempty,gt=0"`
}

type CreateRequestNoteDTO struct {
	Content string `json:"content" validate:"required"`
}

type RequestNoteDTO struct {
	ID        uint64 `json:"id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type RequestDTO struct {
	ID        string           `json:"id"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Email     string           `json:"email,omitempty"`
	Phone     string           `json:"phone,omitempty"`
	Company   string           `json:"company,omitempty"`
	Status    ShortStatusDTO   `json:"status"`
	CreatedAt string           `json:"created_at"`
	UpdatedAt string           `json:"updated_at"`
	Notes     []RequestNoteDTO `json:"notes"`
}

// RequestsSummaryDTO — агрегат по статусам для дашборда.
type RequestsSummaryDTO struct {
	ByStatus       map[string]uint64 `json:"by_status"`
	Total          uint64            `json:"total"`
	ConversionRate float64           `json:"conversion_rate"`
}
