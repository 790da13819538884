package entities

// Request хранит статус денормализованным снимком (status_code,
// status_name), а не живым соединением со справочником: история и
// совместимость API важнее мгновенного переименования.
type Request struct {
	ID             string  `json:"id"`
	OrganizationID uint64  `json:"organization_id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	Company        *string `json:"company"`
	StatusID       uint64  `json:"status_id"`
	StatusCode     string  `json:"status_code"`
	StatusName     string  `json:"status_name"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

type RequestNote struct {
	ID        uint64 `json:"id"`
	RequestID string `json:"request_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
