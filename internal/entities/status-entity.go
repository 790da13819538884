package entities

type Status struct {
	ID             uint64  `json:"id"`
	OrganizationID uint64  `json:"organization_id"`
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Label          *string `json:"label"`
	Color          *string `json:"color"`
	Sort           int     `json:"sort"`
	IsDefault      bool    `json:"is_default"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}
