package dto

// CreateStatusDTO: Что клиент присылает для создания.
type CreateStatusDTO struct {
	Code      string `json:"code" validate:"required,status_code,min=2"`
	Name      string `json:"name" validate:"required"`
	Label     string `json:"label" validate:"omitempty"`
	Color     string `json:"color" validate:"omitempty,column_color"`
	IsDefault bool   `json:"is_default"`
}

// UpdateStatusDTO: Что клиент может прислать для обновления.
type UpdateStatusDTO struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Label     *string `json:"label,omitempty"`
	Color     *string `json:"color,omitempty" validate:"omitempty,column_color"`
	IsDefault *bool   `json:"is_default,omitempty"`
}

// UpdateStatusSortDTO: новый порядок одного элемента справочника,
// по одному вызову на каждый сдвинутый статус при перестановке колонок.
type UpdateStatusSortDTO struct {
	Sort int `json:"sort" validate:"required,gte=1"`
}

// StatusDTO: Что сервер отправляет клиенту в ответ.
type StatusDTO struct {
	ID        uint64 `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Label     string `json:"label,omitempty"`
	Color     string `json:"color,omitempty"`
	Sort      int    `json:"sort"`
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type ShortStatusDTO struct {
	ID   uint64 `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}
