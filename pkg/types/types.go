package types

import "time"

// ListFilter — параметры выборки списка заявок.
type ListFilter struct {
	Limit int
	From  *time.Time
	To    *time.Time
}
