package utils

import (
	"net/url"
	"strconv"
	"time"

	"crm-pipeline/pkg/types"
)

const (
	DefaultLimit = 200
	MaxLimit     = 999
)

// ParseListFilter разбирает query-параметры списка заявок: limit, from, to.
// Даты принимаются в формате RFC3339 или YYYY-MM-DD.
func ParseListFilter(values url.Values) types.ListFilter {
	filter := types.ListFilter{Limit: DefaultLimit}

	if limitStr := values.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			if l > MaxLimit {
				filter.Limit = MaxLimit
			} else {
				filter.Limit = l
			}
		}
	}

	if from := parseDate(values.Get("from")); from != nil {
		filter.From = from
	}
	if to := parseDate(values.Get("to")); to != nil {
		filter.To = to
	}

	return filter
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	return nil
}
