package db

import (
	sq "github.com/Masterminds/squirrel"

	"crm-pipeline/pkg/types"
)

// ApplyListFilter накладывает параметры выборки (период, лимит) на
// запрос списка заявок.
func ApplyListFilter(builder sq.SelectBuilder, filter types.ListFilter, createdAtCol string) sq.SelectBuilder {
	if filter.From != nil {
		builder = builder.Where(sq.GtOrEq{createdAtCol: *filter.From})
	}
	if filter.To != nil {
		builder = builder.Where(sq.LtOrEq{createdAtCol: *filter.To})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	return builder
}
