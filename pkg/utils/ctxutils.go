package utils

import (
	"context"

	"crm-pipeline/pkg/contextkeys"
	apperrors "crm-pipeline/pkg/errors"
)

func GetOrganizationIDFromCtx(ctx context.Context) (uint64, error) {
	orgID, ok := ctx.Value(contextkeys.OrganizationIDKey).(uint64)
	if !ok || orgID == 0 {
		return 0, apperrors.ErrOrgIDNotFoundInContext
	}
	return orgID, nil
}

func GetUserIDFromCtx(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(int)
	return userID, ok
}
