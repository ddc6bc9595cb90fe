package audit

import (
	"context"

	appctx "showroom/internal/core/context"
)

// EnrichCreatedBy sets CreatedBy and UpdatedBy from the context user.
// If no user is in context, this is a no-op.
func EnrichCreatedBy(ctx context.Context, createdBy, updatedBy *string) {
	userID := appctx.GetUserID(ctx)
	if userID != "" && createdBy != nil && updatedBy != nil {
		*createdBy = userID
		*updatedBy = userID
	}
}

// EnrichUpdatedBy sets UpdatedBy from the context user.
// If no user is in context, this is a no-op.
func EnrichUpdatedBy(ctx context.Context, updatedBy *string) {
	userID := appctx.GetUserID(ctx)
	if userID != "" && updatedBy != nil {
		*updatedBy = userID
	}
}
