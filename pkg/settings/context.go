package settings

import (
	"context"
)

// Unexported key type so stored run settings cannot collide with values from
// other packages.
type contextKey string

const settingsContextKey contextKey = "settings"

// IntoContext stores the run settings in the context.
func IntoContext(ctx context.Context, r *Run) context.Context {
	return context.WithValue(ctx, settingsContextKey, r)
}

// FromContext retrieves the run settings stored by IntoContext, reporting
// whether any were present.
func FromContext(ctx context.Context) (*Run, bool) {
	r, ok := ctx.Value(settingsContextKey).(*Run)
	return r, ok
}
