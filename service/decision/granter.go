package decision

import "context"

// Granter is the external account/resource collaborator invoked on
// approval to authorize the subject for the resource.
type Granter interface {
	Grant(ctx context.Context, subjectID int64, resource string) error
}

// GranterFunc adapts a function to the Granter interface.
type GranterFunc func(ctx context.Context, subjectID int64, resource string) error

// Grant implements Granter.
func (f GranterFunc) Grant(ctx context.Context, subjectID int64, resource string) error {
	return f(ctx, subjectID, resource)
}

// Notifier propagates a resolved outcome back to the origin system. Only
// webhook-originated requests are propagated; for polled requests the store
// result is the notification.
type Notifier interface {
	Notify(ctx context.Context, subjectID int64, resource string, approved bool, resolvedBy string) error
}
