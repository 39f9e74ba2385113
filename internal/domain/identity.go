package domain

import "context"

// Identity is the authenticated caller supplied by the auth boundary.
type Identity struct {
	UserID   int64
	Role     string
	Elevated bool
}

// CanAccess reports whether the identity owns the resource or holds an elevated role.
func (i Identity) CanAccess(ownerID int64) bool {
	return i.Elevated || i.UserID == ownerID
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
