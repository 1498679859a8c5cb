// Package auth defines the request identity and the credentials that produce it.
package auth

// Principal is the authenticated identity of a request. The zero value is the
// anonymous caller.
type Principal struct {
	UserID  uint64
	IsAdmin bool
}

// Anonymous reports whether no user is attached.
func (p Principal) Anonymous() bool {
	return p.UserID == 0
}

// Owns reports whether p is the account identified by userID.
func (p Principal) Owns(userID uint64) bool {
	return !p.Anonymous() && p.UserID == userID
}

// CanManageUser reports whether p may read or change the given account.
func (p Principal) CanManageUser(userID uint64) bool {
	return p.IsAdmin || p.Owns(userID)
}
