// Package models contains data structures for the application's domain models.
package models

import "fmt"

// IdentityKind discriminates the three possible caller attributions.
type IdentityKind string

const (
	// IdentityNone means the request carried no usable identity token.
	IdentityNone IdentityKind = "none"
	// IdentityAnonymous means the request is attributed to an opaque visitor token.
	IdentityAnonymous IdentityKind = "anonymous"
	// IdentityAuthenticated means the request carried a valid signed auth token.
	IdentityAuthenticated IdentityKind = "authenticated"
)

// Identity is the resolved caller attribution for a single request. It is an
// immutable value threaded through the request context; handlers never mutate
// it and never reach for an ambient per-request field instead.
type Identity struct {
	Kind      IdentityKind `json:"kind"`
	UserID    uint         `json:"user_id,omitempty"`
	Username  string       `json:"username,omitempty"`
	Role      UserRole     `json:"role,omitempty"`
	AnonToken string       `json:"anon_token,omitempty"`
}

// NoIdentity is the zero attribution.
var NoIdentity = Identity{Kind: IdentityNone}

// AuthenticatedIdentity builds an identity for a verified user token.
func AuthenticatedIdentity(userID uint, username string, role UserRole) Identity {
	return Identity{Kind: IdentityAuthenticated, UserID: userID, Username: username, Role: role}
}

// AnonymousIdentity builds an identity for a tracked anonymous visitor.
func AnonymousIdentity(token string) Identity {
	return Identity{Kind: IdentityAnonymous, AnonToken: token}
}

// IsAuthenticated reports whether the identity belongs to a signed-in user.
func (i Identity) IsAuthenticated() bool {
	return i.Kind == IdentityAuthenticated
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Kind == IdentityAuthenticated && i.Role == UserRoleAdmin
}

// ReaderKey returns the string under which this identity is recorded in a
// post's reads set: "user:<id>" for authenticated callers, the opaque token
// for anonymous visitors, and "" for no identity.
func (i Identity) ReaderKey() string {
	switch i.Kind {
	case IdentityAuthenticated:
		return fmt.Sprintf("user:%d", i.UserID)
	case IdentityAnonymous:
		return i.AnonToken
	}
	return ""
}
