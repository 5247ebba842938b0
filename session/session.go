package session

import "strings"

// Role identifies which portal a user belongs to.
type Role string

const (
	RoleApplicant Role = "applicant"
	RoleCentre    Role = "centre"
	RoleAdmin     Role = "admin"
)

// Valid reports whether the role is one of the three enumerated portal roles.
func (r Role) Valid() bool {
	switch r {
	case RoleApplicant, RoleCentre, RoleAdmin:
		return true
	}
	return false
}

// Identity is the authenticated user's record as returned by the backend.
// The linkage ids are assigned when the role-specific onboarding step
// completes; a nil linkage id means onboarding is still outstanding.
type Identity struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	IsActive    bool   `json:"is_active"`
	ApplicantID *int64 `json:"applicant_id,omitempty"`
	CenterID    *int64 `json:"center_id,omitempty"`
	EmployeeID  *int64 `json:"employee_id,omitempty"`
}

// Clone returns a deep copy so callers never share linkage-id pointers with
// the store's own record.
func (id *Identity) Clone() *Identity {
	if id == nil {
		return nil
	}
	cp := *id
	cp.ApplicantID = clonePtr(id.ApplicantID)
	cp.CenterID = clonePtr(id.CenterID)
	cp.EmployeeID = clonePtr(id.EmployeeID)
	return &cp
}

// Session is the sole persisted entity: the current identity plus the bearer
// token pair. Empty token strings mean "absent"; tokens are trimmed before
// they are ever stored.
type Session struct {
	Identity     *Identity `json:"user,omitempty"`
	AccessToken  string    `json:"accessToken,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
}

// Authenticated reports whether an access token is present. It says nothing
// about the token still being accepted by the backend.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

func (s Session) clone() Session {
	s.Identity = s.Identity.Clone()
	return s
}

// TrimToken strips surrounding whitespace from a bearer credential. The store
// applies it on every write and header-building code applies it again before
// use; untrimmed tokens are a known bug class this normalizes away at both
// boundaries.
func TrimToken(token string) string {
	return strings.TrimSpace(token)
}

// normalizeToken applies the trim-or-absent rule: a whitespace-only token
// becomes the empty string, which the rest of the system reads as absent.
func normalizeToken(token string) string {
	return TrimToken(token)
}

func clonePtr(v *int64) *int64 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
