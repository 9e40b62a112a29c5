package contextutil

import (
	"context"
	"strings"
)

// Principal is the authenticated caller resolved once per request.
type Principal struct {
	UserID     string
	EmployeeID string
	CompanyID  string
	FullName   string
	Email      string
	Role       string
	Position   string
}

// HasRole compares case-insensitively.
func (p Principal) HasRole(roles ...string) bool {
	for _, r := range roles {
		if strings.EqualFold(strings.TrimSpace(r), p.Role) {
			return true
		}
	}
	return false
}

func (p Principal) IsZero() bool {
	return p.EmployeeID == "" && p.CompanyID == ""
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func GetPrincipal(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
