package auth

import (
	"strings"

	"github.com/google/uuid"
)

// Permission is a bitmask of capabilities granted through role membership.
// A user's effective mask is the bitwise OR across all their roles.
type Permission uint64

const (
	// PermAccessLedger grants the finance/ledger screens and API.
	PermAccessLedger Permission = 1 << iota
	// PermAccessCalendar grants the calendar service.
	PermAccessCalendar
	// PermViewDashboard grants the aggregated dashboard.
	PermViewDashboard
	// PermPostContactMessages grants submitting contact messages.
	PermPostContactMessages
	// PermManageUsers grants user administration.
	PermManageUsers
	// PermManageRoles grants role and permission administration.
	PermManageRoles
)

// PermAdministrator is the composite of every defined permission.
const PermAdministrator = PermAccessLedger | PermAccessCalendar |
	PermViewDashboard | PermPostContactMessages | PermManageUsers | PermManageRoles

// Has reports whether every bit of required is set in p. Extra bits in p
// are fine; a required mask of zero always passes.
func (p Permission) Has(required Permission) bool {
	return p&required == required
}

var permissionNames = []struct {
	bit  Permission
	name string
}{
	{PermAccessLedger, "access_ledger"},
	{PermAccessCalendar, "access_calendar"},
	{PermViewDashboard, "view_dashboard"},
	{PermPostContactMessages, "post_contact_messages"},
	{PermManageUsers, "manage_users"},
	{PermManageRoles, "manage_roles"},
}

// String renders the mask as a pipe-separated flag list for logs.
func (p Permission) String() string {
	if p == 0 {
		return "none"
	}

	var parts []string
	for _, pn := range permissionNames {
		if p&pn.bit != 0 {
			parts = append(parts, pn.name)
		}
	}
	if rest := p &^ PermAdministrator; rest != 0 {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, "|")
}

// Role is a named grant of permissions. Users hold permissions only through
// roles.
type Role struct {
	ID          uuid.UUID
	Name        string
	Permissions Permission
}
