package staff

import (
	"strings"
	"time"

	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
)

type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleGroomer Role = "groomer"
	RoleStaff   Role = "staff"
)

// InvitationTTL is how long a pending invitation stays valid.
const InvitationTTL = 7 * 24 * time.Hour

const InvitationPending = "pending"

var (
	ErrInvalidRole      = httperr.ErrBusiness("invalid_role")
	ErrForbidden        = httperr.ErrBusiness("insufficient_role")
	ErrLastOwner        = httperr.ErrBusiness("last_owner")
	ErrInvitationExists = httperr.ErrBusiness("invitation_exists")
	ErrMemberNotFound   = httperr.ErrNotFound("staff_not_found")
	ErrInviteNotFound   = httperr.ErrNotFound("invitation_not_found")
)

func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch r {
	case RoleOwner, RoleManager, RoleGroomer, RoleStaff:
		return r, true
	}
	return "", false
}

// CanManage reports whether role may edit staff and send invitations.
func CanManage(role Role) bool {
	return role == RoleOwner || role == RoleManager
}

// CanAssign checks that actor may give target role to a member currently
// holding current. Only owners hand out or take away ownership.
func CanAssign(actor, current, target Role) error {
	if !CanManage(actor) {
		return ErrForbidden
	}
	if actor != RoleOwner && (target == RoleOwner || current == RoleOwner) {
		return ErrForbidden
	}
	return nil
}
