package groupsvc

import (
	"errors"
	"fmt"
)

// MembershipKind says why a membership change was refused.
type MembershipKind int

const (
	// NotFound means the group or the user does not exist.
	NotFound MembershipKind = iota + 1
	// AlreadyMember means the user is already in the group.
	AlreadyMember
	// NotMember means the user is not in the group.
	NotMember
)

func (k MembershipKind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case AlreadyMember:
		return "already a member"
	case NotMember:
		return "not a member"
	default:
		return fmt.Sprintf("MembershipKind(%d)", int(k))
	}
}

// MembershipError is returned by AddUserToGroup and RemoveUserFromGroup when
// the change cannot be made. Entity names what was missing for NotFound.
type MembershipError struct {
	Kind   MembershipKind
	Entity string
}

func (e *MembershipError) Error() string {
	switch e.Kind {
	case NotFound:
		return e.Entity + " not found"
	case AlreadyMember:
		return "user is already a member of the group"
	case NotMember:
		return "user is not a member of the group"
	default:
		return e.Kind.String()
	}
}

// MembershipKindOf returns the kind carried by err, or 0 if err is not a
// MembershipError.
func MembershipKindOf(err error) MembershipKind {
	var me *MembershipError
	if errors.As(err, &me) {
		return me.Kind
	}
	return 0
}
