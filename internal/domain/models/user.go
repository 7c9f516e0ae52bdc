// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user may hold. Authorization compares these by exact string match.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Roles lists every accepted value of User.Role.
var Roles = []string{RoleAdmin, RoleUser}

// ValidRole reports whether role is one of Roles.
func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User is an account that can sign in and belong to groups.
//
// NOTE:
//   - Groups is one half of the user↔group relationship; Group.Users is the
//     other half. Both sides are written together by the group service.
//   - Password always holds a bcrypt hash.
type User struct {
	ID       primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name     string               `bson:"name" json:"name"`
	Email    string               `bson:"email" json:"email"`
	Password string               `bson:"password" json:"password,omitempty"`
	Role     string               `bson:"role" json:"role"` // admin | user
	Groups   []primitive.ObjectID `bson:"groups" json:"groups"`

	DeletedAt *time.Time `bson:"deleted_at" json:"deleted_at"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// InGroup reports whether groupID is in the user's membership list.
func (u User) InGroup(groupID primitive.ObjectID) bool {
	for _, g := range u.Groups {
		if g == groupID {
			return true
		}
	}
	return false
}
