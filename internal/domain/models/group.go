// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a named set of users. Users holds the member ids; each member's
// User.Groups holds this group's id.
type Group struct {
	ID    primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name  string               `bson:"name" json:"name"`
	Users []primitive.ObjectID `bson:"users" json:"users"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasUser reports whether userID is in the group's membership list.
func (g Group) HasUser(userID primitive.ObjectID) bool {
	for _, u := range g.Users {
		if u == userID {
			return true
		}
	}
	return false
}
