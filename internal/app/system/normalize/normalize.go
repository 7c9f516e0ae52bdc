// Package normalize canonicalizes user-supplied identity fields before they
// are stored or compared.
package normalize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var strict = bluemonday.StrictPolicy()

// Email trims surrounding space and lower-cases the address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name strips any markup, trims, and collapses inner runs of whitespace.
// Case is preserved. The sanitizer escapes entities, so they are decoded back
// to keep names like "O'Brien" intact.
func Name(s string) string {
	s = html.UnescapeString(strict.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// ObjectID parses a hex id from a path or query value. Malformed input
// reports false, which callers treat the same as a missing record.
func ObjectID(s string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
