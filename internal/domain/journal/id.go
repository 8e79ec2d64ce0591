package journal

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewID mints a 24-hex identifier for a new feeling.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ParseID validates the 24-hex format and returns the canonical lowercase form.
// Surrounding whitespace is not tolerated.
func ParseID(raw string) (string, bool) {
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return "", false
	}
	return oid.Hex(), true
}

func IsValidID(raw string) bool {
	_, ok := ParseID(raw)
	return ok
}
