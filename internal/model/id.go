package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewID returns a fresh document identifier in its 24-character hex form.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ParseID validates a client-supplied identifier. Malformed values fail with ErrInvalidID.
func ParseID(id string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", ErrInvalidID
	}
	return oid.Hex(), nil
}

// IsValidID reports whether id is a well-formed document identifier.
func IsValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// FilterValidIDs drops malformed identifiers and normalises the rest,
// keeping their order and duplicates.
func FilterValidIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if normalised, err := ParseID(id); err == nil {
			valid = append(valid, normalised)
		}
	}
	return valid
}
