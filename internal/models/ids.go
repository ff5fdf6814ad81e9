package models

import (
	"slices"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/datatypes"

	"taskroom/internal/apperrors"
)

// IDList is an ordered collection of entity ids stored as a JSON column.
type IDList = datatypes.JSONSlice[string]

// NewID returns a new 24-character hex identifier.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id is a well-formed identifier.
func IsValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// ParseID checks that value is a well-formed identifier for the given path.
func ParseID(value, path string) error {
	if _, err := primitive.ObjectIDFromHex(value); err != nil {
		return apperrors.Cast("Cast to ObjectId failed for value %q at path %q", value, path)
	}
	return nil
}

// ParseIDs checks every element of values with ParseID.
func ParseIDs(values []string, path string) error {
	for _, v := range values {
		if err := ParseID(v, path); err != nil {
			return err
		}
	}
	return nil
}

// HasID reports whether list contains id.
func HasID(list IDList, id string) bool {
	return slices.Contains(list, id)
}

// AddID appends id unless it is already present.
func AddID(list IDList, id string) IDList {
	if HasID(list, id) {
		return list
	}
	return append(list, id)
}

// RemoveID drops every occurrence of id.
func RemoveID(list IDList, id string) IDList {
	out := make(IDList, 0, len(list))
	for _, v := range list {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Dedupe keeps the first occurrence of every id, preserving order.
func Dedupe(ids []string) IDList {
	out := make(IDList, 0, len(ids))
	for _, id := range ids {
		out = AddID(out, id)
	}
	return out
}

// Difference returns the ids in a that are not in b, in a's order.
func Difference(a, b IDList) IDList {
	out := IDList{}
	for _, id := range a {
		if !HasID(b, id) {
			out = append(out, id)
		}
	}
	return out
}

// CopyIDs returns a non-nil copy of list.
func CopyIDs(list IDList) IDList {
	out := make(IDList, len(list))
	copy(out, list)
	return out
}
