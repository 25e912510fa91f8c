// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is an opaque identifier for campaigns and content items
type ID string

// Empty is the zero ID
var Empty = ID("")

// New generates a new random ID
func New() ID {
	return ID(uuid.NewString())
}

// Parse validates and returns an ID from a string
func Parse(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Empty, fmt.Errorf("invalid ID %q: %w", s, err)
	}
	return ID(u.String()), nil
}

// String returns the string representation of the ID
func (id ID) String() string {
	return string(id)
}

// IsEmpty returns true if the ID is unset
func (id ID) IsEmpty() bool {
	return id == Empty
}
