package element

import (
	"errors"
	"fmt"

	"github.com/bitdex/bitdex/bitvec"
)

/*
Package element pairs a bounded-length name with one flag vector. Elements are
constructed locally and persisted by the registry; the type itself carries no
storage behavior.
*/

////////////////////////////////////////////////////////////////////////////////

// MaxNameLen is the maximum element name length in bytes.
const MaxNameLen = 100

// ErrNameTooLong is returned when a name exceeds MaxNameLen bytes.
var ErrNameTooLong = errors.New("element name exceeds 100 bytes")

// Element is a named 4096-bit flag vector. An Element owns its vector
// exclusively.
type Element struct {
	name  string
	flags bitvec.Vector
}

// CheckName validates an element name without constructing an Element.
func CheckName(name string) error {
	if len(name) > MaxNameLen {
		return fmt.Errorf("name is %d bytes: %w", len(name), ErrNameTooLong)
	}
	return nil
}

// New constructs an element with all flags clear.
func New(name string) (*Element, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	return &Element{name: name}, nil
}

// SetName renames the element, subject to the same length bound.
func (e *Element) SetName(name string) error {
	if err := CheckName(name); err != nil {
		return err
	}
	e.name = name
	return nil
}

// Name returns the element name.
func (e *Element) Name() string {
	return e.name
}

// Flags returns the element's flag vector for mutation.
func (e *Element) Flags() *bitvec.Vector {
	return &e.flags
}
