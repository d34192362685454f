package asset

import (
	"bytes"

	"github.com/google/uuid"
)

// ID identifies an asset. The zero value is the nil ID.
type ID uuid.UUID

// NilID is the zero ID. It never refers to a stored asset.
var NilID ID

// namespace for name-based IDs.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/gogpu/sprite/asset"))

// NewID returns a new random ID.
func NewID() ID {
	return ID(uuid.New())
}

// IDFromName returns a deterministic ID for name (typically a file path).
// The same name always yields the same ID.
func IDFromName(name string) ID {
	return ID(uuid.NewSHA1(namespace, []byte(name)))
}

// ParseID parses the canonical string form of an ID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NilID, err
	}
	return ID(u), nil
}

// IsNil reports whether id is the nil ID.
func (id ID) IsNil() bool {
	return id == NilID
}

// Compare returns -1, 0 or +1 ordering IDs by their bytes.
// Used as a total order for sort keys.
func (id ID) Compare(other ID) int {
	return bytes.Compare(id[:], other[:])
}

// String returns the canonical UUID string.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// Bytes returns the raw 16 bytes.
func (id ID) Bytes() [16]byte {
	return id
}
