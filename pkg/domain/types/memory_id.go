package types

import "strconv"

// MemoryID identifies a persisted memory. It is assigned by the repository
// on create and immutable afterwards.
type MemoryID int64

// Int64 returns the raw integer value of the ID.
func (id MemoryID) Int64() int64 {
	return int64(id)
}

// String returns the decimal representation of the ID.
func (id MemoryID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseMemoryID parses a decimal string into a MemoryID.
func ParseMemoryID(s string) (MemoryID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return MemoryID(v), nil
}
