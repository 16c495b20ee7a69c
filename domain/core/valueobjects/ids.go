package valueobjects

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Identifier prefixes
const (
	ProjectIDPrefix = "proj_"
	SourceIDPrefix  = "src_"
)

var lastStamp atomic.Int64

// parseID trims id and checks it carries prefix followed by at least one
// character.
func parseID(id, prefix, what string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New(what + " ID cannot be empty")
	}
	if !strings.HasPrefix(id, prefix) || len(id) == len(prefix) {
		return "", fmt.Errorf("%s ID %q must start with %q", what, id, prefix)
	}
	return id, nil
}

// nextStamp returns a millisecond timestamp that is strictly increasing
// across the process, so ids minted in the same millisecond stay distinct.
func nextStamp() int64 {
	for {
		now := time.Now().UnixMilli()
		last := lastStamp.Load()
		if now <= last {
			now = last + 1
		}
		if lastStamp.CompareAndSwap(last, now) {
			return now
		}
	}
}

// ProjectID is a value object representing a unique project identifier
type ProjectID struct {
	value string
}

// NewProjectID mints a new "proj_<millis>" identifier
func NewProjectID() ProjectID {
	return ProjectID{value: ProjectIDPrefix + strconv.FormatInt(nextStamp(), 10)}
}

// NewProjectIDFromString creates a ProjectID from an existing "proj_" string
func NewProjectIDFromString(id string) (ProjectID, error) {
	v, err := parseID(id, ProjectIDPrefix, "project")
	if err != nil {
		return ProjectID{}, err
	}
	return ProjectID{value: v}, nil
}

// String returns the string representation of the ProjectID
func (id ProjectID) String() string { return id.value }

// Equals checks if two ProjectIDs are equal
func (id ProjectID) Equals(other ProjectID) bool { return id.value == other.value }

// IsZero checks if the ProjectID is the zero value
func (id ProjectID) IsZero() bool { return id.value == "" }

// MarshalText implements encoding.TextMarshaler
func (id ProjectID) MarshalText() ([]byte, error) { return []byte(id.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler
func (id *ProjectID) UnmarshalText(data []byte) error {
	id.value = string(data)
	return nil
}

// SourceID is a value object representing a unique source identifier
type SourceID struct {
	value string
}

// NewSourceID mints a new "src_<millis>" identifier
func NewSourceID() SourceID {
	return SourceID{value: SourceIDPrefix + strconv.FormatInt(nextStamp(), 10)}
}

// NewSourceIDFromString creates a SourceID from an existing "src_" string
func NewSourceIDFromString(id string) (SourceID, error) {
	v, err := parseID(id, SourceIDPrefix, "source")
	if err != nil {
		return SourceID{}, err
	}
	return SourceID{value: v}, nil
}

// String returns the string representation of the SourceID
func (id SourceID) String() string { return id.value }

// Equals checks if two SourceIDs are equal
func (id SourceID) Equals(other SourceID) bool { return id.value == other.value }

// IsZero checks if the SourceID is the zero value
func (id SourceID) IsZero() bool { return id.value == "" }

// MarshalText implements encoding.TextMarshaler
func (id SourceID) MarshalText() ([]byte, error) { return []byte(id.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler
func (id *SourceID) UnmarshalText(data []byte) error {
	id.value = string(data)
	return nil
}
