package valueobjects

import "fmt"

// SourceStatus is the lifecycle state of a source
type SourceStatus string

const (
	SourceProcessing SourceStatus = "processing"
	SourceIndexed    SourceStatus = "indexed"
	SourceError      SourceStatus = "error"
)

// IsTerminal reports whether no further transition is allowed
func (s SourceStatus) IsTerminal() bool {
	return s == SourceIndexed || s == SourceError
}

// ParseSourceStatus validates a status string
func ParseSourceStatus(s string) (SourceStatus, error) {
	switch SourceStatus(s) {
	case SourceProcessing, SourceIndexed, SourceError:
		return SourceStatus(s), nil
	}
	return "", fmt.Errorf("unknown source status %q", s)
}

// SourceKind records what the user asked to ingest
type SourceKind string

const (
	SourceKindFile    SourceKind = "file"
	SourceKindVideo   SourceKind = "video"
	SourceKindWebsite SourceKind = "website"
)

// IsURL reports whether the source is fetched from an address
func (k SourceKind) IsURL() bool {
	return k == SourceKindVideo || k == SourceKindWebsite
}

// ParseSourceKind validates a kind string
func ParseSourceKind(s string) (SourceKind, error) {
	switch SourceKind(s) {
	case SourceKindFile, SourceKindVideo, SourceKindWebsite:
		return SourceKind(s), nil
	}
	return "", fmt.Errorf("unknown source kind %q", s)
}

// Role identifies the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// NodeType classifies mind map nodes
type NodeType string

const (
	NodeTypeSource  NodeType = "source"
	NodeTypeConcept NodeType = "concept"
)
