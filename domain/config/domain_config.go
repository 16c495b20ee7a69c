package config

// Media types accepted for file uploads
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeText = "text/plain"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// DomainConfig holds the configurable notebook rules
type DomainConfig struct {
	// Project defaults
	DefaultProjectName    string
	DefaultConversationID string
	PlaceholderSummary    string

	// Source rules
	PlaceholderContent string
	DefaultPage        int
	AllowedMediaTypes  []string
	MaxUploadBytes     int64
	MaxSourcesPerProj  int

	// Conversation rules
	MaxMessageLength int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		DefaultProjectName:    "Untitled Project",
		DefaultConversationID: "conv_1",
		PlaceholderSummary:    "No summary generated yet. Add sources to get started.",

		PlaceholderContent: "Content is being extracted...",
		DefaultPage:        1,
		AllowedMediaTypes:  []string{MediaTypePDF, MediaTypeText, MediaTypeDOCX},
		MaxUploadBytes:     20 << 20,
		MaxSourcesPerProj:  0, // unlimited

		MaxMessageLength: 8000,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()
	config.MaxSourcesPerProj = 200
	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()
	config.MaxMessageLength = 32000
	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// IsAllowedMediaType reports whether uploads of this media type are accepted
func (c *DomainConfig) IsAllowedMediaType(mediaType string) bool {
	for _, allowed := range c.AllowedMediaTypes {
		if allowed == mediaType {
			return true
		}
	}
	return false
}

// IsPlaceholderSummary reports whether a summary carries no generated text
func (c *DomainConfig) IsPlaceholderSummary(summary string) bool {
	return summary == "" || summary == c.PlaceholderSummary
}
