package urlstrategy

import (
	"fmt"
)

// URLStrategyType represents the type of URL strategy
type URLStrategyType string

const (
	// Prefix strategy for files served by the application below a media path
	StrategyTypePrefix URLStrategyType = "prefix"

	// CDN strategy for direct CDN URLs
	StrategyTypeCDN URLStrategyType = "cdn"

	// Content-based strategy for URLs routed through the API by file ID
	StrategyTypeContentBased URLStrategyType = "content-based"

	// Signed strategy for presigned object storage URLs
	StrategyTypeSigned URLStrategyType = "s3"
)

// Config holds configuration for URL strategy creation
type Config struct {
	Type       URLStrategyType
	MediaURL   string // For prefix strategy
	CDNBaseURL string // For CDN strategy
	Version    string // For CDN strategy cache busting
	APIBaseURL string // For content-based strategy
	Signer     Signer // For signed strategy
	KeyPrefix  string // For signed strategy
}

// NewURLStrategy creates a URL strategy based on the configuration
func NewURLStrategy(config Config) (URLStrategy, error) {
	switch config.Type {
	case StrategyTypePrefix, "":
		if config.MediaURL == "" {
			return NewDefaultStrategy(), nil
		}
		return NewPrefixStrategy(config.MediaURL), nil

	case StrategyTypeCDN:
		if config.CDNBaseURL == "" {
			return nil, fmt.Errorf("CDN base URL is required for CDN strategy")
		}
		s := NewCDNStrategy(config.CDNBaseURL)
		s.Version = config.Version
		return s, nil

	case StrategyTypeContentBased:
		if config.APIBaseURL == "" {
			return nil, fmt.Errorf("API base URL is required for content-based strategy")
		}
		return NewContentBasedStrategy(config.APIBaseURL), nil

	case StrategyTypeSigned:
		if config.Signer == nil {
			return nil, fmt.Errorf("signer is required for s3 strategy")
		}
		return NewSignedStrategy(config.Signer, config.KeyPrefix), nil

	default:
		return nil, fmt.Errorf("unknown URL strategy type: %s", config.Type)
	}
}

// NewDefaultStrategy serves files below "/media".
func NewDefaultStrategy() URLStrategy {
	return NewPrefixStrategy("/media")
}
