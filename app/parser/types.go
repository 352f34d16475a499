package parser

// UnknownSize is reported when a size label is missing from the content.
const UnknownSize = "Unknown"

// Title holds the fields recovered from a release title.
type Title struct {
	Name       string
	Version    string // empty when the title carries no version
	HasAddOns  bool
	AddOnCount *int // nil when the count is not stated
}

// Content holds the fields recovered from a release content block.
type Content struct {
	OriginalSize string
	RepackSize   string
	MagnetURI    string // empty when no magnet link is present
}
