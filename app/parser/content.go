package parser

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	originalSizeLabel = "Original Size"
	repackSizeLabel   = "Repack Size"
)

// sizePatterns are tried in order for each label; the first match wins.
// %s is replaced with the quoted label.
var sizePatterns = []string{
	// <strong>Label:</strong> <strong>45 GB</strong>
	`(?i)<strong>%s:</strong>\s*<strong>([^<]+)</strong>`,
	// Label: <strong>45 GB</strong>
	`(?i)%s:\s*<strong>([^<]+)</strong>`,
	// Label: 45 GB
	`(?i)%s:\s*([\d.,]+\s*(?:GB|MB|TB))`,
	// Label: <strong>from 10.5 GB</strong>
	`(?i)%s:\s*<strong>(from\s+[^<]+)</strong>`,
}

var (
	originalSizeMatchers = compileSizeMatchers(originalSizeLabel)
	repackSizeMatchers   = compileSizeMatchers(repackSizeLabel)

	selectiveSizePattern = regexp.MustCompile(`(?is)^from\s+(.+)$`)

	magnetPattern             = regexp.MustCompile(`(?i)magnet:\?xt=urn:btih:[a-zA-Z0-9]+[^"'\s<>]*`)
	magnetTrailingPunctuation = regexp.MustCompile(`[,;.]+$`)
)

// ParseContent pulls the size labels and the first magnet link out of a
// release content block. Missing sizes are reported as UnknownSize.
func ParseContent(html string) Content {
	return Content{
		OriginalSize: extractSize(html, originalSizeMatchers),
		RepackSize:   extractSize(html, repackSizeMatchers),
		MagnetURI:    extractMagnet(html),
	}
}

func compileSizeMatchers(label string) []*regexp.Regexp {
	matchers := make([]*regexp.Regexp, 0, len(sizePatterns))
	for _, pattern := range sizePatterns {
		matchers = append(matchers, regexp.MustCompile(fmt.Sprintf(pattern, regexp.QuoteMeta(label))))
	}
	return matchers
}

func extractSize(html string, matchers []*regexp.Regexp) string {
	for _, re := range matchers {
		m := re.FindStringSubmatch(html)
		if len(m) < 2 {
			continue
		}
		if value := strings.TrimSpace(m[1]); value != "" {
			return normalizeSize(value)
		}
	}
	return UnknownSize
}

func normalizeSize(size string) string {
	if m := selectiveSizePattern.FindStringSubmatch(size); m != nil {
		return "from " + m[1]
	}
	return size
}

func extractMagnet(html string) string {
	link := magnetPattern.FindString(html)
	if link == "" {
		return ""
	}
	link = strings.ReplaceAll(link, "&amp;", "&")
	return magnetTrailingPunctuation.ReplaceAllString(link, "")
}
