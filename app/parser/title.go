package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// noiseSuffixes are stripped before add-on and version extraction, in order.
// They can carry separators that would otherwise be read as a version separator.
var noiseSuffixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*\+\s*Bonus\s+(?:Content|OSTs?|Soundtrack)s?\s*$`),
	regexp.MustCompile(`(?i)\s*\+\s*[\w\s]+Soundtrack\s*$`),
	regexp.MustCompile(`(?i)[,\s]+GOG\s+Build\s+[a-f0-9]+\s*$`),
}

var (
	addOnCountPattern = regexp.MustCompile(`(?i)\s*\+\s*(\d+)\s*DLCs?\s*$`)
	addOnAnyPattern   = regexp.MustCompile(`(?i)\s*\+\s*(?:All\s+)?DLCs?\s*$`)
)

// versionPatterns are tried in order and the first match wins. The title is
// cut at the start of the match, so anything after the version goes with it.
var versionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*[–\-,]\s*(v[\d.]+(?:\.\d+)*)`),
	regexp.MustCompile(`(?i)\s*[–\-,]\s*(Build\s*\d+)`),
	regexp.MustCompile(`\s*[–\-]\s*(\d+\.\d+(?:\.\d+)*)`),
}

// nameSuffixes clean up what is left once the version is gone, in order.
var nameSuffixes = []*regexp.Regexp{
	regexp.MustCompile(`[,\-–]+\s*$`),
	regexp.MustCompile(`(?i)\s+Bundle\s*$`),
	regexp.MustCompile(`(?i):\s*\d+-Year\s+Anniversary\s+Edition\s*$`),
}

// ParseTitle splits a release title into the game name, version and add-on
// information. It never fails: a title without markers comes back as its
// trimmed self.
func ParseTitle(title string) Title {
	working := strings.TrimSpace(title)
	var parsed Title

	for _, re := range noiseSuffixes {
		working = stripSuffix(working, re)
	}

	if loc := addOnCountPattern.FindStringSubmatchIndex(working); loc != nil {
		parsed.HasAddOns = true
		if count, err := strconv.Atoi(working[loc[2]:loc[3]]); err == nil {
			parsed.AddOnCount = &count
		}
		working = strings.TrimSpace(working[:loc[0]])
	} else if loc := addOnAnyPattern.FindStringIndex(working); loc != nil {
		parsed.HasAddOns = true
		working = strings.TrimSpace(working[:loc[0]])
	}

	parsed.Version, working = extractVersion(working)

	for _, re := range nameSuffixes {
		working = stripSuffix(working, re)
	}

	parsed.Name = working
	return parsed
}

func extractVersion(title string) (string, string) {
	for _, re := range versionPatterns {
		loc := re.FindStringSubmatchIndex(title)
		if loc == nil || loc[2] < 0 {
			continue
		}
		return title[loc[2]:loc[3]], strings.TrimSpace(title[:loc[0]])
	}
	return "", title
}

func stripSuffix(s string, re *regexp.Regexp) string {
	return strings.TrimSpace(re.ReplaceAllString(s, ""))
}
