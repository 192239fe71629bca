package parts

import (
	"regexp"
	"strings"

	"github.com/iyunix/go-visionai/internal/domain"
)

var (
	titleMarker = regexp.MustCompile(`<title>(.*?)</title>`)
	// stripping also removes markers that span lines
	titleMarkerDotAll = regexp.MustCompile(`(?s)<title>.*?</title>`)
)

// ExtractTitle returns the trimmed content of the first title marker in text.
func ExtractTitle(text string) (string, bool) {
	m := titleMarker.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	title := strings.TrimSpace(m[1])
	return title, title != ""
}

// DeriveTitle scans text parts in order and returns the first title marker found.
func DeriveTitle(ps domain.Parts) (string, bool) {
	for _, p := range ps {
		t, ok := p.(domain.TextPart)
		if !ok {
			continue
		}
		if title, ok := ExtractTitle(t.Text); ok {
			return title, true
		}
	}
	return "", false
}

// StripTitle removes every title marker from text and trims the result.
// Removal repeats until no marker is left, so StripTitle is idempotent even
// when removing one marker splices another together.
func StripTitle(text string) string {
	for {
		next := titleMarkerDotAll.ReplaceAllString(text, "")
		if next == text {
			return strings.TrimSpace(next)
		}
		text = next
	}
}
