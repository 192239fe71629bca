// File: internal/services/chat/sources.go
package chat

import (
    "strings"
    "unicode/utf8"

    "github.com/iyunix/go-visionai/internal/domain"
)

const maxSourceDescription = 200

// SourceExtractor collects citation records from tool results for one request.
type SourceExtractor struct {
    config *Config
    logger Logger
    seen   map[string]bool
    count  int
}

func NewSourceExtractor(config *Config, logger Logger) *SourceExtractor {
    return &SourceExtractor{
        config: config,
        logger: logger,
        seen:   make(map[string]bool),
    }
}

// ExtractSources returns the sources not yet seen in this request. A positive
// MaxSources caps the total.
func (s *SourceExtractor) ExtractSources(in []domain.Source) []domain.Source {
    if !s.config.EnableSources {
        return nil
    }

    var out []domain.Source
    for _, src := range in {
        url := strings.TrimSpace(src.URL)
        if url == "" || s.seen[url] {
            continue
        }
        if s.config.MaxSources > 0 && s.count >= s.config.MaxSources {
            break
        }
        s.seen[url] = true
        s.count++

        src.URL = url
        src.Title = strings.TrimSpace(src.Title)
        if src.Title == "" {
            src.Title = url
        }
        src.Description = truncateText(cleanWhitespace(src.Description), maxSourceDescription)
        out = append(out, src)
    }

    if len(out) > 0 {
        s.logger.Debug("sources extracted", "new_sources", len(out), "total_sources", s.count)
    }
    return out
}

// truncateText cuts to maxLen runes without splitting a character.
func truncateText(input string, maxLen int) string {
    if input == "" || maxLen <= 0 {
        return ""
    }
    if utf8.RuneCountInString(input) <= maxLen {
        return input
    }

    var b strings.Builder
    count := 0
    for _, r := range input {
        if count >= maxLen {
            break
        }
        b.WriteRune(r)
        count++
    }
    return strings.TrimSpace(b.String()) + "..."
}

func cleanWhitespace(input string) string {
    return strings.Join(strings.Fields(input), " ")
}
