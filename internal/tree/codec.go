package tree

import (
	"fmt"
	"strings"

	"github.com/marcus/mfx/internal/models"
)

// Favorite is one decoded favorites entry
type Favorite struct {
	Profile string
	Label   string
	Tag     models.ContextTag
}

// EncodeFavorite renders the persisted form "[profile]: label{base}"
func EncodeFavorite(profile, label string, tag models.ContextTag) string {
	return "[" + profile + "]: " + label + "{" + tag.Base + "}"
}

// DecodeFavorite parses a persisted favorites entry. The tag is returned in
// its favorite form.
func DecodeFavorite(line string) (Favorite, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[") {
		return Favorite{}, fmt.Errorf("favorite %q: missing profile", line)
	}
	end := strings.Index(line, "]: ")
	if end < 0 {
		return Favorite{}, fmt.Errorf("favorite %q: missing profile terminator", line)
	}
	profile := line[1:end]
	rest := line[end+3:]

	open := strings.LastIndex(rest, "{")
	if open < 0 || !strings.HasSuffix(rest, "}") {
		return Favorite{}, fmt.Errorf("favorite %q: missing context", line)
	}
	label := rest[:open]
	base := rest[open+1 : len(rest)-1]
	if profile == "" || label == "" || base == "" {
		return Favorite{}, fmt.Errorf("favorite %q: empty field", line)
	}
	return Favorite{
		Profile: profile,
		Label:   label,
		Tag:     models.ParseContextTag(base).AsFavorite(),
	}, nil
}
