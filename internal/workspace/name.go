package workspace

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lunacore/luna/internal/constants"
)

const maxNameLen = 64

//nolint:gochecknoglobals // Compiled once
var (
	// nameTokenRegex splits on Unicode word boundaries, so "café" is one
	// word and never yields "caf".
	nameTokenRegex = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]+`)
	nameWordRegex  = regexp.MustCompile(fmt.Sprintf(`^[a-z]{%d,}$`, constants.ProjectNameMinWordLen))
	nameCharRegex  = regexp.MustCompile(`[^a-z0-9_-]+`)
)

// ProjectName derives a project name from a brief: the first two words of
// three letters or more, lowercased and joined by an underscore. Briefs with
// fewer such words get the default name. Only plain ASCII words count.
func ProjectName(brief string) string {
	words := make([]string, 0, constants.ProjectNameWords)
	for _, tok := range nameTokenRegex.FindAllString(strings.ToLower(brief), -1) {
		if !nameWordRegex.MatchString(tok) {
			continue
		}
		if words = append(words, tok); len(words) == constants.ProjectNameWords {
			return strings.Join(words, "_")
		}
	}
	return constants.DefaultProjectName
}

// SanitizeName turns a user supplied name into a safe directory stem.
func SanitizeName(name string) string {
	s := nameCharRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	s = strings.Trim(s, "_-")
	if len(s) > maxNameLen {
		s = strings.TrimRight(s[:maxNameLen], "_-")
	}
	if s == "" {
		return constants.DefaultProjectName
	}
	return s
}
