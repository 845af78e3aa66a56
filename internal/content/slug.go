package content

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxSlugLen caps slug length so derived filenames and URLs stay sane.
const maxSlugLen = 80

var (
	separatorRun  = regexp.MustCompile(`[\s_]+`)
	invalidSlugCh = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
)

// Slugify converts free text into a URL-safe identifier: lowercase, with
// whitespace and underscore runs collapsed to single hyphens and every
// other non-alphanumeric character removed. Applying Slugify to its own
// output returns the input unchanged.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = separatorRun.ReplaceAllString(s, "-")
	s = invalidSlugCh.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	// Safe to cut by byte: only ASCII survives the replacements above.
	if len(s) > maxSlugLen {
		s = s[:maxSlugLen]
	}
	return strings.Trim(s, "-")
}

// DisplayName derives a human-readable name from a source file base name,
// e.g. "jetpack_compose" becomes "Jetpack Compose".
func DisplayName(base string) string {
	name := strings.NewReplacer("_", " ", "-", " ").Replace(base)
	name = strings.Join(strings.Fields(name), " ")
	return cases.Title(language.English).String(name)
}
