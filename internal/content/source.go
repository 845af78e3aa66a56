package content

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// HomeSuffix marks a source file as a homepage sheet. The suffix is part of
// the file base name, not the subject slug: "Kotlin_home.xlsx" is the
// homepage sheet for subject "kotlin".
const HomeSuffix = "_home"

// Blog subjects publish under /blogs and carry no section data.
var blogSlugs = map[string]bool{
	"blog":  true,
	"blogs": true,
}

// SourceName describes how a source filename maps into the content model.
type SourceName struct {
	Base     string // file base name, extension and homepage suffix removed
	Slug     string
	Homepage bool
}

// ParseSourceName derives the subject slug and document kind from a source
// filename. The homepage suffix is matched case-insensitively and stripped
// before slugification.
func ParseSourceName(filename string) SourceName {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if n := len(base) - len(HomeSuffix); n > 0 && strings.EqualFold(base[n:], HomeSuffix) {
		base = base[:n]
		return SourceName{Base: base, Slug: Slugify(base), Homepage: true}
	}
	return SourceName{Base: base, Slug: Slugify(base)}
}

// ArtifactName returns the cache filename this source file's document is
// stored under.
func (n SourceName) ArtifactName() string {
	if n.Homepage {
		return n.Slug + HomeSuffix + ".json"
	}
	return n.Slug + ".json"
}

// IsBlogSlug reports whether a subject slug denotes the blog collection.
func IsBlogSlug(slug string) bool {
	return blogSlugs[slug]
}

// Classify reports the type discriminator of a raw artifact payload. A
// payload without a discriminator is a subject.
func Classify(data []byte) (string, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", fmt.Errorf("classify artifact: %w", err)
	}
	if probe.Type == TypeHomepage {
		return TypeHomepage, nil
	}
	return TypeSubject, nil
}
