package content

import "time"

// Artifact type discriminators. Artifacts written before the discriminator
// existed carry no type field and are treated as subjects.
const (
	TypeSubject  = "subject"
	TypeHomepage = "homepage"
)

// ContentItem is one publishable page inside a subject.
type ContentItem struct {
	ID             int       `json:"id"`
	Type           string    `json:"type,omitempty"`
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	Content        string    `json:"content"`
	Keywords       string    `json:"keywords,omitempty"`
	TitleTag       string    `json:"titleTag,omitempty"`
	DescriptionTag string    `json:"descriptionTag,omitempty"`
	ShortDesc      string    `json:"shortDesc,omitempty"`
	Section        string    `json:"section,omitempty"`
	LastModified   time.Time `json:"lastModified"`
}

// Subject groups the content items of one source file under a shared URL
// prefix. Blog subjects carry no section data at all.
type Subject struct {
	Type           string        `json:"type"`
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	BaseURL        string        `json:"base_url"`
	TitleTag       string        `json:"titleTag,omitempty"`
	DescriptionTag string        `json:"descriptionTag,omitempty"`
	TotalPages     int           `json:"totalPages"`
	Sections       []string      `json:"sections,omitempty"`
	Content        []ContentItem `json:"content"`
}

// ArtifactName returns the cache filename for this subject.
func (s *Subject) ArtifactName() string {
	return s.ID + ".json"
}

// TutorialLink is a single titled link inside a homepage section.
type TutorialLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// HomepageSection is a named group of tutorial links.
type HomepageSection struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Tutorials   []TutorialLink `json:"tutorials"`
}

// Homepage is the landing-page document for a subject.
type Homepage struct {
	Type      string            `json:"type"`
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	ShortDesc string            `json:"shortDesc,omitempty"`
	Sections  []HomepageSection `json:"sections"`
}

// ArtifactName returns the cache filename for this homepage document.
func (h *Homepage) ArtifactName() string {
	return h.ID + HomeSuffix + ".json"
}

// TutorialCount returns the number of links across all sections.
func (h *Homepage) TutorialCount() int {
	n := 0
	for _, sec := range h.Sections {
		n += len(sec.Tutorials)
	}
	return n
}

// SubjectSummary is the manifest view of one subject artifact.
type SubjectSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	BaseURL  string `json:"base_url"`
	Pages    int    `json:"pages"`
	Sections int    `json:"sections"`
}

// HomepageSummary is the manifest view of one homepage artifact.
type HomepageSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Sections  int    `json:"sections"`
	Tutorials int    `json:"tutorials"`
}

// Manifest is the site-wide index rebuilt from scratch on every run. It is
// always written after every other artifact so a manifest on disk never
// references content that is not there yet.
type Manifest struct {
	BuildID        string            `json:"buildId"`
	GeneratedAt    time.Time         `json:"generatedAt"`
	TotalSubjects  int               `json:"totalSubjects"`
	TotalHomepages int               `json:"totalHomepages"`
	TotalPages     int               `json:"totalPages"`
	Subjects       []SubjectSummary  `json:"subjects"`
	Homepages      []HomepageSummary `json:"homepages"`
}
