package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project statuses. Only published projects are visible on public read paths.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Categories is the fixed set of valid project categories.
var Categories = []string{"Branding", "Digital", "Print", "Art Direction", "Web Design"}

// ImageRef points at a stored image blob by URL.
type ImageRef struct {
	URL     string `json:"url"`
	Alt     string `json:"alt"`
	Caption string `json:"caption,omitempty"`
}

// Testimonial is an optional client quote attached to a project.
type Testimonial struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Quote string `json:"quote"`
	Image string `json:"image,omitempty"`
}

// Project represents a single case study in the catalog.
type Project struct {
	ID               uuid.UUID                        `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title            string                           `json:"title" db:"title" gorm:"type:text;not null"`
	Slug             string                           `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex:idx_projects_slug"`
	Description      string                           `json:"description" db:"description" gorm:"type:text;not null"`
	ShortDescription string                           `json:"shortDescription" db:"short_description" gorm:"type:text;not null"`
	Category         string                           `json:"category" db:"category" gorm:"type:text;not null;index:idx_projects_category"`
	Technologies     datatypes.JSONSlice[string]      `json:"technologies" db:"technologies"`
	Images           datatypes.JSONSlice[ImageRef]    `json:"images" db:"images"`
	FeaturedImage    string                           `json:"featuredImage" db:"featured_image" gorm:"type:text"`
	Client           string                           `json:"client,omitempty" db:"client" gorm:"type:text"`
	Year             int                              `json:"year" db:"year" gorm:"not null"`
	Status           string                           `json:"status" db:"status" gorm:"type:text;not null;default:draft;index:idx_projects_status"`
	Featured         bool                             `json:"featured" db:"featured" gorm:"not null;default:false;index:idx_projects_featured"`
	Testimonial      *datatypes.JSONType[Testimonial] `json:"testimonial,omitempty" db:"testimonial"`
	CreatedBy        uuid.UUID                        `json:"createdBy" db:"created_by" gorm:"type:uuid;not null;index:idx_projects_created_by"`
	CreatedAt        time.Time                        `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time                        `json:"updatedAt" db:"updated_at"`

	Owner *User `json:"owner,omitempty" gorm:"foreignKey:CreatedBy;references:ID"`
}

// BeforeCreate assigns the ID app-side so postgres and sqlite behave the same.
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

var slugInvalidRunes = regexp.MustCompile(`[^a-z0-9]+`)
var slugEdgeHyphens = regexp.MustCompile(`(^-|-$)`)

// Slugify derives the URL-safe slug for a title: lowercase, runs of anything
// outside [a-z0-9] collapse to a single hyphen, edge hyphens stripped.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugInvalidRunes.ReplaceAllString(slug, "-")
	slug = slugEdgeHyphens.ReplaceAllString(slug, "")
	return slug
}

// IsValidCategory reports whether category is one of the fixed set.
func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether status is draft or published.
func IsValidStatus(status string) bool {
	return status == StatusDraft || status == StatusPublished
}

// SplitTechnologies turns the comma-separated form value into trimmed tags,
// preserving order and dropping empties.
func SplitTechnologies(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
