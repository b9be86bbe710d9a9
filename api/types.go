package api

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/atelier-studio/atelier-backend/models"
	"github.com/atelier-studio/atelier-backend/services"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler projectHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string `json:"error"`
	Status  string `json:"status"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// Pagination is the envelope list endpoints return alongside items.
type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
}

func newPagination(page PagedTotals) Pagination {
	pages := 0
	if page.Limit > 0 {
		pages = int(math.Ceil(float64(page.Total) / float64(page.Limit)))
	}
	return Pagination{Current: page.Page, Pages: pages, Total: page.Total}
}

// PagedTotals carries the page math needed for the envelope.
type PagedTotals struct {
	Page  int
	Limit int
	Total int64
}

// projectListResponse is the shape of list endpoints.
type projectListResponse struct {
	Items      []projectView `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

// projectMutationResponse is the shape of create/update responses.
type projectMutationResponse struct {
	Message string      `json:"message"`
	Project projectView `json:"project"`
}

// projectView is the serialized form of a project record. Public paths strip
// the owner identity; admin paths and the public detail view (when
// configured) include the owner summary.
type projectView struct {
	ID               uuid.UUID            `json:"id"`
	Title            string               `json:"title"`
	Slug             string               `json:"slug"`
	Description      string               `json:"description"`
	ShortDescription string               `json:"shortDescription"`
	Category         string               `json:"category"`
	Technologies     []string             `json:"technologies"`
	Images           []models.ImageRef    `json:"images"`
	FeaturedImage    string               `json:"featuredImage"`
	Client           string               `json:"client,omitempty"`
	Year             int                  `json:"year"`
	Status           string               `json:"status"`
	Featured         bool                 `json:"featured"`
	Testimonial      *models.Testimonial  `json:"testimonial,omitempty"`
	CreatedBy        string               `json:"createdBy,omitempty"`
	Owner            *models.OwnerSummary `json:"owner,omitempty"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// publicProjectView strips the owner identity entirely.
func publicProjectView(p models.Project) projectView {
	view := baseProjectView(p)
	return view
}

// ownerProjectView includes createdBy, plus the owner summary when loaded
// and permitted.
func ownerProjectView(p models.Project, includeOwner bool) projectView {
	view := baseProjectView(p)
	view.CreatedBy = p.CreatedBy.String()
	if includeOwner && p.Owner != nil {
		summary := p.Owner.Summary()
		view.Owner = &summary
	}
	return view
}

func baseProjectView(p models.Project) projectView {
	view := projectView{
		ID:               p.ID,
		Title:            p.Title,
		Slug:             p.Slug,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Category:         p.Category,
		Technologies:     p.Technologies,
		Images:           p.Images,
		FeaturedImage:    p.FeaturedImage,
		Client:           p.Client,
		Year:             p.Year,
		Status:           p.Status,
		Featured:         p.Featured,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if view.Technologies == nil {
		view.Technologies = []string{}
	}
	if view.Images == nil {
		view.Images = []models.ImageRef{}
	}
	if p.Testimonial != nil {
		t := p.Testimonial.Data()
		view.Testimonial = &t
	}
	return view
}

func publicProjectViews(page services.PagedProjects) []projectView {
	views := make([]projectView, 0, len(page.Projects))
	for _, p := range page.Projects {
		views = append(views, publicProjectView(p))
	}
	return views
}

func ownerProjectViews(page services.PagedProjects) []projectView {
	views := make([]projectView, 0, len(page.Projects))
	for _, p := range page.Projects {
		views = append(views, ownerProjectView(p, true))
	}
	return views
}
