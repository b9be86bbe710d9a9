package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/atelier-studio/atelier-backend/errs"
	"github.com/atelier-studio/atelier-backend/services"
)

type projectHandler struct {
	responder       Responder
	logger          zerolog.Logger
	catalog         *services.Catalog
	exposeOwner     bool
	maxRequestBytes int64
}

func newProjectHandler(catalog *services.Catalog, exposeOwner bool, maxRequestBytes int64) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:       NewResponder(logger),
		logger:          logger,
		catalog:         catalog,
		exposeOwner:     exposeOwner,
		maxRequestBytes: maxRequestBytes,
	}
}

// getPublishedProjects lists published projects for the public site. The
// owner identity is stripped from every item.
func (h projectHandler) getPublishedProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		filter := services.PublicFilter{Category: query.Get("category")}
		if query.Get("featured") == "true" {
			featured := true
			filter.Featured = &featured
		}

		page, err := h.catalog.ListPublished(r.Context(), filter, pageRequest(query.Get("page"), query.Get("limit")))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, projectListResponse{
			Items:      publicProjectViews(page),
			Pagination: newPagination(PagedTotals{Page: page.Page, Limit: page.Limit, Total: page.Total}),
		})
	}
}

// getPublishedProject returns a single published project by slug. The owner
// summary rides along only when EXPOSE_OWNER_ON_DETAIL allows it.
func (h projectHandler) getPublishedProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing slug"))
			return
		}

		project, err := h.catalog.GetPublishedBySlug(r.Context(), slug)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		view := ownerProjectView(*project, h.exposeOwner)
		if !h.exposeOwner {
			view = publicProjectView(*project)
		}

		h.responder.WriteJSON(w, map[string]interface{}{"project": view})
	}
}

// getOwnedProjects lists the caller's projects regardless of status.
func (h projectHandler) getOwnedProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		query := r.URL.Query()
		filter := services.OwnedFilter{
			Status:   query.Get("status"),
			Category: query.Get("category"),
		}

		page, err := h.catalog.ListOwned(r.Context(), uid, filter, pageRequest(query.Get("page"), query.Get("limit")))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, projectListResponse{
			Items:      ownerProjectViews(page),
			Pagination: newPagination(PagedTotals{Page: page.Page, Limit: page.Limit, Total: page.Total}),
		})
	}
}

// getOwnedProject returns a single record for edit-form prefill. A record
// owned by someone else reads as not found.
func (h projectHandler) getOwnedProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		projectID, apiErr := parseProjectID(r)
		if apiErr != nil {
			h.responder.WriteError(w, apiErr)
			return
		}

		project, err := h.catalog.GetOwnedByID(r.Context(), uid, projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, ownerProjectView(*project, true))
	}
}

// createProject handles the multipart create form, including image uploads.
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		form, err := parseProjectForm(r, h.maxRequestBytes)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		input := services.ProjectInput{
			Title:            form.value("title"),
			Description:      form.value("description"),
			ShortDescription: form.value("shortDescription"),
			Category:         form.value("category"),
			Technologies:     form.value("technologies"),
			Client:           form.value("client"),
			Status:           form.value("status"),
			Featured:         form.boolValue("featured"),
		}

		// A non-numeric year still goes through the service so its violation
		// is reported batched with the other field checks. The zero value
		// fails the range validation; the message is rewritten below.
		year, convErr := form.intValue("year")
		badYear := convErr != nil && form.value("year") != ""
		input.Year = year

		uploads, closeFiles, err := form.uploads()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer closeFiles()

		project, err := h.catalog.Create(r.Context(), uid, input, uploads)
		if err != nil {
			if badYear {
				err = markYearNotInteger(err)
			}
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, projectMutationResponse{
			Message: "Project created successfully",
			Project: ownerProjectView(*project, true),
		})
	}
}

// updateProject applies a partial multipart edit: any subset of the create
// fields, plus existingImages (urls to keep), removedImages (urls to drop),
// and images (new files).
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		projectID, apiErr := parseProjectID(r)
		if apiErr != nil {
			h.responder.WriteError(w, apiErr)
			return
		}

		form, err := parseProjectForm(r, h.maxRequestBytes)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		input := services.ProjectUpdate{
			Title:            form.stringPtr("title"),
			Description:      form.stringPtr("description"),
			ShortDescription: form.stringPtr("shortDescription"),
			Category:         form.stringPtr("category"),
			Technologies:     form.stringPtr("technologies"),
			Client:           form.stringPtr("client"),
			Status:           form.stringPtr("status"),
			Featured:         form.boolPtr("featured"),
		}

		badYear := false
		if form.has("year") {
			year, convErr := form.intValue("year")
			if convErr != nil {
				badYear = true
				year = 0
			}
			input.Year = &year
		}

		uploads, closeFiles, err := form.uploads()
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer closeFiles()

		project, err := h.catalog.Update(r.Context(), uid, projectID, input, uploads,
			form.list("existingImages"), form.list("removedImages"))
		if err != nil {
			if badYear {
				err = markYearNotInteger(err)
			}
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, projectMutationResponse{
			Message: "Project updated successfully",
			Project: ownerProjectView(*project, true),
		})
	}
}

// deleteProject removes the record and releases its blobs.
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := ctxGetUserID(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		projectID, apiErr := parseProjectID(r)
		if apiErr != nil {
			h.responder.WriteError(w, apiErr)
			return
		}

		if err := h.catalog.Delete(r.Context(), uid, projectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, map[string]string{
			"message": "Project deleted successfully",
		})
	}
}

// markYearNotInteger rewrites the year violation when the form carried a
// non-numeric value, so the client sees the coercion failure rather than the
// range check the placeholder zero tripped.
func markYearNotInteger(err error) error {
	var ve *errs.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	for i := range ve.Fields {
		if ve.Fields[i].Field == "year" {
			ve.Fields[i].Message = "must be an integer"
		}
	}
	return ve
}

func parseProjectID(r *http.Request) (uuid.UUID, *errs.ApiErr) {
	projectIDStr := chi.URLParam(r, "projectID")
	if projectIDStr == "" {
		return uuid.Nil, errs.NewBadRequestError("missing projectID")
	}
	projectID, err := uuid.Parse(projectIDStr)
	if err != nil {
		return uuid.Nil, errs.NewBadRequestError("invalid projectID")
	}
	return projectID, nil
}

// pageRequest clamps query-string pagination; non-numeric input falls back
// to the defaults.
func pageRequest(pageStr, limitStr string) services.PageRequest {
	page, _ := strconv.Atoi(pageStr)
	limit, _ := strconv.Atoi(limitStr)
	return services.PageRequest{Page: page, Limit: limit}
}
