package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"github.com/atelier-studio/atelier-backend/database"
	"github.com/atelier-studio/atelier-backend/errs"
	"github.com/atelier-studio/atelier-backend/models"
	"github.com/atelier-studio/atelier-backend/storage"
)

// MaxImagesPerRequest caps how many files a single create/update may carry.
const MaxImagesPerRequest = 10

// Catalog owns the project lifecycle: validation, slug derivation, image-set
// reconciliation, ownership enforcement, and blob bookkeeping against the
// image store.
type Catalog struct {
	projects *database.ProjectRepo
	store    storage.ImageStore
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewCatalog(projects *database.ProjectRepo, store storage.ImageStore) *Catalog {
	return &Catalog{
		projects: projects,
		store:    store,
		validate: newValidator(),
		logger:   log.With().Str("service", "catalog").Logger(),
	}
}

// PageRequest is 1-based pagination input, clamped by normalize.
type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) normalize() (page, limit, offset int) {
	page = p.Page
	if page < 1 {
		page = 1
	}
	limit = p.Limit
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit, (page - 1) * limit
}

// PagedProjects bundles one page of results with the total match count.
type PagedProjects struct {
	Projects []models.Project
	Total    int64
	Page     int
	Limit    int
}

// PublicFilter narrows the public listing.
type PublicFilter struct {
	Category string
	Featured *bool
}

// OwnedFilter narrows the admin listing.
type OwnedFilter struct {
	Status   string
	Category string
}

// ListPublished returns published projects only, newest first.
func (s *Catalog) ListPublished(ctx context.Context, filter PublicFilter, pr PageRequest) (PagedProjects, error) {
	page, limit, offset := pr.normalize()
	projects, total, err := s.projects.FindPublished(database.ProjectFilter{
		Category: filter.Category,
		Featured: filter.Featured,
	}, offset, limit)
	if err != nil {
		return PagedProjects{}, errs.NewDatabaseError("find", "projects", err)
	}
	return PagedProjects{Projects: projects, Total: total, Page: page, Limit: limit}, nil
}

// GetPublishedBySlug returns the published project with the given slug.
func (s *Catalog) GetPublishedBySlug(ctx context.Context, slug string) (*models.Project, error) {
	project, err := s.projects.FindPublishedBySlug(slug)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return nil, errs.NewNotFound("project")
	}
	return project, nil
}

// ListOwned returns the caller's projects regardless of status.
func (s *Catalog) ListOwned(ctx context.Context, uid uuid.UUID, filter OwnedFilter, pr PageRequest) (PagedProjects, error) {
	page, limit, offset := pr.normalize()
	projects, total, err := s.projects.FindByOwner(uid, database.ProjectFilter{
		Status:   filter.Status,
		Category: filter.Category,
	}, offset, limit)
	if err != nil {
		return PagedProjects{}, errs.NewDatabaseError("find", "projects", err)
	}
	return PagedProjects{Projects: projects, Total: total, Page: page, Limit: limit}, nil
}

// GetOwnedByID returns the caller's project by id. A record that exists but
// belongs to someone else reads as not found, never as forbidden.
func (s *Catalog) GetOwnedByID(ctx context.Context, uid, id uuid.UUID) (*models.Project, error) {
	project, err := s.projects.FindByIDAndOwner(id, uid)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return nil, errs.NewNotFound("project")
	}
	return project, nil
}

// Create validates the fields, derives the slug, stores every upload, and
// persists the record owned by uid. All blobs are written before the record;
// if persisting fails the stored blobs are released again.
func (s *Catalog) Create(ctx context.Context, uid uuid.UUID, input ProjectInput, uploads []storage.Upload) (*models.Project, error) {
	if ve := checkInput(s.validate, input); ve != nil {
		return nil, ve
	}
	if len(uploads) > MaxImagesPerRequest {
		return nil, errs.BadRequest(fmt.Sprintf("at most %d images per request", MaxImagesPerRequest))
	}

	status := input.Status
	if status == "" {
		status = models.StatusDraft
	}

	project := &models.Project{
		Title:            input.Title,
		Slug:             models.Slugify(input.Title),
		Description:      input.Description,
		ShortDescription: input.ShortDescription,
		Category:         input.Category,
		Technologies:     datatypes.NewJSONSlice(models.SplitTechnologies(input.Technologies)),
		Client:           input.Client,
		Year:             input.Year,
		Status:           status,
		Featured:         input.Featured,
		CreatedBy:        uid,
	}
	if input.Testimonial != nil {
		t := datatypes.NewJSONType(*input.Testimonial)
		project.Testimonial = &t
	}

	urls, err := s.storeUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}

	project.Images = imageRefs(urls, project.Title)
	project.FeaturedImage = firstURL(project.Images)

	if err := s.projects.Add(project); err != nil {
		s.releaseBlobs(ctx, urls)
		if database.IsDuplicateSlug(err) {
			return nil, errs.NewValidationError(errs.FieldError{
				Field:   "title",
				Message: fmt.Sprintf("a project with slug %q already exists", project.Slug),
			})
		}
		return nil, errs.NewDatabaseError("create", "project", err)
	}

	return s.GetOwnedByID(ctx, uid, project.ID)
}

// Update applies every present field as a full replacement, reconciles the
// image set, and persists. The final image list is the record's current
// images restricted to existingURLs (all of them when existingURLs is nil),
// minus removedURLs, followed by the new uploads in order. featuredImage is
// always recomputed as the first of the final list, empty when none remain.
func (s *Catalog) Update(ctx context.Context, uid, id uuid.UUID, input ProjectUpdate, uploads []storage.Upload, existingURLs, removedURLs []string) (*models.Project, error) {
	project, err := s.projects.FindByIDAndOwner(id, uid)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return nil, errs.NewNotFound("project")
	}

	if ve := checkInput(s.validate, input); ve != nil {
		return nil, ve
	}
	if len(uploads) > MaxImagesPerRequest {
		return nil, errs.BadRequest(fmt.Sprintf("at most %d images per request", MaxImagesPerRequest))
	}

	if input.Title != nil {
		project.Title = *input.Title
		project.Slug = models.Slugify(*input.Title)
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.ShortDescription != nil {
		project.ShortDescription = *input.ShortDescription
	}
	if input.Category != nil {
		project.Category = *input.Category
	}
	if input.Technologies != nil {
		project.Technologies = datatypes.NewJSONSlice(models.SplitTechnologies(*input.Technologies))
	}
	if input.Client != nil {
		project.Client = *input.Client
	}
	if input.Year != nil {
		project.Year = *input.Year
	}
	if input.Status != nil {
		project.Status = *input.Status
	}
	if input.Featured != nil {
		project.Featured = *input.Featured
	}
	if input.Testimonial != nil {
		t := datatypes.NewJSONType(*input.Testimonial)
		project.Testimonial = &t
	}

	newURLs, err := s.storeUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}

	kept := reconcileImages(project.Images, existingURLs, removedURLs)
	final := append(kept, imageRefs(newURLs, project.Title)...)

	dropped := droppedURLs(project.Images, final)

	project.Images = datatypes.NewJSONSlice(final)
	project.FeaturedImage = firstURL(final)

	if err := s.projects.Update(project); err != nil {
		s.releaseBlobs(ctx, newURLs)
		if database.IsDuplicateSlug(err) {
			return nil, errs.NewValidationError(errs.FieldError{
				Field:   "title",
				Message: fmt.Sprintf("a project with slug %q already exists", project.Slug),
			})
		}
		return nil, errs.NewDatabaseError("update", "project", err)
	}

	// Blobs leave the store only after the record no longer references them.
	s.releaseBlobs(ctx, dropped)

	return s.GetOwnedByID(ctx, uid, project.ID)
}

// Delete releases every referenced blob, then removes the record. Individual
// blob failures are logged and skipped; a missing blob never blocks deletion.
func (s *Catalog) Delete(ctx context.Context, uid, id uuid.UUID) error {
	project, err := s.projects.FindByIDAndOwner(id, uid)
	if err != nil {
		return errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return errs.NewNotFound("project")
	}

	urls := make([]string, 0, len(project.Images))
	for _, img := range project.Images {
		urls = append(urls, img.URL)
	}
	s.releaseBlobs(ctx, urls)

	if err := s.projects.Delete(project.ID); err != nil {
		return errs.NewDatabaseError("delete", "project", err)
	}
	return nil
}

// storeUploads writes each upload to the image store in order. On failure the
// blobs already written for this request are released so nothing is orphaned.
func (s *Catalog) storeUploads(ctx context.Context, uploads []storage.Upload) ([]string, error) {
	urls := make([]string, 0, len(uploads))
	for _, up := range uploads {
		url, err := s.store.Put(ctx, up)
		if err != nil {
			s.releaseBlobs(ctx, urls)
			if errs.IsUnsupportedMediaType(err) {
				return nil, errs.NewUnsupportedMediaTypeError(up.ContentType, storage.AllowedTypes())
			}
			if errs.IsFileTooLarge(err) {
				return nil, errs.NewFileTooLargeError(up.Filename, storage.DefaultMaxFileSize)
			}
			return nil, errs.NewBlobWriteError(up.Filename, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// releaseBlobs deletes blobs best-effort. Not-found results are fine; other
// failures are logged and skipped.
func (s *Catalog) releaseBlobs(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.store.Delete(ctx, url); err != nil && !errs.IsBlobNotFound(err) {
			s.logger.Warn().Err(err).Str("url", url).Msg("failed to delete blob")
		}
	}
}

// reconcileImages keeps the current images whose URL survives the edit:
// members of existing (all, when existing is nil) that are not in removed.
func reconcileImages(current []models.ImageRef, existing, removed []string) []models.ImageRef {
	existingSet := toSet(existing)
	removedSet := toSet(removed)

	kept := make([]models.ImageRef, 0, len(current))
	for _, img := range current {
		if existing != nil && !existingSet[img.URL] {
			continue
		}
		if removedSet[img.URL] {
			continue
		}
		kept = append(kept, img)
	}
	return kept
}

func droppedURLs(before []models.ImageRef, after []models.ImageRef) []string {
	keep := make(map[string]bool, len(after))
	for _, img := range after {
		keep[img.URL] = true
	}
	var dropped []string
	for _, img := range before {
		if !keep[img.URL] {
			dropped = append(dropped, img.URL)
		}
	}
	return dropped
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func imageRefs(urls []string, title string) []models.ImageRef {
	refs := make([]models.ImageRef, 0, len(urls))
	for _, url := range urls {
		refs = append(refs, models.ImageRef{
			URL: url,
			Alt: title + " - Project Image",
		})
	}
	return refs
}

func firstURL(images []models.ImageRef) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
