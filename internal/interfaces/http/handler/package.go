package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/travelpkg/backend/internal/application/catalog"
	"github.com/travelpkg/backend/internal/domain/catalog"
	"github.com/travelpkg/backend/internal/domain/shared"
)

// csvFormField is the multipart field carrying a CSV catalog export
const csvFormField = "file"

// PackageHandler handles catalog endpoints
type PackageHandler struct {
	BaseHandler
	packageService *catalogapp.PackageService
}

// NewPackageHandler creates a new PackageHandler
func NewPackageHandler(packageService *catalogapp.PackageService) *PackageHandler {
	return &PackageHandler{packageService: packageService}
}

// Normalize converts one raw listing envelope and returns the canonical
// package without storing it.
func (h *PackageHandler) Normalize(c *gin.Context) {
	var env catalog.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		h.BindError(c, err)
		return
	}
	raw, err := catalog.DecodeRawListing(env)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	pkg, err := h.packageService.Normalize(raw)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pkg)
}

// List lists packages with filtering and pagination
func (h *PackageHandler) List(c *gin.Context) {
	var filter catalogapp.PackageListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	pkgs, total, err := h.packageService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pagination(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, pkgs, total, page, pageSize)
}

// Get returns a package by id, or by slug when the parameter is not a uuid
func (h *PackageHandler) Get(c *gin.Context) {
	ref := c.Param("id")

	var (
		pkg *catalogapp.PackageResponse
		err error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		pkg, err = h.packageService.GetByID(c.Request.Context(), id)
	} else {
		pkg, err = h.packageService.GetBySlug(c.Request.Context(), ref)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pkg)
}

// Create stores a package from the admin form
func (h *PackageHandler) Create(c *gin.Context) {
	var req catalogapp.PackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	pkg, err := h.packageService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, pkg)
}

// Update replaces the content of a package
func (h *PackageHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req catalogapp.PackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	pkg, err := h.packageService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pkg)
}

// Delete removes a package that no reservation references
func (h *PackageHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.packageService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Ingest normalizes and upserts a batch of raw listings
func (h *PackageHandler) Ingest(c *gin.Context) {
	var req catalogapp.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	key, err := catalog.ParseConflictKey(req.ConflictKey)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	raws, err := catalogapp.DecodeEnvelopes(req.Listings)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.packageService.Ingest(c.Request.Context(), raws, key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Resync replaces the whole catalog
func (h *PackageHandler) Resync(c *gin.Context) {
	var req catalogapp.ResyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	raws, err := catalogapp.DecodeEnvelopes(req.Listings)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.packageService.Resync(c.Request.Context(), raws)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ImportCSV ingests an uploaded CSV export of scraped listings
func (h *PackageHandler) ImportCSV(c *gin.Context) {
	fh, err := c.FormFile(csvFormField)
	if err != nil {
		h.HandleError(c, shared.NewValidationError(csvFormField, "a CSV file upload is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer f.Close()

	result, err := h.packageService.ImportCSV(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SyncFeed resyncs the catalog from a feed object
func (h *PackageHandler) SyncFeed(c *gin.Context) {
	var req catalogapp.SyncFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.packageService.SyncFromFeed(c.Request.Context(), req.Key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// pagination resolves the page and page size a list call used
func pagination(page, pageSize int) (int, int) {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = pageSize
	}
	return f.Page, f.PageSize
}
