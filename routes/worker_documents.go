package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"chorescape-server/middleware"
	"chorescape-server/models"
	"chorescape-server/services"
	"chorescape-server/types"
)

type workerDocumentHandler struct {
	db       *gorm.DB
	uploader *services.Uploader
}

// RegisterWorkerDocumentRoutes mounts document management under the
// already role-guarded worker group.
func RegisterWorkerDocumentRoutes(worker *gin.RouterGroup, d *Deps) {
	h := &workerDocumentHandler{db: d.DB, uploader: d.Uploader}

	grp := worker.Group("/documents")
	grp.GET("", h.list)
	grp.POST("", h.upload)
	grp.DELETE("/:id", h.delete)
}

type workerDocumentRequest struct {
	Type     string  `json:"type"`
	FileURL  *string `json:"fileUrl"`
	FileData *string `json:"fileData"`
}

func (h *workerDocumentHandler) list(c *gin.Context) {
	profile, _ := middleware.CurrentProfile(c)

	var documents []models.WorkerDocument
	err := h.db.Where("worker_profile_id = ?", profile.ID).
		Order("created_at DESC").
		Find(&documents).Error
	if err != nil {
		fail(c, types.Internal("Failed to load documents", err))
		return
	}
	respond(c, http.StatusOK, "Documents retrieved successfully", documents)
}

func (h *workerDocumentHandler) upload(c *gin.Context) {
	profile, _ := middleware.CurrentProfile(c)

	var req workerDocumentRequest
	if !bind(c, &req) {
		return
	}

	docType := models.DocumentType(strings.ToUpper(req.Type))
	if !docType.Valid() {
		fail(c, types.Validation("Invalid document type. Must be one of: WORK_AUTH, TAX, ID"))
		return
	}

	var fileURL string
	switch {
	case req.FileData != nil && strings.TrimSpace(*req.FileData) != "":
		url, appErr := h.uploader.Upload(c.Request.Context(), *req.FileData, "workers/documents/"+profile.ID)
		if appErr != nil {
			fail(c, appErr)
			return
		}
		fileURL = url
	case req.FileURL != nil && strings.TrimSpace(*req.FileURL) != "":
		fileURL = strings.TrimSpace(*req.FileURL)
	default:
		fail(c, types.Validation("File URL is required"))
		return
	}

	document := models.WorkerDocument{
		WorkerProfileID: profile.ID,
		Type:            docType,
		FileURL:         fileURL,
	}
	if err := h.db.Create(&document).Error; err != nil {
		fail(c, types.Internal("Failed to save document", err))
		return
	}
	respond(c, http.StatusCreated, "Document uploaded successfully", document)
}

func (h *workerDocumentHandler) delete(c *gin.Context) {
	profile, _ := middleware.CurrentProfile(c)

	var document models.WorkerDocument
	err := h.db.First(&document, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, types.NotFound("Document"))
		return
	}
	if err != nil {
		fail(c, types.Internal("Failed to load document", err))
		return
	}
	if document.WorkerProfileID != profile.ID {
		fail(c, types.Authorization("You can only delete your own documents"))
		return
	}

	if err := h.db.Delete(&document).Error; err != nil {
		fail(c, types.Internal("Failed to delete document", err))
		return
	}
	respond(c, http.StatusOK, "Document deleted successfully", nil)
}
