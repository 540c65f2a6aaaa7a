package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bgpiesa-backend/internal/domains/library/model"
	"bgpiesa-backend/internal/domains/library/service"
	"bgpiesa-backend/internal/shared/download"
	"bgpiesa-backend/internal/shared/response"
	"bgpiesa-backend/internal/shared/upload"
	"bgpiesa-backend/internal/shared/utils"
)

// Media is the part of the media coordinator that touches literary pieces
type Media interface {
	ReplacePiecePDF(ctx context.Context, pieceID int64, content io.Reader) (*model.LiteraryPiece, error)
	DeletePiece(ctx context.Context, pieceID int64) error
}

type LibraryHandler struct {
	service   service.ServiceInterface
	media     Media
	downloads *download.Server
}

func NewLibraryHandler(svc service.ServiceInterface, media Media, downloads *download.Server) *LibraryHandler {
	return &LibraryHandler{service: svc, media: media, downloads: downloads}
}

func parseID(c *gin.Context) (int64, bool) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.NotFound(c, model.ErrPieceNotFound.Message)
	}
	return id, ok
}

func parseOptionalID(c *gin.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return &id, nil
}

// List handles GET /api/library?search=&author_id=&play_id=
func (h *LibraryHandler) List(c *gin.Context) {
	filter := model.ListFilter{Search: c.Query("search")}

	var err error
	if filter.AuthorID, err = parseOptionalID(c, "author_id"); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if filter.PlayID, err = parseOptionalID(c, "play_id"); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pieces, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, pieces)
}

// Get handles GET /api/library/:id
func (h *LibraryHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	lp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, lp)
}

// DownloadPDF handles GET /api/library/:id/download-pdf
func (h *LibraryHandler) DownloadPDF(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	location, err := h.service.PDFLocation(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	h.downloads.Serve(c, location, download.Options{
		Filename:    fmt.Sprintf("piece-%d.pdf", id),
		Disposition: download.Inline,
		ContentType: download.ContentTypePDF,
	})
}

// ============================================
// Admin
// ============================================

func (h *LibraryHandler) Create(c *gin.Context) {
	var req model.CreatePieceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	lp, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, lp)
}

func (h *LibraryHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req model.UpdatePieceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	lp, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, lp)
}

func (h *LibraryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.media.DeletePiece(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

// UploadPDF handles POST /api/admin/library/:id/upload-pdf
func (h *LibraryHandler) UploadPDF(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	file, err := upload.Open(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	defer file.Close()

	lp, err := h.media.ReplacePiecePDF(c.Request.Context(), id, file)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, lp)
}
