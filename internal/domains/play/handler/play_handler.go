package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bgpiesa-backend/internal/domains/play/model"
	"bgpiesa-backend/internal/domains/play/service"
	"bgpiesa-backend/internal/shared/download"
	"bgpiesa-backend/internal/shared/response"
	"bgpiesa-backend/internal/shared/upload"
	"bgpiesa-backend/internal/shared/utils"
)

// Media is the part of the media coordinator that touches plays
type Media interface {
	ReplacePlayPDF(ctx context.Context, playID int64, content io.Reader) (*model.Play, error)
	AttachPlayImage(ctx context.Context, playID int64, content io.Reader, captionBG, captionEN *string) (*model.PlayDetail, error)
	AttachPlayFile(ctx context.Context, playID int64, content io.Reader, captionBG, captionEN *string) (*model.PlayDetail, error)
	UpdateImageCaption(ctx context.Context, playID, imageID int64, req *model.UpdateCaptionRequest) (*model.PlayImage, error)
	UpdateFileCaption(ctx context.Context, playID, fileID int64, req *model.UpdateCaptionRequest) (*model.PlayFile, error)
	DeletePlayImage(ctx context.Context, playID, imageID int64) error
	DeletePlayFile(ctx context.Context, playID, fileID int64) error
	DeletePlay(ctx context.Context, playID int64) error
}

type PlayHandler struct {
	service   service.ServiceInterface
	media     Media
	downloads *download.Server
}

func NewPlayHandler(svc service.ServiceInterface, media Media, downloads *download.Server) *PlayHandler {
	return &PlayHandler{service: svc, media: media, downloads: downloads}
}

func parseID(c *gin.Context, name, notFound string) (int64, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		response.NotFound(c, notFound)
	}
	return id, ok
}

func parsePlayID(c *gin.Context) (int64, bool) {
	return parseID(c, "id", model.ErrPlayNotFound.Message)
}

// parseListFilter reads the public filter query. Malformed numbers are a 400.
func parseListFilter(c *gin.Context) (model.ListFilter, error) {
	filter := model.ListFilter{
		Search: c.Query("search"),
		Genre:  c.Query("genre"),
		Theme:  c.Query("theme"),
	}

	if raw := strings.TrimSpace(c.Query("author_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid author_id: %q", raw)
		}
		filter.AuthorID = &id
	}

	ints := []struct {
		name string
		dst  **int
	}{
		{"year_min", &filter.YearMin},
		{"year_max", &filter.YearMax},
		{"male_participants_min", &filter.MaleParticipantsMin},
		{"male_participants_max", &filter.MaleParticipantsMax},
		{"female_participants_min", &filter.FemaleParticipantsMin},
		{"female_participants_max", &filter.FemaleParticipantsMax},
	}
	for _, p := range ints {
		raw := strings.TrimSpace(c.Query(p.name))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid %s: %q", p.name, raw)
		}
		*p.dst = &v
	}
	return filter, nil
}

// ============================================
// Public
// ============================================

// List handles GET /api/plays
func (h *PlayHandler) List(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	plays, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, plays)
}

// GetDetail handles GET /api/plays/:id
func (h *PlayHandler) GetDetail(c *gin.Context) {
	id, ok := parsePlayID(c)
	if !ok {
		return
	}

	detail, err := h.service.GetDetail(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

// DownloadPDF handles GET /api/plays/:id/download-pdf
func (h *PlayHandler) DownloadPDF(c *gin.Context) {
	id, ok := parsePlayID(c)
	if !ok {
		return
	}

	location, err := h.service.ScriptLocation(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	h.downloads.Serve(c, location, download.Options{
		Filename:    fmt.Sprintf("play-%d-script.pdf", id),
		Disposition: download.Attachment,
		ContentType: download.ContentTypePDF,
	})
}

// ViewFile handles GET /api/plays/:id/files/:fileId/view
func (h *PlayHandler) ViewFile(c *gin.Context) {
	playID, ok := parsePlayID(c)
	if !ok {
		return
	}
	fileID, ok := parseID(c, "fileId", model.ErrFileNotFound.Message)
	if !ok {
		return
	}

	f, err := h.service.FileForPlay(c.Request.Context(), playID, fileID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	h.downloads.Serve(c, f.FileURL, download.Options{
		Filename:    fileName(f.FileURL),
		Disposition: download.Inline,
	})
}

func fileName(url string) string {
	name := url
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	return name
}

// ============================================
// Admin
// ============================================

func (h *PlayHandler) Create(c *gin.Context) {
	var req model.CreatePlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	detail, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, detail)
}

func (h *PlayHandler) Update(c *gin.Context) {
	id, ok := parsePlayID(c)
	if !ok {
		return
	}

	var req model.UpdatePlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	detail, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

func (h *PlayHandler) Delete(c *gin.Context) {
	id, ok := parsePlayID(c)
	if !ok {
		return
	}

	if err := h.media.DeletePlay(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

// UploadPDF handles POST /api/admin/plays/:id/upload-pdf
func (h *PlayHandler) UploadPDF(c *gin.Context) {
	id, ok := parsePlayID(c)
	if !ok {
		return
	}

	file, err := upload.Open(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	defer file.Close()

	p, err := h.media.ReplacePlayPDF(c.Request.Context(), id, file)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// UploadImage handles POST /api/admin/plays/:id/upload-image
func (h *PlayHandler) UploadImage(c *gin.Context) {
	h.attach(c, h.media.AttachPlayImage)
}

// UploadFile handles POST /api/admin/plays/:id/upload-file
func (h *PlayHandler) UploadFile(c *gin.Context) {
	h.attach(c, h.media.AttachPlayFile)
}

type attachFunc func(ctx context.Context, playID int64, content io.Reader, captionBG, captionEN *string) (*model.PlayDetail, error)

func (h *PlayHandler) attach(c *gin.Context, fn attachFunc) {
	id, ok := parsePlayID(c)
	if !ok {
		return
	}

	file, err := upload.Open(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	defer file.Close()

	captionBG, captionEN := upload.Captions(c)
	detail, err := fn(c.Request.Context(), id, file, captionBG, captionEN)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

// UpdateImage handles PATCH /api/admin/plays/:id/images/:imageId
func (h *PlayHandler) UpdateImage(c *gin.Context) {
	playID, ok := parsePlayID(c)
	if !ok {
		return
	}
	imageID, ok := parseID(c, "imageId", model.ErrImageNotFound.Message)
	if !ok {
		return
	}

	var req model.UpdateCaptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	img, err := h.media.UpdateImageCaption(c.Request.Context(), playID, imageID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, img)
}

// DeleteImage handles DELETE /api/admin/plays/:id/images/:imageId
func (h *PlayHandler) DeleteImage(c *gin.Context) {
	playID, ok := parsePlayID(c)
	if !ok {
		return
	}
	imageID, ok := parseID(c, "imageId", model.ErrImageNotFound.Message)
	if !ok {
		return
	}

	if err := h.media.DeletePlayImage(c.Request.Context(), playID, imageID); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateFile handles PATCH /api/admin/plays/:id/files/:fileId
func (h *PlayHandler) UpdateFile(c *gin.Context) {
	playID, ok := parsePlayID(c)
	if !ok {
		return
	}
	fileID, ok := parseID(c, "fileId", model.ErrFileNotFound.Message)
	if !ok {
		return
	}

	var req model.UpdateCaptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	f, err := h.media.UpdateFileCaption(c.Request.Context(), playID, fileID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, f)
}

// DeleteFile handles DELETE /api/admin/plays/:id/files/:fileId
func (h *PlayHandler) DeleteFile(c *gin.Context) {
	playID, ok := parsePlayID(c)
	if !ok {
		return
	}
	fileID, ok := parseID(c, "fileId", model.ErrFileNotFound.Message)
	if !ok {
		return
	}

	if err := h.media.DeletePlayFile(c.Request.Context(), playID, fileID); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}
