package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"bgpiesa-backend/internal/domains/author/model"
	"bgpiesa-backend/internal/domains/author/service"
	"bgpiesa-backend/internal/shared/response"
	"bgpiesa-backend/internal/shared/upload"
	"bgpiesa-backend/internal/shared/utils"
)

// Media is the part of the media coordinator that touches authors
type Media interface {
	ReplaceAuthorPhoto(ctx context.Context, authorID int64, content io.Reader) (*model.Author, error)
	DeleteAuthor(ctx context.Context, authorID int64) error
}

type AuthorHandler struct {
	service service.ServiceInterface
	media   Media
}

func NewAuthorHandler(svc service.ServiceInterface, media Media) *AuthorHandler {
	return &AuthorHandler{service: svc, media: media}
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		response.NotFound(c, model.ErrAuthorNotFound.Message)
	}
	return id, ok
}

// ============================================
// Public
// ============================================

// List handles GET /api/authors?search=
func (h *AuthorHandler) List(c *gin.Context) {
	filter := model.ListFilter{Search: c.Query("search")}

	authors, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, authors)
}

// GetDetail handles GET /api/authors/:id?playSearch=
func (h *AuthorHandler) GetDetail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	detail, err := h.service.GetDetail(c.Request.Context(), id, c.Query("playSearch"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

// ============================================
// Admin
// ============================================

func (h *AuthorHandler) Create(c *gin.Context) {
	var req model.CreateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	a, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, a)
}

func (h *AuthorHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	a, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, a)
}

func (h *AuthorHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.media.DeleteAuthor(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.NoContent(c)
}

// UploadPhoto handles POST /api/admin/authors/:id/upload-photo (multipart "file")
func (h *AuthorHandler) UploadPhoto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	file, err := upload.Open(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	defer file.Close()

	a, err := h.media.ReplaceAuthorPhoto(c.Request.Context(), id, file)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, a)
}
