package http

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mymotiv/internal/auth"
	"github.com/mrlokans/mymotiv/internal/database"
	"github.com/mrlokans/mymotiv/internal/database/media"
	"github.com/mrlokans/mymotiv/internal/entities"
	"github.com/mrlokans/mymotiv/internal/favorites"
	"github.com/mrlokans/mymotiv/internal/services"
)

// MediaService defines the media operations exposed over HTTP.
type MediaService interface {
	Register(ctx context.Context, userID string, in services.MediaInput) (*entities.Media, error)
	Upload(ctx context.Context, userID string, up services.Upload) (*entities.Media, error)
	Open(ctx context.Context, key, viewerID string) (io.ReadCloser, error)
	Get(ctx context.Context, id, viewerID string) (*entities.Media, error)
	ListMine(ctx context.Context, userID string, opts media.ListOptions) (database.Paginated[entities.Media], error)
	ListPublic(ctx context.Context, opts media.ListOptions) (database.Paginated[entities.Media], error)
	ListPopular(ctx context.Context, minFavorites int64, limit int) ([]entities.Media, error)
	Delete(ctx context.Context, userID, id string) error
	ToggleFavorite(ctx context.Context, userID, id string) (favorites.Result, error)
	IsFavorite(ctx context.Context, userID, id string) bool
	Favorites(ctx context.Context, userID string, contentType entities.ContentType, page database.Page) (database.Paginated[entities.Favorite], error)
}

type MediaController struct {
	service MediaService
}

func NewMediaController(service MediaService) *MediaController {
	return &MediaController{service: service}
}

// parseListOptions reads page, limit, type, sortBy and sortOrder.
func parseListOptions(c *gin.Context) (media.ListOptions, bool) {
	page, ok := parsePage(c)
	if !ok {
		return media.ListOptions{}, false
	}
	opts := media.ListOptions{Page: page, SortBy: "createdAt"}

	if t := c.Query("type"); t != "" {
		opts.Type = entities.MediaType(t)
		if !opts.Type.Valid() {
			respondBadRequest(c, "Invalid media type")
			return opts, false
		}
	}
	if sortBy := c.Query("sortBy"); sortBy != "" {
		if _, known := media.SortFields[sortBy]; !known {
			respondBadRequest(c, "Invalid sortBy field")
			return opts, false
		}
		opts.SortBy = sortBy
	}
	switch c.DefaultQuery("sortOrder", "desc") {
	case "asc":
		opts.Ascending = true
	case "desc":
	default:
		respondBadRequest(c, "sortOrder must be asc or desc")
		return opts, false
	}
	return opts, true
}

// GET /api/media/public
func (mc *MediaController) ListPublic(c *gin.Context) {
	opts, ok := parseListOptions(c)
	if !ok {
		return
	}
	result, err := mc.service.ListPublic(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err, "list public media")
		return
	}
	respondPage(c, result)
}

// GET /api/media/popular?minFavorites=&limit=
func (mc *MediaController) ListPopular(c *gin.Context) {
	minFavorites, err := strconv.ParseInt(c.DefaultQuery("minFavorites", "1"), 10, 64)
	if err != nil {
		respondBadRequest(c, "minFavorites must be an integer")
		return
	}
	limit, ok := queryInt(c, "limit", 10)
	if !ok {
		respondBadRequest(c, "limit must be an integer")
		return
	}

	items, err := mc.service.ListPopular(c.Request.Context(), minFavorites, limit)
	if err != nil {
		respondError(c, err, "list popular media")
		return
	}
	if items == nil {
		items = []entities.Media{}
	}
	respondOK(c, items)
}

// GET /api/media/my/media
func (mc *MediaController) ListMine(c *gin.Context) {
	opts, ok := parseListOptions(c)
	if !ok {
		return
	}
	result, err := mc.service.ListMine(c.Request.Context(), auth.UserID(c), opts)
	if err != nil {
		respondError(c, err, "list own media")
		return
	}
	respondPage(c, result)
}

// Get returns media by id; private media only for its owner
// GET /api/media/:id
func (mc *MediaController) Get(c *gin.Context) {
	m, err := mc.service.Get(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		respondError(c, err, "get media")
		return
	}
	respondOK(c, m)
}

// Register records metadata for a file that is already hosted
// POST /api/media
func (mc *MediaController) Register(c *gin.Context) {
	var in services.MediaInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := mc.service.Register(c.Request.Context(), auth.UserID(c), in)
	if err != nil {
		respondError(c, err, "register media")
		return
	}
	respondCreated(c, "Media uploaded successfully", m)
}

// Upload stores a multipart file under the "file" field
// POST /api/media/upload
func (mc *MediaController) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "File is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		respondBadRequest(c, "Unable to read uploaded file")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(path.Ext(header.Filename)); byExt != "" {
			mimeType = byExt
		}
	}
	isPublic, _ := strconv.ParseBool(c.PostForm("isPublic"))

	m, err := mc.service.Upload(c.Request.Context(), auth.UserID(c), services.Upload{
		OriginalName: header.Filename,
		MimeType:     mimeType,
		Size:         header.Size,
		IsPublic:     isPublic,
		Content:      file,
	})
	if err != nil {
		respondError(c, err, "upload media")
		return
	}
	respondCreated(c, "Media uploaded successfully", m)
}

// Serve streams a stored upload. Private uploads are served to their owner
// only.
// GET /uploads/*key
func (mc *MediaController) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		respondStatus(c, http.StatusNotFound, "File not found")
		return
	}

	rc, err := mc.service.Open(c.Request.Context(), key, auth.UserID(c))
	if err != nil {
		respondError(c, err, "serve upload")
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

// Delete soft-deletes the caller's media and deactivates its favorites
// DELETE /api/media/:id
func (mc *MediaController) Delete(c *gin.Context) {
	if err := mc.service.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		respondError(c, err, "delete media")
		return
	}
	respondMessage(c, "Media deleted successfully", nil)
}

// POST /api/media/:id/favorite
func (mc *MediaController) ToggleFavorite(c *gin.Context) {
	result, err := mc.service.ToggleFavorite(c.Request.Context(), auth.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "toggle media favorite")
		return
	}
	respondMessage(c, favoriteMessage(result), result)
}

// GET /api/media/:id/favorite/check
func (mc *MediaController) CheckFavorite(c *gin.Context) {
	favorited := mc.service.IsFavorite(c.Request.Context(), auth.UserID(c), c.Param("id"))
	respondOK(c, gin.H{"isFavorite": favorited})
}

// Favorites lists the caller's favorites, newest first
// GET /api/media/my/favorites
func (mc *MediaController) Favorites(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	contentType := entities.ContentType(c.Query("contentType"))
	result, err := mc.service.Favorites(c.Request.Context(), auth.UserID(c), contentType, page)
	if err != nil {
		respondError(c, err, "list favorites")
		return
	}
	respondPage(c, result)
}
