package http

import (
	"context"
	"errors"
	"net/http"

	"postcard/internal/entity"
	"postcard/internal/usecase"
	"postcard/pkg/contentapi"
	"postcard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ProfileAPI is the slice of the content API the composer needs for
// avatar updates.
type ProfileAPI interface {
	UpdateProfile(ctx context.Context, token string, update *contentapi.ProfileUpdate) error
}

type ComposerHandler struct {
	ingestor usecase.MediaIngestor
	feed     usecase.FeedUseCase
	profiles ProfileAPI
	logger   *logger.Logger
}

func NewComposerHandler(ingestor usecase.MediaIngestor, feed usecase.FeedUseCase, profiles ProfileAPI, logger *logger.Logger) *ComposerHandler {
	return &ComposerHandler{
		ingestor: ingestor,
		feed:     feed,
		profiles: profiles,
		logger:   logger,
	}
}

type CreatePostRequest struct {
	PostType string `form:"post_type" binding:"required,oneof=photo story"`
	Caption  string `form:"caption"`
	Tags     string `form:"tags"`
}

// CreatePost godoc
// @Summary      Create a new post
// @Description  Create a post from uploaded images. Photo posts take exactly one image; story posts take up to 10 and require a caption.
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        post_type formData string true "Post type (photo or story)" Enums(photo, story)
// @Param        caption formData string false "Caption (required for story posts)"
// @Param        tags formData string false "Comma-separated tags"
// @Param        images formData file false "Image files (jpeg/png/gif/webp, max 5 MiB each)"
// @Success      201  {object}  entity.Post
// @Failure      400  {object}  map[string]interface{}
// @Failure      422  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /posts [post]
func (h *ComposerHandler) CreatePost(c *gin.Context) {
	userID := c.GetString("user_id")
	token := c.GetString("token")

	var req CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Caption constraints are checked before any resize or upload work so
	// a rejected request never leaves blobs behind.
	if err := usecase.ValidateCaption(entity.PostType(req.PostType), req.Caption); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse form"})
		return
	}

	files := form.File["images"]
	batch := make(entity.MediaBatch, 0, len(files))
	for _, fh := range files {
		asset, err := entity.AssetFromFileHeader(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
			return
		}
		batch = append(batch, asset)
	}

	mode := entity.IngestSingle
	if req.PostType == string(entity.PostTypeStory) {
		mode = entity.IngestMulti
	}

	urls, err := h.ingestor.IngestBatch(c.Request.Context(), userID, batch, mode)
	if err != nil {
		h.logger.Error("Failed to ingest media for user %s: %v", userID, err)
		c.JSON(ingestStatus(err), gin.H{"error": err.Error(), "files": rejectionReport(batch)})
		return
	}

	post, err := h.feed.CreatePost(c.Request.Context(), token, entity.PostType(req.PostType), req.Caption, req.Tags, urls)
	if err != nil {
		// No post references the uploaded blobs; drop them.
		h.ingestor.Discard(c.Request.Context(), batch)
		if errors.Is(err, usecase.ErrCaptionRequired) || errors.Is(err, usecase.ErrCaptionTooLong) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to create post: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// UploadAvatar godoc
// @Summary      Upload a profile photo
// @Description  Resize the uploaded image to the avatar dimension, store it and update the profile record.
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar formData file true "Avatar image (jpeg/png/gif/webp, max 5 MiB)"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /profile/avatar [post]
func (h *ComposerHandler) UploadAvatar(c *gin.Context) {
	userID := c.GetString("user_id")
	token := c.GetString("token")

	fh, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar file is required"})
		return
	}

	asset, err := entity.AssetFromFileHeader(fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	url, err := h.ingestor.UploadAvatar(c.Request.Context(), userID, asset)
	if err != nil {
		h.logger.Error("Failed to upload avatar for user %s: %v", userID, err)
		c.JSON(ingestStatus(err), gin.H{"error": err.Error()})
		return
	}

	if err := h.profiles.UpdateProfile(c.Request.Context(), token, &contentapi.ProfileUpdate{AvatarURL: &url}); err != nil {
		h.logger.Error("Failed to update profile: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}

// ingestStatus maps pipeline errors to HTTP status codes. Validation
// problems are the caller's fault, encode failures are a content
// problem, anything else came from the blob store.
func ingestStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrUnsupportedType),
		errors.Is(err, usecase.ErrFileTooLarge),
		errors.Is(err, usecase.ErrBatchTooLarge),
		errors.Is(err, usecase.ErrImageRequired):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrEncodeFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// rejectionReport lists each file's status so the client can tell which
// upload sank the batch.
func rejectionReport(batch entity.MediaBatch) []gin.H {
	report := make([]gin.H, len(batch))
	for i, asset := range batch {
		entry := gin.H{"filename": asset.Filename, "status": asset.Status}
		if asset.RejectionReason != "" {
			entry["reason"] = asset.RejectionReason
		}
		report[i] = entry
	}
	return report
}
