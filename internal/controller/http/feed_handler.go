package http

import (
	"errors"
	"net/http"

	"postcard/internal/entity"
	"postcard/internal/usecase"
	"postcard/pkg/logger"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	feed   usecase.FeedUseCase
	logger *logger.Logger
}

func NewFeedHandler(feed usecase.FeedUseCase, logger *logger.Logger) *FeedHandler {
	return &FeedHandler{
		feed:   feed,
		logger: logger,
	}
}

func (h *FeedHandler) formatPostResponse(post *entity.Post) gin.H {
	state, _ := h.feed.ViewState(post.ID)
	return gin.H{
		"id":          post.ID,
		"user_id":     post.UserID,
		"caption":     post.Caption,
		"post_type":   post.PostType,
		"image_urls":  post.ImageURLs(),
		"multi_image": post.MultiImage(),
		"tags":        post.Tags,
		"likes_count": post.LikesCount,
		"created_at":  post.CreatedAt,
		"updated_at":  post.UpdatedAt,
		"view_state":  state,
	}
}

// ListPosts godoc
// @Summary      List posts
// @Description  Get the feed, optionally filtered by a search query. Tagged posts match on tags only; untagged posts match on caption.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        q query string false "Search query"
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]string
// @Router       /posts [get]
func (h *FeedHandler) ListPosts(c *gin.Context) {
	token := c.GetString("token")
	query := c.Query("q")

	posts, err := h.feed.ListPosts(c.Request.Context(), token)
	if err != nil {
		h.logger.Error("Failed to list posts: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	posts = h.feed.Filter(posts, query)

	response := make([]gin.H, len(posts))
	for i, post := range posts {
		response[i] = h.formatPostResponse(post)
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":           response,
		"count":           len(response),
		"side_panel_open": h.feed.SidePanelOpen(),
	})
}

type DisplayModeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=grid carousel"`
}

// SelectDisplayMode godoc
// @Summary      Switch a post between grid and carousel
// @Tags         view-state
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        request body DisplayModeRequest true "Display mode"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /posts/{id}/display-mode [post]
func (h *FeedHandler) SelectDisplayMode(c *gin.Context) {
	postID := c.Param("id")

	var req DisplayModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.feed.SelectDisplayMode(postID, usecase.DisplayMode(req.Mode))
	state, _ := h.feed.ViewState(postID)
	c.JSON(http.StatusOK, gin.H{"view_state": state})
}

type AdvanceRequest struct {
	Direction string `json:"direction" binding:"required,oneof=next prev"`
}

// Advance godoc
// @Summary      Step a post's carousel
// @Description  Move the carousel one image forward or back, wrapping at either end.
// @Tags         view-state
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        request body AdvanceRequest true "Step direction"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /posts/{id}/advance [post]
func (h *FeedHandler) Advance(c *gin.Context) {
	postID := c.Param("id")

	var req AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	index := h.feed.Advance(postID, usecase.Direction(req.Direction))
	c.JSON(http.StatusOK, gin.H{"carousel_index": index})
}

// OpenMenu godoc
// @Summary      Open a post's context menu
// @Description  Open the per-post menu. Any other open menu and the side panel are closed.
// @Tags         view-state
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /posts/{id}/menu [post]
func (h *FeedHandler) OpenMenu(c *gin.Context) {
	postID := c.Param("id")

	h.feed.OpenMenu(postID)
	state, _ := h.feed.ViewState(postID)
	c.JSON(http.StatusOK, gin.H{"view_state": state})
}

// ToggleSidePanel godoc
// @Summary      Toggle the side panel
// @Description  Open or close the side panel. Opening it closes any open post menu.
// @Tags         view-state
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]bool
// @Router       /side-panel [post]
func (h *FeedHandler) ToggleSidePanel(c *gin.Context) {
	open := h.feed.ToggleSidePanel()
	c.JSON(http.StatusOK, gin.H{"side_panel_open": open})
}

// Dismiss godoc
// @Summary      Dismiss all overlays
// @Description  The outside-click action: closes every menu and the side panel.
// @Tags         view-state
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /dismiss [post]
func (h *FeedHandler) Dismiss(c *gin.Context) {
	h.feed.Dismiss()
	c.JSON(http.StatusOK, gin.H{"message": "Overlays dismissed"})
}

// BeginEdit godoc
// @Summary      Start editing a post
// @Description  Seed an edit draft from the post's current caption and tags.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/edit [post]
func (h *FeedHandler) BeginEdit(c *gin.Context) {
	postID := c.Param("id")

	draft, err := h.feed.BeginEdit(postID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"edit_draft": draft})
}

// CancelEdit godoc
// @Summary      Cancel an edit
// @Description  Drop the edit draft without saving.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  map[string]string
// @Router       /posts/{id}/edit/cancel [post]
func (h *FeedHandler) CancelEdit(c *gin.Context) {
	h.feed.CancelEdit(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Edit cancelled"})
}

type UpdatePostRequest struct {
	Caption string `json:"caption"`
	Tags    string `json:"tags"`
}

// UpdatePost godoc
// @Summary      Save an edit
// @Description  Update the draft with the submitted caption and tags text, then commit it to the content API. The draft survives a failed commit.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        request body UpdatePostRequest true "Edited caption and comma-separated tags"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /posts/{id} [patch]
func (h *FeedHandler) UpdatePost(c *gin.Context) {
	postID := c.Param("id")
	token := c.GetString("token")

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.feed.UpdateDraft(postID, req.Caption, req.Tags); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "No edit in progress for this post"})
		return
	}

	if err := h.feed.CommitEdit(c.Request.Context(), token, postID); err != nil {
		h.logger.Error("Failed to update post %s: %v", postID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post updated successfully"})
}

// DeletePost godoc
// @Summary      Delete post
// @Description  Delete a post. The confirm query parameter must be true; without it nothing happens.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        confirm query bool true "Deletion confirmation"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /posts/{id} [delete]
func (h *FeedHandler) DeletePost(c *gin.Context) {
	postID := c.Param("id")
	token := c.GetString("token")
	confirmed := c.Query("confirm") == "true"

	if err := h.feed.DeletePost(c.Request.Context(), token, postID, confirmed); err != nil {
		if errors.Is(err, usecase.ErrConfirmationRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to delete post %s: %v", postID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}
