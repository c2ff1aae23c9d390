package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"postcard/internal/entity"
	"postcard/internal/usecase"
	"postcard/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockFeedUseCase is a mock implementation of FeedUseCase
type MockFeedUseCase struct {
	mock.Mock
}

func (m *MockFeedUseCase) ListPosts(ctx context.Context, token string) ([]*entity.Post, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockFeedUseCase) Filter(posts []*entity.Post, query string) []*entity.Post {
	args := m.Called(posts, query)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*entity.Post)
}

func (m *MockFeedUseCase) CreatePost(ctx context.Context, token string, postType entity.PostType, caption, tagsText string, imageURLs []string) (*entity.Post, error) {
	args := m.Called(ctx, token, postType, caption, tagsText, imageURLs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockFeedUseCase) ViewState(postID string) (usecase.PostViewState, bool) {
	args := m.Called(postID)
	return args.Get(0).(usecase.PostViewState), args.Bool(1)
}

func (m *MockFeedUseCase) SelectDisplayMode(postID string, mode usecase.DisplayMode) {
	m.Called(postID, mode)
}

func (m *MockFeedUseCase) Advance(postID string, dir usecase.Direction) int {
	args := m.Called(postID, dir)
	return args.Int(0)
}

func (m *MockFeedUseCase) OpenMenu(postID string) {
	m.Called(postID)
}

func (m *MockFeedUseCase) ToggleSidePanel() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockFeedUseCase) SidePanelOpen() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockFeedUseCase) Dismiss() {
	m.Called()
}

func (m *MockFeedUseCase) BeginEdit(postID string) (usecase.EditDraft, error) {
	args := m.Called(postID)
	return args.Get(0).(usecase.EditDraft), args.Error(1)
}

func (m *MockFeedUseCase) UpdateDraft(postID, caption, tagsText string) error {
	args := m.Called(postID, caption, tagsText)
	return args.Error(0)
}

func (m *MockFeedUseCase) CancelEdit(postID string) {
	m.Called(postID)
}

func (m *MockFeedUseCase) CommitEdit(ctx context.Context, token, postID string) error {
	args := m.Called(ctx, token, postID)
	return args.Error(0)
}

func (m *MockFeedUseCase) DeletePost(ctx context.Context, token, postID string, confirmed bool) error {
	args := m.Called(ctx, token, postID, confirmed)
	return args.Error(0)
}

var _ usecase.FeedUseCase = (*MockFeedUseCase)(nil)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func gridState() usecase.PostViewState {
	return usecase.PostViewState{DisplayMode: usecase.ModeGrid}
}

func TestListPosts_Success(t *testing.T) {
	mockFeed := new(MockFeedUseCase)
	handler := NewFeedHandler(mockFeed, logger.New())

	router := setupTestRouter()
	router.GET("/posts", func(c *gin.Context) {
		c.Set("token", "tok")
		handler.ListPosts(c)
	})

	joined := "https://cdn/a.jpg,https://cdn/b.jpg"
	mockPosts := []*entity.Post{
		{ID: "post-1", UserID: "creator-1", PostType: entity.PostTypeStory, ImageURL: &joined, Tags: []string{"travel"}},
		{ID: "post-2", UserID: "creator-2", PostType: entity.PostTypePhoto},
	}

	mockFeed.On("ListPosts", mock.Anything, "tok").Return(mockPosts, nil)
	mockFeed.On("Filter", mockPosts, "").Return(mockPosts)
	mockFeed.On("ViewState", "post-1").Return(gridState(), true)
	mockFeed.On("ViewState", "post-2").Return(gridState(), true)
	mockFeed.On("SidePanelOpen").Return(false)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	posts := response["posts"].([]interface{})
	assert.Equal(t, 2, len(posts))

	first := posts[0].(map[string]interface{})
	urls := first["image_urls"].([]interface{})
	assert.Equal(t, 2, len(urls))
	assert.Equal(t, true, first["multi_image"])

	mockFeed.AssertExpectations(t)
}

func TestListPosts_FilterPassedThrough(t *testing.T) {
	mockFeed := new(MockFeedUseCase)
	handler := NewFeedHandler(mockFeed, logger.New())

	router := setupTestRouter()
	router.GET("/posts", handler.ListPosts)

	mockPosts := []*entity.Post{{ID: "post-1", Tags: []string{"travel"}}, {ID: "post-2"}}
	filtered := mockPosts[:1]

	mockFeed.On("ListPosts", mock.Anything, "").Return(mockPosts, nil)
	mockFeed.On("Filter", mockPosts, "travel").Return(filtered)
	mockFeed.On("ViewState", "post-1").Return(gridState(), true)
	mockFeed.On("SidePanelOpen").Return(false)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts?q=travel", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(1), response["count"])

	mockFeed.AssertExpectations(t)
}

func TestListPosts_UpstreamFailure(t *testing.T) {
	mockFeed := new(MockFeedUseCase)
	handler := NewFeedHandler(mockFeed, logger.New())

	router := setupTestRouter()
	router.GET("/posts", handler.ListPosts)

	mockFeed.On("ListPosts", mock.Anything, "").Return(nil, errors.New("content api unreachable"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/posts", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	mockFeed.AssertExpectations(t)
}

func TestSelectDisplayMode_Success(t *testing.T) {
	mockFeed := new(MockFeedUseCase)
	handler := NewFeedHandler(mockFeed, logger.New())

	router := setupTestRouter()
	router.POST("/posts/:id/display-mode", handler.SelectDisplayMode)

	mockFeed.On("SelectDisplayMode", "post-1", usecase.ModeCarousel).Return()
	mockFeed.On("ViewState", "post-1").Return(usecase.PostViewState{DisplayMode: usecase.ModeCarousel}, true)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts/post-1/display-mode", bytes.NewBufferString(`{"mode":"carousel"}`))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockFeed.AssertExpectations(t)
}

func TestSelectDisplayMode_InvalidMode(t *testing.T) {
	mockFeed := new(MockFeedUseCase)
	handler := NewFeedHandler(mockFeed, logger.New())

	router := setupTestRouter()
	router.POST("/posts/:id/display-mode", handler.SelectDisplayMode)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts/post-1/display-mode", bytes.NewBufferString(`{"mode":"mosaic"}`))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockFeed.AssertNotCalled(t, "SelectDisplayMode", mock.Anything, mock.Anything)
}

func TestAdvance_Success(t *testing.T) {
	mockFeed := new(MockFeedUseCase)
	handler := NewFeedHandler(mockFeed, logger.New())

	router := setupTestRouter()
	router.POST("/posts/:id/advance", handler.Advance)

	mockFeed.On("Advance", "post-1", usecase.DirectionNext).Return(2)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts/post-1/advance", bytes.NewBufferString(`{"direction":"next"}`))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(2), response["carousel_index"])

	mockFeed.AssertExpectations(t)
}

func TestOpenMenu_Success(t *testing.T) {
	mockFeed := new(MockFeedUseCase)
	handler := NewFeedHandler(mockFeed, logger.New())

	router := setupTestRouter()
	router.POST("/posts/:id/menu", handler.OpenMenu)

	mockFeed.On("OpenMenu", "post-1").Return()
	mockFeed.On("ViewState", "post-1").Return(usecase.PostViewState{DisplayMode: usecase.ModeGrid, MenuOpen: true}, true)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts/post-1/menu", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockFeed.AssertExpectations(t)
}

func TestToggleSidePanel_Success(t *testing.T) {
	mockFeed := new(MockFeedUseCase)
	handler := NewFeedHandler(mockFeed, logger.New())

	router := setupTestRouter()
	router.POST("/side-panel", handler.ToggleSidePanel)

	mockFeed.On("ToggleSidePanel").Return(true)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/side-panel", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, true, response["side_panel_open"])

	mockFeed.AssertExpectations(t)
}

func TestDismiss_Success(t *testing.T) {
	mockFeed := new(MockFeedUseCase)
	handler := NewFeedHandler(mockFeed, logger.New())

	router := setupTestRouter()
	router.POST("/dismiss", handler.Dismiss)

	mockFeed.On("Dismiss").Return()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/dismiss", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockFeed.AssertExpectations(t)
}

func TestBeginEdit_Success(t *testing.T) {
	mockFeed := new(MockFeedUseCase)
	handler := NewFeedHandler(mockFeed, logger.New())

	router := setupTestRouter()
	router.POST("/posts/:id/edit", handler.BeginEdit)

	draft := usecase.EditDraft{Caption: "old caption", TagsText: "travel, friends"}
	mockFeed.On("BeginEdit", "post-1").Return(draft, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts/post-1/edit", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	body := response["edit_draft"].(map[string]interface{})
	assert.Equal(t, "old caption", body["caption"])
	assert.Equal(t, "travel, friends", body["tags_text"])

	mockFeed.AssertExpectations(t)
}

func TestBeginEdit_NotFound(t *testing.T) {
	mockFeed := new(MockFeedUseCase)
	handler := NewFeedHandler(mockFeed, logger.New())

	router := setupTestRouter()
	router.POST("/posts/:id/edit", handler.BeginEdit)

	mockFeed.On("BeginEdit", "ghost").Return(usecase.EditDraft{}, usecase.ErrPostNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts/ghost/edit", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockFeed.AssertExpectations(t)
}

func TestUpdatePost_Success(t *testing.T) {
	mockFeed := new(MockFeedUseCase)
	handler := NewFeedHandler(mockFeed, logger.New())

	router := setupTestRouter()
	router.PATCH("/posts/:id", func(c *gin.Context) {
		c.Set("token", "tok")
		handler.UpdatePost(c)
	})

	mockFeed.On("UpdateDraft", "post-1", "new caption", "a, b").Return(nil)
	mockFeed.On("CommitEdit", mock.Anything, "tok", "post-1").Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/posts/post-1", bytes.NewBufferString(`{"caption":"new caption","tags":"a, b"}`))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockFeed.AssertExpectations(t)
}

func TestUpdatePost_NoEditInProgress(t *testing.T) {
	mockFeed := new(MockFeedUseCase)
	handler := NewFeedHandler(mockFeed, logger.New())

	router := setupTestRouter()
	router.PATCH("/posts/:id", handler.UpdatePost)

	mockFeed.On("UpdateDraft", "post-1", "x", "").Return(usecase.ErrNoDraft)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/posts/post-1", bytes.NewBufferString(`{"caption":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockFeed.AssertNotCalled(t, "CommitEdit", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdatePost_CommitFailure(t *testing.T) {
	mockFeed := new(MockFeedUseCase)
	handler := NewFeedHandler(mockFeed, logger.New())

	router := setupTestRouter()
	router.PATCH("/posts/:id", handler.UpdatePost)

	mockFeed.On("UpdateDraft", "post-1", "x", "").Return(nil)
	mockFeed.On("CommitEdit", mock.Anything, "", "post-1").Return(errors.New("backend down"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/posts/post-1", bytes.NewBufferString(`{"caption":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	mockFeed.AssertExpectations(t)
}

func TestCancelEdit_Success(t *testing.T) {
	mockFeed := new(MockFeedUseCase)
	handler := NewFeedHandler(mockFeed, logger.New())

	router := setupTestRouter()
	router.POST("/posts/:id/edit/cancel", handler.CancelEdit)

	mockFeed.On("CancelEdit", "post-1").Return()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/posts/post-1/edit/cancel", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockFeed.AssertExpectations(t)
}

func TestDeletePost_WithoutConfirmation(t *testing.T) {
	mockFeed := new(MockFeedUseCase)
	handler := NewFeedHandler(mockFeed, logger.New())

	router := setupTestRouter()
	router.DELETE("/posts/:id", handler.DeletePost)

	mockFeed.On("DeletePost", mock.Anything, "", "post-1", false).Return(usecase.ErrConfirmationRequired)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/posts/post-1", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockFeed.AssertExpectations(t)
}

func TestDeletePost_Confirmed(t *testing.T) {
	mockFeed := new(MockFeedUseCase)
	handler := NewFeedHandler(mockFeed, logger.New())

	router := setupTestRouter()
	router.DELETE("/posts/:id", func(c *gin.Context) {
		c.Set("token", "tok")
		handler.DeletePost(c)
	})

	mockFeed.On("DeletePost", mock.Anything, "tok", "post-1", true).Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/posts/post-1?confirm=true", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockFeed.AssertExpectations(t)
}

func TestDeletePost_UpstreamFailure(t *testing.T) {
	mockFeed := new(MockFeedUseCase)
	handler := NewFeedHandler(mockFeed, logger.New())

	router := setupTestRouter()
	router.DELETE("/posts/:id", handler.DeletePost)

	mockFeed.On("DeletePost", mock.Anything, "", "post-1", true).Return(errors.New("forbidden"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/posts/post-1?confirm=true", nil)

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	mockFeed.AssertExpectations(t)
}

func TestNewFeedHandler(t *testing.T) {
	handler := NewFeedHandler(new(MockFeedUseCase), logger.New())
	assert.NotNil(t, handler)
}
