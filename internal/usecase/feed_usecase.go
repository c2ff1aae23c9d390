package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"postcard/internal/entity"
	"postcard/pkg/logger"
)

// MaxCaptionLength bounds story content
const MaxCaptionLength = 1000

// ContentAPI is the external REST service owning post records.
type ContentAPI interface {
	ListPosts(ctx context.Context, token string) ([]*entity.Post, error)
	CreatePost(ctx context.Context, token string, pc *entity.PostCreation) (*entity.Post, error)
	UpdatePost(ctx context.Context, token, postID string, pu *entity.PostUpdate) (*entity.Post, error)
	DeletePost(ctx context.Context, token, postID string) error
}

// FeedUseCase manages the visible post list, its transient per-post view
// state, and optimistic edit/delete against the content API.
type FeedUseCase interface {
	ListPosts(ctx context.Context, token string) ([]*entity.Post, error)
	Filter(posts []*entity.Post, query string) []*entity.Post
	CreatePost(ctx context.Context, token string, postType entity.PostType, caption, tagsText string, imageURLs []string) (*entity.Post, error)

	ViewState(postID string) (PostViewState, bool)
	SelectDisplayMode(postID string, mode DisplayMode)
	Advance(postID string, dir Direction) int
	OpenMenu(postID string)
	ToggleSidePanel() bool
	SidePanelOpen() bool
	Dismiss()

	BeginEdit(postID string) (EditDraft, error)
	UpdateDraft(postID, caption, tagsText string) error
	CancelEdit(postID string)
	CommitEdit(ctx context.Context, token, postID string) error
	DeletePost(ctx context.Context, token, postID string, confirmed bool) error
}

type feedUseCase struct {
	api    ContentAPI
	states *ViewStateStore
	logger *logger.Logger

	mu    sync.Mutex
	posts map[string]*entity.Post
}

func NewFeedUseCase(api ContentAPI, log *logger.Logger) FeedUseCase {
	return &feedUseCase{
		api:    api,
		states: NewViewStateStore(),
		logger: log,
		posts:  make(map[string]*entity.Post),
	}
}

// ListPosts fetches the feed and re-seeds all per-post view state.
func (uc *feedUseCase) ListPosts(ctx context.Context, token string) ([]*entity.Post, error) {
	posts, err := uc.api.ListPosts(ctx, token)
	if err != nil {
		return nil, err
	}

	uc.mu.Lock()
	uc.posts = make(map[string]*entity.Post, len(posts))
	for _, post := range posts {
		uc.posts[post.ID] = post
	}
	uc.mu.Unlock()

	uc.states.Reset(posts)
	return posts, nil
}

// Filter returns the posts matching the query. Tags are checked first;
// the caption is only consulted for posts that have no tags. A blank
// query returns the input unchanged.
func (uc *feedUseCase) Filter(posts []*entity.Post, query string) []*entity.Post {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return posts
	}

	filtered := make([]*entity.Post, 0, len(posts))
	for _, post := range posts {
		if len(post.Tags) > 0 {
			for _, tag := range post.Tags {
				if strings.Contains(strings.ToLower(tag), q) {
					filtered = append(filtered, post)
					break
				}
			}
			continue
		}
		if post.Caption != nil && strings.Contains(strings.ToLower(*post.Caption), q) {
			filtered = append(filtered, post)
		}
	}
	return filtered
}

// ValidateCaption rejects a blank caption for story posts and an
// over-limit caption for any post type. The limit counts characters,
// not bytes.
func ValidateCaption(postType entity.PostType, caption string) error {
	caption = strings.TrimSpace(caption)
	if postType == entity.PostTypeStory && caption == "" {
		return ErrCaptionRequired
	}
	if utf8.RuneCountInString(caption) > MaxCaptionLength {
		return ErrCaptionTooLong
	}
	return nil
}

// CreatePost packages caption, tags and media URLs into a content API
// create call, then refreshes the feed.
func (uc *feedUseCase) CreatePost(ctx context.Context, token string, postType entity.PostType, caption, tagsText string, imageURLs []string) (*entity.Post, error) {
	caption = strings.TrimSpace(caption)

	if err := ValidateCaption(postType, caption); err != nil {
		return nil, err
	}

	pc := &entity.PostCreation{PostType: postType}
	if caption != "" {
		pc.Caption = &caption
	}
	if len(imageURLs) > 0 {
		joined := entity.JoinImageURLs(imageURLs)
		pc.ImageURL = &joined
	}
	pc.Tags = entity.ParseTags(tagsText)

	post, err := uc.api.CreatePost(ctx, token, pc)
	if err != nil {
		return nil, err
	}

	if _, err := uc.ListPosts(ctx, token); err != nil {
		// The post exists; a stale feed is the lesser problem
		uc.logger.Warn("Failed to refresh feed after create: %v", err)
	}
	return post, nil
}

func (uc *feedUseCase) ViewState(postID string) (PostViewState, bool) {
	return uc.states.Get(postID)
}

func (uc *feedUseCase) SelectDisplayMode(postID string, mode DisplayMode) {
	uc.states.SelectDisplayMode(postID, mode)
}

func (uc *feedUseCase) Advance(postID string, dir Direction) int {
	return uc.states.Advance(postID, dir)
}

func (uc *feedUseCase) OpenMenu(postID string) {
	uc.states.OpenMenu(postID)
}

func (uc *feedUseCase) ToggleSidePanel() bool {
	return uc.states.ToggleSidePanel()
}

func (uc *feedUseCase) SidePanelOpen() bool {
	return uc.states.SidePanelOpen()
}

// Dismiss is the global outside-click action.
func (uc *feedUseCase) Dismiss() {
	uc.states.DismissOverlays()
}

// BeginEdit opens a draft seeded from the post's current caption and
// comma-joined tags.
func (uc *feedUseCase) BeginEdit(postID string) (EditDraft, error) {
	uc.mu.Lock()
	post, ok := uc.posts[postID]
	uc.mu.Unlock()
	if !ok {
		return EditDraft{}, ErrPostNotFound
	}

	caption := ""
	if post.Caption != nil {
		caption = *post.Caption
	}
	uc.states.BeginEdit(postID, caption, entity.JoinTags(post.Tags))

	draft, _ := uc.states.Draft(postID)
	return draft, nil
}

func (uc *feedUseCase) UpdateDraft(postID, caption, tagsText string) error {
	if !uc.states.UpdateDraft(postID, caption, tagsText) {
		return ErrNoDraft
	}
	return nil
}

func (uc *feedUseCase) CancelEdit(postID string) {
	uc.states.ClearDraft(postID)
}

// CommitEdit sends the draft as a partial update. On success the feed is
// refreshed and the draft cleared; on failure the draft stays so the user
// can retry without re-typing.
func (uc *feedUseCase) CommitEdit(ctx context.Context, token, postID string) error {
	draft, ok := uc.states.Draft(postID)
	if !ok {
		return ErrNoDraft
	}

	pu := &entity.PostUpdate{}
	caption := strings.TrimSpace(draft.Caption)
	if caption != "" {
		pu.Caption = &caption
	}
	pu.Tags = entity.ParseTags(draft.TagsText)

	if _, err := uc.api.UpdatePost(ctx, token, postID, pu); err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	if _, err := uc.ListPosts(ctx, token); err != nil {
		uc.logger.Warn("Failed to refresh feed after edit: %v", err)
	}
	uc.states.ClearDraft(postID)
	return nil
}

// DeletePost removes a post after explicit confirmation. On failure the
// post stays visible.
func (uc *feedUseCase) DeletePost(ctx context.Context, token, postID string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}

	if err := uc.api.DeletePost(ctx, token, postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	uc.states.CloseMenus()
	if _, err := uc.ListPosts(ctx, token); err != nil {
		uc.logger.Warn("Failed to refresh feed after delete: %v", err)
	}
	return nil
}
