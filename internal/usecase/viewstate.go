package usecase

import (
	"sync"

	"postcard/internal/entity"
)

type DisplayMode string

const (
	ModeGrid     DisplayMode = "grid"
	ModeCarousel DisplayMode = "carousel"
)

type Direction string

const (
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

// EditDraft buffers a post's caption and tags while the user edits them.
// Tags are edited as one comma-delimited string and parsed back on save.
type EditDraft struct {
	Caption  string `json:"caption"`
	TagsText string `json:"tags_text"`
}

// PostViewState is the transient UI state of one rendered post. It lives
// only as long as the post is in the visible list and is reset on every
// feed refresh.
type PostViewState struct {
	DisplayMode   DisplayMode `json:"display_mode"`
	CarouselIndex int         `json:"carousel_index"`
	MenuOpen      bool        `json:"menu_open"`
	Draft         *EditDraft  `json:"edit_draft,omitempty"`
}

// ViewStateStore holds per-post view state plus the process-wide overlay
// flags (open menu, side panel). At most one post menu is open at a time;
// the store enforces that, not the individual post.
type ViewStateStore struct {
	mu            sync.Mutex
	states        map[string]*PostViewState
	imageCounts   map[string]int
	sidePanelOpen bool
}

func NewViewStateStore() *ViewStateStore {
	return &ViewStateStore{
		states:      make(map[string]*PostViewState),
		imageCounts: make(map[string]int),
	}
}

// Reset re-seeds state for the given post list. Every post starts over at
// defaults; state for posts no longer visible is dropped.
func (s *ViewStateStore) Reset(posts []*entity.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states = make(map[string]*PostViewState, len(posts))
	s.imageCounts = make(map[string]int, len(posts))
	for _, post := range posts {
		s.states[post.ID] = &PostViewState{DisplayMode: ModeGrid}
		s.imageCounts[post.ID] = len(post.ImageURLs())
	}
}

// ensure creates state lazily on first touch.
func (s *ViewStateStore) ensure(postID string) *PostViewState {
	state, ok := s.states[postID]
	if !ok {
		state = &PostViewState{DisplayMode: ModeGrid}
		s.states[postID] = state
	}
	return state
}

// Get returns a copy of the post's current view state.
func (s *ViewStateStore) Get(postID string) (PostViewState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[postID]
	if !ok {
		return PostViewState{DisplayMode: ModeGrid}, false
	}
	return *state, true
}

// SelectDisplayMode toggles between grid and carousel. Entering carousel
// starts at the first image. Mode is only meaningful for multi-image
// posts; single-image posts stay in grid.
func (s *ViewStateStore) SelectDisplayMode(postID string, mode DisplayMode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mode == ModeCarousel && s.imageCounts[postID] <= 1 {
		return
	}

	state := s.ensure(postID)
	if state.DisplayMode == mode {
		return
	}
	state.DisplayMode = mode
	if mode == ModeCarousel {
		state.CarouselIndex = 0
	}
}

// Advance moves the carousel index one step, wrapping at both ends.
// No-op for posts with at most one image.
func (s *ViewStateStore) Advance(postID string, dir Direction) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.imageCounts[postID]
	state := s.ensure(postID)
	if count <= 1 {
		return state.CarouselIndex
	}

	switch dir {
	case DirectionNext:
		state.CarouselIndex = (state.CarouselIndex + 1) % count
	case DirectionPrev:
		state.CarouselIndex = (state.CarouselIndex - 1 + count) % count
	}
	return state.CarouselIndex
}

// OpenMenu opens one post's menu and closes every other overlay.
func (s *ViewStateStore) OpenMenu(postID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, state := range s.states {
		state.MenuOpen = id == postID
	}
	s.ensure(postID).MenuOpen = true
	s.sidePanelOpen = false
}

// CloseMenus closes any open post menu.
func (s *ViewStateStore) CloseMenus() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, state := range s.states {
		state.MenuOpen = false
	}
}

// ToggleSidePanel flips the side panel; opening it closes all post menus.
func (s *ViewStateStore) ToggleSidePanel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sidePanelOpen = !s.sidePanelOpen
	if s.sidePanelOpen {
		for _, state := range s.states {
			state.MenuOpen = false
		}
	}
	return s.sidePanelOpen
}

func (s *ViewStateStore) SidePanelOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sidePanelOpen
}

// DismissOverlays is the single global "outside click" action: it closes
// every open menu and the side panel in one step.
func (s *ViewStateStore) DismissOverlays() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, state := range s.states {
		state.MenuOpen = false
	}
	s.sidePanelOpen = false
}

// BeginEdit opens a draft seeded from the post's current values and
// closes the post's menu.
func (s *ViewStateStore) BeginEdit(postID, caption, tagsText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.ensure(postID)
	state.Draft = &EditDraft{Caption: caption, TagsText: tagsText}
	state.MenuOpen = false
}

// UpdateDraft replaces the draft buffer contents. Returns false when no
// edit is in progress.
func (s *ViewStateStore) UpdateDraft(postID, caption, tagsText string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[postID]
	if !ok || state.Draft == nil {
		return false
	}
	state.Draft.Caption = caption
	state.Draft.TagsText = tagsText
	return true
}

func (s *ViewStateStore) Draft(postID string) (EditDraft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[postID]
	if !ok || state.Draft == nil {
		return EditDraft{}, false
	}
	return *state.Draft, true
}

// ClearDraft discards the edit buffer (cancel, or successful save).
func (s *ViewStateStore) ClearDraft(postID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.states[postID]; ok {
		state.Draft = nil
	}
}
