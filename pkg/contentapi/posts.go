package contentapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"postcard/internal/entity"
)

func (c *Client) ListPosts(ctx context.Context, token string) ([]*entity.Post, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/posts/", token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("failed to fetch posts", resp)
	}

	var posts []*entity.Post
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, fmt.Errorf("failed to parse posts JSON: %w", err)
	}
	return posts, nil
}

func (c *Client) CreatePost(ctx context.Context, token string, pc *entity.PostCreation) (*entity.Post, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/posts/", token, pc)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, apiError("failed to create post", resp)
	}

	var post entity.Post
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return nil, fmt.Errorf("failed to parse post JSON: %w", err)
	}
	return &post, nil
}

func (c *Client) UpdatePost(ctx context.Context, token, postID string, pu *entity.PostUpdate) (*entity.Post, error) {
	path := fmt.Sprintf("/api/posts/%s/", postID)
	resp, err := c.do(ctx, http.MethodPatch, path, token, pu)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("failed to update post", resp)
	}

	var post entity.Post
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		return nil, fmt.Errorf("failed to parse post JSON: %w", err)
	}
	return &post, nil
}

func (c *Client) DeletePost(ctx context.Context, token, postID string) error {
	path := fmt.Sprintf("/api/posts/%s/", postID)
	resp, err := c.do(ctx, http.MethodDelete, path, token, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return apiError("failed to delete post", resp)
	}
	return nil
}
