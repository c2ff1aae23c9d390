package entity

import (
	"strings"
	"time"
)

type PostType string

const (
	PostTypePhoto PostType = "photo"
	PostTypeStory PostType = "story"
)

// Post mirrors the record owned by the content API. Caption, ImageURL and
// Tags are nullable on the wire, so downstream code never reads a field
// the API did not send.
type Post struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Caption    *string    `json:"caption"`
	PostType   PostType   `json:"post_type"`
	ImageURL   *string    `json:"image_url"`
	Tags       []string   `json:"tags"`
	LikesCount int        `json:"likes_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

// PostCreation is the body of a content API create call.
type PostCreation struct {
	Caption  *string  `json:"caption"`
	PostType PostType `json:"post_type"`
	ImageURL *string  `json:"image_url"`
	Tags     []string `json:"tags"`
}

// PostUpdate is a partial update of caption and tags. Nil values are
// transmitted as explicit nulls.
type PostUpdate struct {
	Caption *string  `json:"caption"`
	Tags    []string `json:"tags"`
}

// ImageURLs splits the stored image_url field on the comma separator the
// content API uses to pack a story's ordered URL list into one column.
func (p *Post) ImageURLs() []string {
	if p.ImageURL == nil || *p.ImageURL == "" {
		return nil
	}
	return strings.Split(*p.ImageURL, ",")
}

// MultiImage reports whether the post carries more than one image. The
// presence of a comma is the sole discriminator the feed uses.
func (p *Post) MultiImage() bool {
	return p.ImageURL != nil && strings.Contains(*p.ImageURL, ",")
}

func JoinImageURLs(urls []string) string {
	return strings.Join(urls, ",")
}

// ParseTags turns the comma-delimited editing representation into tag
// tokens: trimmed, empties dropped, duplicates and order preserved.
func ParseTags(text string) []string {
	var tags []string
	for _, raw := range strings.Split(text, ",") {
		tag := strings.TrimSpace(raw)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
