package contentapi

import (
	"context"
	"net/http"
)

type ProfileUpdate struct {
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// UpdateProfile patches the signed-in user's profile record.
func (c *Client) UpdateProfile(ctx context.Context, token string, update *ProfileUpdate) error {
	resp, err := c.do(ctx, http.MethodPatch, "/api/users/me", token, update)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError("failed to update profile", resp)
	}
	return nil
}
