package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/robby/bugtracker/internal/domain"
)

// Fixed failure messages, one per operation.
const (
	MsgListBugs     = "Failed to fetch bugs"
	MsgGetBug       = "Failed to fetch bug details"
	MsgCreateBug    = "Failed to create bug"
	MsgUpdateBug    = "Failed to update bug"
	MsgDeleteBug    = "Failed to delete bug"
	MsgListComments = "Failed to fetch comments"
	MsgAddComment   = "Failed to add comment"
	MsgHealth       = "Failed to check API health"
)

// ListBugs returns every bug.
func (c *Client) ListBugs(ctx context.Context) ([]domain.Bug, error) {
	var bugs []domain.Bug
	if err := c.do(ctx, "listBugs", MsgListBugs, http.MethodGet, "/bugs", nil, &bugs); err != nil {
		return nil, err
	}
	if bugs == nil {
		// The backend encodes an empty table as null.
		bugs = []domain.Bug{}
	}
	return bugs, nil
}

// GetBug returns one bug by id.
func (c *Client) GetBug(ctx context.Context, id int) (domain.Bug, error) {
	var bug domain.Bug
	err := c.do(ctx, "getBug", MsgGetBug, http.MethodGet, bugPath(id), nil, &bug)
	return bug, err
}

// CreateBug posts a new bug and returns it with its server-assigned id.
func (c *Client) CreateBug(ctx context.Context, in domain.BugInput) (domain.Bug, error) {
	var bug domain.Bug
	err := c.do(ctx, "createBug", MsgCreateBug, http.MethodPost, "/bugs", in, &bug)
	return bug, err
}

// UpdateBug applies a partial update and returns the server's copy.
// A missing id fails with MsgUpdateBug (404).
func (c *Client) UpdateBug(ctx context.Context, id int, patch domain.BugPatch) (domain.Bug, error) {
	var bug domain.Bug
	err := c.do(ctx, "updateBug", MsgUpdateBug, http.MethodPut, bugPath(id), patch, &bug)
	return bug, err
}

// DeleteBug removes a bug. Deleting an id that no longer exists is an error.
func (c *Client) DeleteBug(ctx context.Context, id int) error {
	return c.do(ctx, "deleteBug", MsgDeleteBug, http.MethodDelete, bugPath(id), nil, nil)
}

// Health pings the API and returns its reported status.
func (c *Client) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, "health", MsgHealth, http.MethodGet, "/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func bugPath(id int) string {
	return fmt.Sprintf("/bugs/%d", id)
}
