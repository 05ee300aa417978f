package api

import (
	"context"
	"net/http"

	"github.com/robby/bugtracker/internal/domain"
)

// ListComments returns the comments attached to a bug, oldest first as the
// server orders them.
func (c *Client) ListComments(ctx context.Context, bugID int) ([]domain.Comment, error) {
	var comments []domain.Comment
	if err := c.do(ctx, "listComments", MsgListComments, http.MethodGet, bugPath(bugID)+"/comments", nil, &comments); err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}

// AddComment posts a comment on a bug. The created comment is returned when
// the server echoes it back; an empty body yields a zero Comment.
func (c *Client) AddComment(ctx context.Context, bugID int, in domain.CommentInput) (domain.Comment, error) {
	var comment domain.Comment
	err := c.doAllowEmpty(ctx, "addComment", MsgAddComment, http.MethodPost, bugPath(bugID)+"/comments", in, &comment)
	return comment, err
}
