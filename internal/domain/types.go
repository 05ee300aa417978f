// Package domain defines the bug tracker's core types: bugs, comments and the
// fixed status/priority enumerations. These mirror the REST API's JSON shapes.
package domain

import (
	"errors"
	"strings"
	"time"
)

// Status is the lifecycle state of a bug.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
)

// Priority is the urgency of a bug.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Defaults applied when a bug is created.
const (
	DefaultStatus   = StatusOpen
	DefaultPriority = PriorityMedium
)

var (
	// ErrTitleRequired indicates a blank title.
	ErrTitleRequired = errors.New("title is required")
	// ErrDescriptionRequired indicates a blank description.
	ErrDescriptionRequired = errors.New("description is required")
	// ErrInvalidStatus indicates a status outside the enumeration.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidPriority indicates a priority outside the enumeration.
	ErrInvalidPriority = errors.New("invalid priority")
	// ErrAuthorRequired indicates a blank comment author.
	ErrAuthorRequired = errors.New("author is required")
	// ErrContentRequired indicates a blank comment body.
	ErrContentRequired = errors.New("content is required")
)

// Statuses returns all statuses in display order.
func Statuses() []Status {
	return []Status{StatusOpen, StatusInProgress, StatusResolved}
}

// Priorities returns all priorities in display order.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses() {
		if s == v {
			return true
		}
	}
	return false
}

// Valid reports whether p is one of the enumerated priorities.
func (p Priority) Valid() bool {
	for _, v := range Priorities() {
		if p == v {
			return true
		}
	}
	return false
}

// Bug is a tracked defect. ID and timestamps are assigned by the server.
type Bug struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// BugInput is a bug without its server-assigned identity, as sent on create.
type BugInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
}

// Validate checks required text fields and enumerations.
func (in BugInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(in.Description) == "" {
		return ErrDescriptionRequired
	}
	if !in.Status.Valid() {
		return ErrInvalidStatus
	}
	if !in.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

// BugPatch is a partial bug update. Nil fields are omitted from the request.
type BugPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
}

// PatchFrom builds a patch that sets every field of in.
func PatchFrom(in BugInput) BugPatch {
	return BugPatch{
		Title:       &in.Title,
		Description: &in.Description,
		Status:      &in.Status,
		Priority:    &in.Priority,
	}
}

// Apply returns a copy of b with the patch's non-nil fields applied.
func (p BugPatch) Apply(b Bug) Bug {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.Priority != nil {
		b.Priority = *p.Priority
	}
	return b
}

// Comment is an immutable note attached to a bug.
type Comment struct {
	ID        string    `json:"id"`
	BugID     string    `json:"bugId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentInput is the body of a new comment.
type CommentInput struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// Validate checks that both author and content are present.
func (in CommentInput) Validate() error {
	if strings.TrimSpace(in.Author) == "" {
		return ErrAuthorRequired
	}
	if strings.TrimSpace(in.Content) == "" {
		return ErrContentRequired
	}
	return nil
}
