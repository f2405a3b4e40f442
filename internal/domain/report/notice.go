package report

import (
	"context"
	"strings"

	"github.com/travelpkg/backend/internal/domain/shared"
)

// Notice is an announcement shown on the storefront and admin dashboard
type Notice struct {
	shared.BaseEntity
	Title       string
	Content     string
	IsImportant bool
}

// NewNotice creates a notice
func NewNotice(title, content string, important bool) (*Notice, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewValidationError("title", "notice title cannot be empty")
	}
	if len(title) > 200 {
		return nil, shared.NewValidationError("title", "notice title cannot exceed 200 characters")
	}
	return &Notice{
		BaseEntity:  shared.NewBaseEntity(),
		Title:       title,
		Content:     strings.TrimSpace(content),
		IsImportant: important,
	}, nil
}

// NoticeRepository defines the interface for notice persistence
type NoticeRepository interface {
	// FindImportant returns up to limit important notices, newest first
	FindImportant(ctx context.Context, limit int) ([]Notice, error)

	// FindAll finds notices matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Notice, error)

	// Save creates or updates a notice
	Save(ctx context.Context, notice *Notice) error
}
