package repositories

import (
	"context"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
)

// SessionRepository resolves bearer tokens to users.
type SessionRepository interface {
	// GetUserByTokenHash returns the user owning an unexpired session with
	// the given token hash
	GetUserByTokenHash(ctx context.Context, tokenHash string) (*entities.User, error)
}
