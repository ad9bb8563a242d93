package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/repositories"
	"github.com/sitebrief/toolboxtalk/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/sitebrief/toolboxtalk/backend/pkg/errors"
)

// SessionAdapter resolves bearer-token hashes to users via the sessions table.
type SessionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSessionAdapter creates a new session adapter.
func NewSessionAdapter(client *postgres.Client) repositories.SessionRepository {
	return &SessionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetUserByTokenHash returns the user owning an unexpired session.
func (a *SessionAdapter) GetUserByTokenHash(ctx context.Context, tokenHash string) (*entities.User, error) {
	query, args, err := a.db.Select(
		goqu.I("u.id"),
		goqu.I("u.email"),
		goqu.I("u.first_name"),
		goqu.I("u.last_name"),
		goqu.I("u.created_at"),
		goqu.I("u.updated_at"),
	).
		From(goqu.T("sessions").As("s")).
		Join(goqu.T("users").As("u"), goqu.On(goqu.Ex{"s.user_id": goqu.I("u.id")})).
		Where(
			goqu.Ex{"s.token_hash": tokenHash},
			goqu.I("s.expires_at").Gt(time.Now().UTC()),
		).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build session query", err)
	}

	user := &entities.User{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewUnauthorizedError("session not found or expired")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to resolve session", err)
	}

	return user, nil
}
