package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/modomarket/modomarket-backend/api/middleware"
	pkgerrors "github.com/modomarket/modomarket-backend/pkg/errors"
)

// ActorID resolves the authenticated user's id from the request context.
func ActorID(r *http.Request) (uuid.UUID, error) {
	if r == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor id")
	}
	return userID, nil
}
