package translator

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/application/appctx"
	"github.com/omnihive/backend/internal/application/registry"
	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/internal/domain/ports"
	"github.com/omnihive/backend/pkg/constants"
	apperrors "github.com/omnihive/backend/pkg/errors"
	"github.com/omnihive/backend/pkg/expression"
)

// Access failure reasons. Clients match on the [ohAccessError] marker.
const (
	ReasonNoTokenWorker = "No token worker defined."
	ReasonInvalidToken  = "Access token is invalid or expired."
)

// Authorize is the single security gate run before any data access.
// The disableSecurity flag is evaluated for scope; an expression that fails
// to evaluate leaves security on.
func Authorize(ctx context.Context, snap *appctx.Snapshot, gctx models.GraphContext, scope expression.FlagScope, logger logrus.FieldLogger) error {
	disabled, err := snap.Flags.Enabled(constants.FeatureDisableSecurity, scope)
	if err != nil && logger != nil {
		logger.WithError(err).Warn("⚠️ disableSecurity flag could not be evaluated, security stays on")
	}
	if disabled {
		return nil
	}

	tokenWorker, ok := registry.ResolveAs[ports.TokenWorker](snap.Registry, constants.WorkerKindToken)
	if !ok {
		return apperrors.NewAccessDeniedError(ReasonNoTokenWorker)
	}

	if gctx.Access == "" {
		return apperrors.NewAccessDeniedError(ReasonInvalidToken)
	}

	valid, err := tokenWorker.Verify(ctx, gctx.Access)
	if err != nil || !valid {
		return apperrors.NewAccessDeniedError(ReasonInvalidToken)
	}
	return nil
}
