package translator

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/application/registry"
	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/internal/domain/ports"
	"github.com/omnihive/backend/pkg/constants"
	apperrors "github.com/omnihive/backend/pkg/errors"
	"github.com/omnihive/backend/pkg/expression"
)

// ProcedureRequest calls one procedure or function. Name is "schema.name",
// or the bare name for catalogs without schemas.
type ProcedureRequest struct {
	Worker string
	Name   string
	Args   map[string]any
}

// CustomSQLRequest carries an encrypted SQL batch
type CustomSQLRequest struct {
	Worker string
	SQL    string
}

// Procedure calls a registered procedure by exact name and returns every
// result set it produced
func (t *Translator) Procedure(ctx context.Context, req ProcedureRequest, gctx models.GraphContext) ([][]map[string]any, error) {
	o, err := t.prepare(ctx, req.Worker, "", OpProcedure, gctx)
	if err != nil {
		return nil, err
	}

	schema, ok := o.snap.Schema(o.worker)
	if !ok {
		return nil, apperrors.NewProcedureNotFoundError(o.worker, req.Name)
	}
	signature, ok := schema.ProcGroups()[req.Name]
	if !ok || len(signature) == 0 {
		return nil, apperrors.NewProcedureNotFoundError(o.worker, req.Name)
	}

	return o.db.ExecuteProcedure(ctx, signature, procArguments(req.Args))
}

// procArguments orders args by name; strings are flagged for quoting
func procArguments(args map[string]any) []models.ProcArgument {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]models.ProcArgument, 0, len(names))
	for _, name := range names {
		v := args[name]
		_, isString := v.(string)
		out = append(out, models.ProcArgument{Name: name, Value: v, IsString: isString})
	}
	return out
}

// CustomSQL decrypts and runs a SQL batch verbatim. The encryption worker is
// checked before the database worker.
func (t *Translator) CustomSQL(ctx context.Context, req CustomSQLRequest, gctx models.GraphContext) ([][]map[string]any, error) {
	snap := t.source.Snapshot()

	scope := expression.FlagScope{Worker: req.Worker, Operation: OpCustomSQL}
	if err := Authorize(ctx, snap, gctx, scope, t.logger); err != nil {
		return nil, err
	}

	enc, ok := registry.ResolveAs[ports.EncryptionWorker](snap.Registry, constants.WorkerKindEncryption)
	if !ok {
		return nil, apperrors.NewEncryptionWorkerRequiredError()
	}
	db, ok := registry.ResolveAs[ports.DatabaseWorker](snap.Registry, constants.WorkerKindDatabase, req.Worker)
	if !ok {
		return nil, apperrors.NewDatabaseWorkerRequiredError(req.Worker)
	}

	plain, err := enc.SymmetricDecrypt(req.SQL)
	if err != nil {
		t.logger.WithFields(logrus.Fields{"worker": req.Worker}).WithError(err).Warn("⚠️ Custom SQL payload rejected")
		return nil, apperrors.NewValidationError("sql", "payload could not be decrypted")
	}

	return db.ExecuteQuery(ctx, plain)
}
