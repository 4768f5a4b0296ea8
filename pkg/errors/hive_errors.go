package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AccessErrorMarker prefixes every access failure so clients can tell
// "retry with a fresh token" apart from other failures.
const AccessErrorMarker = "[ohAccessError]"

// ConfigurationError represents a missing mandatory capability or bad settings
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *ConfigurationError) Code() string {
	return "CONFIGURATION_ERROR"
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// SchemaRetrievalError is returned when a catalog query or override script fails
type SchemaRetrievalError struct {
	Worker string
	Reason string
	Cause  error
}

func (e *SchemaRetrievalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("schema retrieval failed for %s: %s: %v", e.Worker, e.Reason, e.Cause)
	}
	return fmt.Sprintf("schema retrieval failed for %s: %s", e.Worker, e.Reason)
}

func (e *SchemaRetrievalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *SchemaRetrievalError) Code() string {
	return "SCHEMA_RETRIEVAL_ERROR"
}

func (e *SchemaRetrievalError) Unwrap() error {
	return e.Cause
}

// NewSchemaRetrievalError creates a new SchemaRetrievalError
func NewSchemaRetrievalError(worker, reason string, cause error) *SchemaRetrievalError {
	return &SchemaRetrievalError{Worker: worker, Reason: reason, Cause: cause}
}

// SchemaFileNotFoundError is returned when an override script path does not exist
type SchemaFileNotFoundError struct {
	Worker string
	Path   string
}

func (e *SchemaFileNotFoundError) Error() string {
	return fmt.Sprintf("schema file for %s not found at %s", e.Worker, e.Path)
}

func (e *SchemaFileNotFoundError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *SchemaFileNotFoundError) Code() string {
	return "SCHEMA_FILE_NOT_FOUND"
}

// NewSchemaFileNotFoundError creates a new SchemaFileNotFoundError
func NewSchemaFileNotFoundError(worker, path string) *SchemaFileNotFoundError {
	return &SchemaFileNotFoundError{Worker: worker, Path: path}
}

// SchemaConflictError is returned when two raw names normalize to the same entity name
type SchemaConflictError struct {
	Table      string
	EntityName string
	Columns    []string
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("schema conflict in table %s: columns %s all normalize to %s",
		e.Table, strings.Join(e.Columns, ", "), e.EntityName)
}

func (e *SchemaConflictError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *SchemaConflictError) Code() string {
	return "SCHEMA_CONFLICT"
}

// NewSchemaConflictError creates a new SchemaConflictError
func NewSchemaConflictError(table, entityName string, columns ...string) *SchemaConflictError {
	return &SchemaConflictError{Table: table, EntityName: entityName, Columns: columns}
}

// SchemaMergeConflictError is returned when two merged schemas define the same root field
type SchemaMergeConflictError struct {
	TypeName  string
	FieldName string
}

func (e *SchemaMergeConflictError) Error() string {
	if e.FieldName == "" {
		return fmt.Sprintf("schema merge conflict: type %s is defined twice", e.TypeName)
	}
	return fmt.Sprintf("schema merge conflict: field %s.%s is defined twice", e.TypeName, e.FieldName)
}

func (e *SchemaMergeConflictError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *SchemaMergeConflictError) Code() string {
	return "SCHEMA_MERGE_CONFLICT"
}

// NewSchemaMergeConflictError creates a new SchemaMergeConflictError
func NewSchemaMergeConflictError(typeName, fieldName string) *SchemaMergeConflictError {
	return &SchemaMergeConflictError{TypeName: typeName, FieldName: fieldName}
}

// AccessDeniedError is a request-level security failure
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("%s %s", AccessErrorMarker, e.Reason)
}

func (e *AccessDeniedError) HTTPStatus() int {
	return http.StatusUnauthorized
}

func (e *AccessDeniedError) Code() string {
	return "ACCESS_DENIED"
}

// NewAccessDeniedError creates a new AccessDeniedError
func NewAccessDeniedError(reason string) *AccessDeniedError {
	return &AccessDeniedError{Reason: reason}
}

// DestructiveOperationError guards deletes without a filter
type DestructiveOperationError struct {
	Message string
}

func (e *DestructiveOperationError) Error() string {
	return e.Message
}

func (e *DestructiveOperationError) HTTPStatus() int {
	return http.StatusBadRequest
}

func (e *DestructiveOperationError) Code() string {
	return "DESTRUCTIVE_OPERATION"
}

// NewDestructiveOperationError creates a new DestructiveOperationError
func NewDestructiveOperationError(message string) *DestructiveOperationError {
	return &DestructiveOperationError{Message: message}
}

// ProcedureNotFoundError is returned when no registered signature matches a call
type ProcedureNotFoundError struct {
	Worker string
	Name   string
}

func (e *ProcedureNotFoundError) Error() string {
	return fmt.Sprintf("procedure %s not found on %s", e.Name, e.Worker)
}

func (e *ProcedureNotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

func (e *ProcedureNotFoundError) Code() string {
	return "PROCEDURE_NOT_FOUND"
}

// NewProcedureNotFoundError creates a new ProcedureNotFoundError
func NewProcedureNotFoundError(worker, name string) *ProcedureNotFoundError {
	return &ProcedureNotFoundError{Worker: worker, Name: name}
}

// WorkerRequiredError is returned when an operation needs a capability that is not registered
type WorkerRequiredError struct {
	Kind string
	Name string
}

func (e *WorkerRequiredError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s worker %s is required but not registered", e.Kind, e.Name)
	}
	return fmt.Sprintf("%s worker is required but not registered", e.Kind)
}

func (e *WorkerRequiredError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *WorkerRequiredError) Code() string {
	return strings.ToUpper(e.Kind) + "_WORKER_REQUIRED"
}

// NewEncryptionWorkerRequiredError creates the error for a missing encryption capability
func NewEncryptionWorkerRequiredError() *WorkerRequiredError {
	return &WorkerRequiredError{Kind: "encryption"}
}

// NewDatabaseWorkerRequiredError creates the error for a missing database capability
func NewDatabaseWorkerRequiredError(name string) *WorkerRequiredError {
	return &WorkerRequiredError{Kind: "database", Name: name}
}

// NewTaskWorkerRequiredError creates the error for a missing task worker
func NewTaskWorkerRequiredError(name string) *WorkerRequiredError {
	return &WorkerRequiredError{Kind: "task", Name: name}
}

// IsAccessDenied checks if an error is an AccessDeniedError
func IsAccessDenied(err error) bool {
	var denied *AccessDeniedError
	return errors.As(err, &denied)
}

// IsDestructiveOperation checks if an error is a DestructiveOperationError
func IsDestructiveOperation(err error) bool {
	var destructive *DestructiveOperationError
	return errors.As(err, &destructive)
}

// IsProcedureNotFound checks if an error is a ProcedureNotFoundError
func IsProcedureNotFound(err error) bool {
	var notFound *ProcedureNotFoundError
	return errors.As(err, &notFound)
}

// IsEncryptionWorkerRequired checks for a missing encryption capability
func IsEncryptionWorkerRequired(err error) bool {
	var required *WorkerRequiredError
	return errors.As(err, &required) && required.Kind == "encryption"
}

// IsDatabaseWorkerRequired checks for a missing database capability
func IsDatabaseWorkerRequired(err error) bool {
	var required *WorkerRequiredError
	return errors.As(err, &required) && required.Kind == "database"
}

// IsSchemaConflict checks if an error is a SchemaConflictError
func IsSchemaConflict(err error) bool {
	var conflict *SchemaConflictError
	return errors.As(err, &conflict)
}

// IsSchemaMergeConflict checks if an error is a SchemaMergeConflictError
func IsSchemaMergeConflict(err error) bool {
	var conflict *SchemaMergeConflictError
	return errors.As(err, &conflict)
}

// IsSchemaRetrieval checks if an error is a SchemaRetrievalError
func IsSchemaRetrieval(err error) bool {
	var retrieval *SchemaRetrievalError
	return errors.As(err, &retrieval)
}

// IsSchemaFileNotFound checks if an error is a SchemaFileNotFoundError
func IsSchemaFileNotFound(err error) bool {
	var notFound *SchemaFileNotFoundError
	return errors.As(err, &notFound)
}

// IsConfiguration checks if an error is a ConfigurationError
func IsConfiguration(err error) bool {
	var cfg *ConfigurationError
	return errors.As(err, &cfg)
}
