package constants

// EntityType is the portable type a catalog query assigns to a column or parameter
type EntityType string

const (
	EntityTypeString  EntityType = "string"
	EntityTypeNumber  EntityType = "number"
	EntityTypeDecimal EntityType = "decimal"
	EntityTypeBoolean EntityType = "boolean"
	EntityTypeDate    EntityType = "date"
	EntityTypeUnknown EntityType = "unknown"
)

// GraphQL scalar names emitted by the schema builder
const (
	ScalarString    = "String"
	ScalarInt       = "Int"
	ScalarFloat     = "Float"
	ScalarBoolean   = "Boolean"
	ScalarJSON      = "JSON"
	ScalarDbInt     = "DbInt"
	ScalarDbBoolean = "DbBoolean"
	ScalarDbFloat   = "DbFloat"
)

// RawValueKey marks a passthrough scalar object: {raw: "<sql expression>"}
const RawValueKey = "raw"

// Procedure and function kinds reported by catalog queries
const (
	ProcTypeProcedure = "PROCEDURE"
	ProcTypeFunction  = "FUNCTION"
)

// Wildcard schema filter value meaning "every schema"
const SchemaWildcard = "*"
