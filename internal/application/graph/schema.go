// Package graph builds GraphQL schemas from database metadata and runs
// operations against them with graphql-go. Schemas stay descriptor lists
// until Compile so a database schema can be merged with the custom function
// schema first.
package graph

import (
	"sort"

	"github.com/graphql-go/graphql"

	apperrors "github.com/omnihive/backend/pkg/errors"
)

// RootField is a Query or Mutation field together with its resolver
type RootField struct {
	Name  string
	Field *graphql.Field
}

// Schema is a set of named types and root fields
type Schema struct {
	types    []graphql.Type
	query    []RootField
	mutation []RootField
}

// NewSchema creates a schema holding the custom scalars
func NewSchema() *Schema {
	return &Schema{types: customScalars()}
}

// AddType adds a named type
func (s *Schema) AddType(t graphql.Type) {
	s.types = append(s.types, t)
}

// AddQuery adds a Query root field
func (s *Schema) AddQuery(name string, f *graphql.Field) {
	s.query = append(s.query, RootField{Name: name, Field: f})
}

// AddMutation adds a Mutation root field
func (s *Schema) AddMutation(name string, f *graphql.Field) {
	s.mutation = append(s.mutation, RootField{Name: name, Field: f})
}

// QueryFields returns the Query field names in declaration order
func (s *Schema) QueryFields() []string {
	return fieldNames(s.query)
}

// MutationFields returns the Mutation field names in declaration order
func (s *Schema) MutationFields() []string {
	return fieldNames(s.mutation)
}

// TypeNames returns the declared type names, sorted
func (s *Schema) TypeNames() []string {
	out := make([]string, 0, len(s.types))
	for _, t := range s.types {
		out = append(out, t.Name())
	}
	sort.Strings(out)
	return out
}

func fieldNames(fields []RootField) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Name)
	}
	return out
}

// Merge combines schemas. A type may repeat only as the very same instance,
// which is how the shared scalars appear; any other repeated type name or
// root field fails with a SchemaMergeConflictError.
func Merge(schemas ...*Schema) (*Schema, error) {
	out := &Schema{}
	types := make(map[string]graphql.Type)
	query := make(map[string]bool)
	mutation := make(map[string]bool)

	for _, s := range schemas {
		if s == nil {
			continue
		}
		for _, t := range s.types {
			if existing, ok := types[t.Name()]; ok {
				if existing == t {
					continue
				}
				return nil, apperrors.NewSchemaMergeConflictError(t.Name(), "")
			}
			types[t.Name()] = t
			out.types = append(out.types, t)
		}
		for _, f := range s.query {
			if query[f.Name] {
				return nil, apperrors.NewSchemaMergeConflictError("Query", f.Name)
			}
			query[f.Name] = true
			out.query = append(out.query, f)
		}
		for _, f := range s.mutation {
			if mutation[f.Name] {
				return nil, apperrors.NewSchemaMergeConflictError("Mutation", f.Name)
			}
			mutation[f.Name] = true
			out.mutation = append(out.mutation, f)
		}
	}
	return out, nil
}

// Executable is a validated graphql-go schema
type Executable struct {
	schema graphql.Schema
}

// Schema returns the compiled schema
func (e *Executable) Schema() *graphql.Schema {
	return &e.schema
}

func rootFields(fields []RootField) graphql.Fields {
	out := make(graphql.Fields, len(fields))
	for _, f := range fields {
		out[f.Name] = f.Field
	}
	return out
}

// Compile builds the Query and Mutation objects and validates the schema
func (s *Schema) Compile() (*Executable, error) {
	query := rootFields(s.query)
	if len(query) == 0 {
		query["_empty"] = &graphql.Field{Type: graphql.Boolean}
	}

	cfg := graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: query}),
		Types: append([]graphql.Type(nil), s.types...),
	}
	if len(s.mutation) > 0 {
		cfg.Mutation = graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: rootFields(s.mutation)})
	}

	schema, err := graphql.NewSchema(cfg)
	if err != nil {
		return nil, err
	}
	return &Executable{schema: schema}, nil
}
