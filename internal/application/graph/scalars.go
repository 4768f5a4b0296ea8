package graph

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/omnihive/backend/pkg/constants"
)

var (
	// JSONScalar carries any JSON value, including object literals
	JSONScalar = graphql.NewScalar(graphql.ScalarConfig{
		Name:        constants.ScalarJSON,
		Description: "Arbitrary JSON value.",
		Serialize:   func(v any) any { return v },
		ParseValue:  func(v any) any { return v },
		ParseLiteral: func(v ast.Value) any {
			return literalValue(v)
		},
	})

	DbIntScalar     = passthroughScalar(constants.ScalarDbInt, "Int value that also accepts a raw database expression as { raw: String }.")
	DbBooleanScalar = passthroughScalar(constants.ScalarDbBoolean, "Boolean value that also accepts a raw database expression as { raw: String }.")
	DbFloatScalar   = passthroughScalar(constants.ScalarDbFloat, "Float value that also accepts a raw database expression as { raw: String }.")
)

// customScalars are declared by every generated schema
func customScalars() []graphql.Type {
	return []graphql.Type{JSONScalar, DbIntScalar, DbBooleanScalar, DbFloatScalar}
}

// passthroughScalar is an input scalar whose values are either literals of
// its kind or { raw: String }. Anything else fails document validation.
func passthroughScalar(name, description string) *graphql.Scalar {
	return graphql.NewScalar(graphql.ScalarConfig{
		Name:        name,
		Description: description,
		Serialize:   func(v any) any { return v },
		ParseValue: func(v any) any {
			out, err := coerceInput(name, v)
			if err != nil {
				return nil
			}
			return out
		},
		ParseLiteral: func(v ast.Value) any {
			out, err := coerceInput(name, literalValue(v))
			if err != nil {
				return nil
			}
			return out
		},
	})
}

// literalValue converts a constant literal into plain Go values
func literalValue(v ast.Value) any {
	switch val := v.(type) {
	case *ast.ObjectValue:
		out := make(map[string]any, len(val.Fields))
		for _, f := range val.Fields {
			out[f.Name.Value] = literalValue(f.Value)
		}
		return out
	case *ast.ListValue:
		out := make([]any, 0, len(val.Values))
		for _, item := range val.Values {
			out = append(out, literalValue(item))
		}
		return out
	case *ast.IntValue:
		if n, err := strconv.ParseInt(val.Value, 10, 64); err == nil {
			return n
		}
		f, _ := strconv.ParseFloat(val.Value, 64)
		return f
	case *ast.FloatValue:
		f, _ := strconv.ParseFloat(val.Value, 64)
		return f
	case *ast.StringValue:
		return val.Value
	case *ast.BooleanValue:
		return val.Value
	case *ast.EnumValue:
		return val.Value
	}
	return nil
}

// outputType maps an entity type to the scalar used on object types
func outputType(entityType string) *graphql.Scalar {
	switch constants.EntityType(entityType) {
	case constants.EntityTypeString, constants.EntityTypeDate:
		return graphql.String
	case constants.EntityTypeNumber:
		return graphql.Int
	case constants.EntityTypeDecimal:
		return graphql.Float
	case constants.EntityTypeBoolean:
		return graphql.Boolean
	}
	return JSONScalar
}

// inputType maps an entity type to the scalar used on mutation inputs
func inputType(entityType string) *graphql.Scalar {
	switch constants.EntityType(entityType) {
	case constants.EntityTypeString, constants.EntityTypeDate:
		return graphql.String
	case constants.EntityTypeNumber:
		return DbIntScalar
	case constants.EntityTypeDecimal:
		return DbFloatScalar
	case constants.EntityTypeBoolean:
		return DbBooleanScalar
	}
	return JSONScalar
}

// coerceInput checks a passthrough scalar argument. Plain literals of the
// scalar's kind pass; objects must be exactly { raw: String }.
func coerceInput(scalar string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if obj, ok := v.(map[string]any); ok {
		raw, ok := obj[constants.RawValueKey].(string)
		if !ok || len(obj) != 1 {
			return nil, fmt.Errorf("%s accepts only literals and { raw: String } values", scalar)
		}
		return map[string]any{constants.RawValueKey: raw}, nil
	}

	switch scalar {
	case constants.ScalarDbInt:
		if _, err := toInt(v); err != nil {
			return nil, fmt.Errorf("%s accepts only int values and { raw: String } values", scalar)
		}
	case constants.ScalarDbFloat:
		if _, err := toFloat(v); err != nil {
			return nil, fmt.Errorf("%s accepts only numeric values and { raw: String } values", scalar)
		}
	case constants.ScalarDbBoolean:
		if _, ok := v.(bool); !ok {
			return nil, fmt.Errorf("%s accepts only boolean values and { raw: String } values", scalar)
		}
	}
	return v, nil
}

// normalize rewrites driver values the built-in scalars cannot read:
// byte slices become strings and times become RFC 3339 text
func normalize(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case map[string]any:
		for k, item := range val {
			val[k] = normalize(item)
		}
		return val
	case []map[string]any:
		for i := range val {
			normalize(val[i])
		}
		return val
	case [][]map[string]any:
		for i := range val {
			normalize(val[i])
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normalize(item)
		}
		return val
	}
	return v
}

func toInt(v any) (int64, error) {
	switch val := v.(type) {
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint64:
		return int64(val), nil
	case float32:
		return int64(val), nil
	case float64:
		return int64(val), nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return parseInt(string(val))
	case string:
		return parseInt(val)
	case []byte:
		return parseInt(string(val))
	}
	return 0, fmt.Errorf("cannot represent %T as Int", v)
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot represent %q as Int", s)
	}
	return int64(f), nil
}

func toFloat(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case json.Number:
		return val.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(val), 64)
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(val)), 64)
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("cannot represent %T as Float", v)
	}
	return float64(n), nil
}

func toSlice(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
