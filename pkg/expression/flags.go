package expression

import (
	"fmt"
	"strconv"
	"strings"
)

// FlagScope is the environment a feature flag expression is evaluated against
type FlagScope struct {
	Worker    string
	Operation string
	Table     string
}

func (s FlagScope) env() map[string]interface{} {
	return map[string]interface{}{
		"worker":    s.Worker,
		"operation": s.Operation,
		"table":     s.Table,
	}
}

// FeatureFlags resolves named flags. A flag value is a boolean, a boolean
// string, or an expression such as `worker == "reporting" && operation == "select"`.
type FeatureFlags struct {
	values map[string]interface{}
	engine *Engine
}

// NewFeatureFlags creates flags from the settings features map
func NewFeatureFlags(values map[string]interface{}) *FeatureFlags {
	copied := make(map[string]interface{}, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &FeatureFlags{values: copied, engine: NewEngine()}
}

// Has reports whether the flag is configured at all
func (f *FeatureFlags) Has(name string) bool {
	if f == nil {
		return false
	}
	_, ok := f.values[name]
	return ok
}

// Enabled evaluates the flag for scope. Unknown flags are false.
func (f *FeatureFlags) Enabled(name string, scope FlagScope) (bool, error) {
	if f == nil {
		return false, nil
	}
	raw, ok := f.values[name]
	if !ok || raw == nil {
		return false, nil
	}

	switch v := raw.(type) {
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if b, err := strconv.ParseBool(trimmed); err == nil {
			return b, nil
		}
		b, err := f.engine.Evaluate(trimmed, scope.env())
		if err != nil {
			return false, fmt.Errorf("feature flag %s: %w", name, err)
		}
		return b, nil
	}
	return false, fmt.Errorf("feature flag %s has unsupported type %T", name, raw)
}

// Validate compiles every expression flag so bad settings fail at build time
func (f *FeatureFlags) Validate() error {
	if f == nil {
		return nil
	}
	for name, raw := range f.values {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		if _, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			continue
		}
		if err := f.engine.Validate(strings.TrimSpace(s)); err != nil {
			return fmt.Errorf("feature flag %s: %w", name, err)
		}
	}
	return nil
}
