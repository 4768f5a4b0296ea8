package expression

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// flagEnv types the variables a flag expression may reference
var flagEnv = map[string]interface{}{
	"worker":    "",
	"operation": "",
	"table":     "",
}

// Engine compiles boolean flag expressions once and caches the programs
type Engine struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
	options  []expr.Option
}

// NewEngine creates an engine typed against the flag scope variables
func NewEngine() *Engine {
	return &Engine{
		programs: make(map[string]*vm.Program),
		options: []expr.Option{
			expr.Env(flagEnv),
			expr.AsBool(),
			expr.Function("HAS_PREFIX", func(params ...interface{}) (interface{}, error) {
				return strings.HasPrefix(params[0].(string), params[1].(string)), nil
			}, new(func(string, string) bool)),
			expr.Function("HAS_SUFFIX", func(params ...interface{}) (interface{}, error) {
				return strings.HasSuffix(params[0].(string), params[1].(string)), nil
			}, new(func(string, string) bool)),
			expr.Function("LOWER", func(params ...interface{}) (interface{}, error) {
				return strings.ToLower(params[0].(string)), nil
			}, new(func(string) string)),
		},
	}
}

// Evaluate runs expression against env. The program is compiled on first use.
func (e *Engine) Evaluate(expression string, env map[string]interface{}) (bool, error) {
	program, err := e.program(expression)
	if err != nil {
		return false, err
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q produced %T", expression, out)
	}
	return b, nil
}

// Validate compiles expression without running it
func (e *Engine) Validate(expression string) error {
	_, err := e.program(expression)
	return err
}

func (e *Engine) program(expression string) (*vm.Program, error) {
	e.mu.RLock()
	prog, ok := e.programs[expression]
	e.mu.RUnlock()
	if ok {
		return prog, nil
	}

	prog, err := expr.Compile(expression, e.options...)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.programs[expression] = prog
	e.mu.Unlock()
	return prog, nil
}
