package query

import (
	"strings"
	"sync"
)

// Function represents a scalar function that can be evaluated
type Function interface {
	// Name returns the function name (case-insensitive)
	Name() string
	// MinArity returns the minimum number of arguments
	MinArity() int
	// MaxArity returns the maximum number of arguments (-1 for unlimited)
	MaxArity() int
	// Evaluate evaluates the function with the given arguments
	Evaluate(args []interface{}) (interface{}, error)
}

// FunctionRegistry manages function lookup and registration
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry creates a new function registry
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// Register registers a function
func (r *FunctionRegistry) Register(f Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[strings.ToUpper(f.Name())] = f
}

// Get retrieves a function by name (case-insensitive)
func (r *FunctionRegistry) Get(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, exists := r.functions[strings.ToUpper(name)]
	return f, exists
}

var globalRegistry = NewFunctionRegistry()

func init() {
	for _, family := range [][]Function{conditionalFunctions, stringFunctions, mathFunctions, dateFunctions, conversionFunctions} {
		for _, f := range family {
			globalRegistry.Register(f)
		}
	}
}

// GetGlobalRegistry returns the global function registry
func GetGlobalRegistry() *FunctionRegistry {
	return globalRegistry
}

// scalarFunc adapts a plain Go function to the Function interface.
// NULL-propagating functions return NULL when any argument is NULL without
// calling fn.
type scalarFunc struct {
	name     string
	min, max int
	nullSafe bool
	fn       func(args []interface{}) (interface{}, error)
}

func (f *scalarFunc) Name() string  { return f.name }
func (f *scalarFunc) MinArity() int { return f.min }
func (f *scalarFunc) MaxArity() int { return f.max }

func (f *scalarFunc) Evaluate(args []interface{}) (interface{}, error) {
	if !f.nullSafe {
		for _, arg := range args {
			if arg == nil {
				return nil, nil
			}
		}
	}
	return f.fn(args)
}

// Conditional functions. Each family of builtins lives in its own
// function_*.go file and is registered by init.
var conditionalFunctions = []Function{
	&scalarFunc{name: "COALESCE", min: 1, max: -1, nullSafe: true, fn: func(args []interface{}) (interface{}, error) {
		for _, arg := range args {
			if arg != nil {
				return arg, nil
			}
		}
		return nil, nil
	}},
	&scalarFunc{name: "NULLIF", min: 2, max: 2, nullSafe: true, fn: func(args []interface{}) (interface{}, error) {
		if args[0] == nil {
			return nil, nil
		}
		equal, err := compare(args[0], TokenEqual, args[1])
		if err != nil {
			return nil, err
		}
		if equal {
			return nil, nil
		}
		return args[0], nil
	}},
}

// alias registers an existing function under another name
type alias struct {
	Function
	name string
}

func (a *alias) Name() string { return a.name }
