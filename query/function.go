package query

import (
	"fmt"
	"sort"
	"sync"
)

// Param is one declared parameter of a function
type Param struct {
	Name string
	Type DataType
}

// AggregateDef makes a function usable inside summarize. The function is
// then called as f(accumulator, args...) once per row, starting from
// InitialValue; FinalPass, when set, maps the final accumulator and the row
// count to the output value.
type AggregateDef struct {
	InitialValue interface{}
	FinalPass    func(acc interface{}, n int) (interface{}, error)
}

// FunctionDef describes a builtin or host-supplied function
type FunctionDef struct {
	Name       string
	Params     []Param
	ReturnType DataType
	Impl       func(args ...interface{}) (interface{}, error)
	Aggregate  *AggregateDef
}

// IsAggregate reports whether the function can be used inside summarize
func (f *FunctionDef) IsAggregate() bool {
	return f.Aggregate != nil
}

// Signature renders the function as name(param: type, ...): type
func (f *FunctionDef) Signature() string {
	s := f.Name + "("
	for i, p := range f.Params {
		if i > 0 {
			s += ", "
		}
		s += p.Name + ": " + p.Type.String()
	}
	return s + "): " + f.ReturnType.String()
}

// call invokes the implementation, turning a panic into an error
func (f *FunctionDef) call(args []interface{}) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("function %s panicked: %v", f.Name, r)
		}
	}()
	result, err = f.Impl(args...)
	if err != nil {
		return nil, err
	}
	return NormalizeValue(result), nil
}

// FunctionRegistry manages function lookup and registration
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]*FunctionDef
}

// NewFunctionRegistry creates a new function registry
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]*FunctionDef),
	}
}

// Register registers a function, replacing any function of the same name
func (r *FunctionRegistry) Register(f *FunctionDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[f.Name] = f
}

// Get retrieves a function by name. Names are case-sensitive.
func (r *FunctionRegistry) Get(name string) (*FunctionDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, exists := r.functions[name]
	return f, exists
}

// Names returns the registered function names, sorted
func (r *FunctionRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// globalRegistry is the builtin function registry
var globalRegistry *FunctionRegistry

func init() {
	globalRegistry = NewFunctionRegistry()

	for _, group := range [][]*FunctionDef{
		stringFunctions(),
		mathFunctions(),
		dateFunctions(),
		conversionFunctions(),
		aggregateFunctions(),
	} {
		for _, f := range group {
			globalRegistry.Register(f)
		}
	}
}

// GetGlobalRegistry returns the builtin function registry
func GetGlobalRegistry() *FunctionRegistry {
	return globalRegistry
}

// scalar builds a function whose result is null whenever an argument is null
func scalar(name string, ret DataType, params []Param, impl func(args ...interface{}) (interface{}, error)) *FunctionDef {
	return &FunctionDef{
		Name:       name,
		Params:     params,
		ReturnType: ret,
		Impl: func(args ...interface{}) (interface{}, error) {
			for _, a := range args {
				if a == nil {
					return nil, nil
				}
			}
			return impl(args...)
		},
	}
}

// argument accessors; the checker guarantees the static types
func argString(args []interface{}, i int) (string, error) {
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("argument %d: expected string, got %s", i+1, TypeOf(args[i]))
	}
	return s, nil
}

func argNumber(args []interface{}, i int) (float64, error) {
	f, ok := args[i].(float64)
	if !ok {
		return 0, fmt.Errorf("argument %d: expected number, got %s", i+1, TypeOf(args[i]))
	}
	return f, nil
}
