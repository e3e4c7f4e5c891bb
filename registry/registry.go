package registry

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/hostbridge/hostbridge/errors"
	"github.com/hostbridge/hostbridge/future"
	"github.com/hostbridge/hostbridge/marshal"
)

// Registry holds registered functions keyed by namespace and name and
// dispatches host calls to them. Safe for concurrent use.
type Registry struct {
	m     *marshal.Marshaller
	funcs map[string]map[string]*Func
	mu    sync.RWMutex
}

// New creates an empty registry with its own marshaller.
func New() *Registry {
	return &Registry{
		m:     marshal.NewMarshaller(),
		funcs: make(map[string]map[string]*Func),
	}
}

// Marshaller returns the registry's shared marshaller.
func (r *Registry) Marshaller() *marshal.Marshaller {
	return r.m
}

// RegisterHost registers all boundary functions of a host struct.
// Method names are converted from PascalCase to kebab-case
// (GetMagicNumber -> get-magic-number) unless the host implements
// ExplicitRegistrar.
func (r *Registry) RegisterHost(h Host) error {
	ns := h.Namespace()
	if ns == "" {
		return errors.InvalidInput(errors.PhaseRegistry, "namespace cannot be empty")
	}

	asyncFuncs := make(map[string]bool)
	if ah, ok := h.(AsyncHost); ok {
		for _, name := range ah.AsyncFunctions() {
			asyncFuncs[name] = true
		}
	}

	if er, ok := h.(ExplicitRegistrar); ok {
		for name, handler := range er.Register() {
			if err := r.register(ns, name, handler, asyncFuncs[name]); err != nil {
				return err
			}
		}
		return nil
	}

	rv := reflect.ValueOf(h)
	rt := rv.Type()
	for i := 0; i < rt.NumMethod(); i++ {
		method := rt.Method(i)
		if !method.IsExported() || method.Name == "Namespace" || method.Name == "AsyncFunctions" {
			continue
		}
		name := marshal.KebabCase(method.Name)
		if err := r.register(ns, name, rv.Method(i).Interface(), asyncFuncs[name]); err != nil {
			return err
		}
	}
	return nil
}

// RegisterFunc registers a single synchronous function.
func (r *Registry) RegisterFunc(namespace, name string, fn any) error {
	return r.register(namespace, name, fn, false)
}

// RegisterFuncAsync registers a single function dispatched asynchronously.
func (r *Registry) RegisterFuncAsync(namespace, name string, fn any) error {
	return r.register(namespace, name, fn, true)
}

func (r *Registry) register(namespace, name string, fn any, async bool) error {
	if namespace == "" {
		return errors.InvalidInput(errors.PhaseRegistry, "namespace cannot be empty")
	}
	if name == "" {
		return errors.InvalidInput(errors.PhaseRegistry, "function name cannot be empty")
	}

	f, err := compileFunc(r.m, namespace, name, fn, async)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.funcs[namespace] == nil {
		r.funcs[namespace] = make(map[string]*Func)
	}
	r.funcs[namespace][name] = f

	Logger().Debug("registered function",
		zap.String("namespace", namespace),
		zap.String("name", name),
		zap.Bool("async", async))
	return nil
}

// Lookup returns the registered function, if any.
func (r *Registry) Lookup(namespace, name string) (*Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.funcs[namespace][name]
	return f, ok
}

// Namespaces returns all registered namespaces, sorted.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.funcs))
	for ns := range r.funcs {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Call dispatches a host call. Arguments and the result are in host
// representation. Failures surface as *errors.HostException: native
// structure does not cross, only the message.
//
// Async functions return a *future.Future immediately; its resolution
// carries the host-form value and its rejection a *errors.HostException.
func (r *Registry) Call(ctx context.Context, namespace, name string, args []any) (any, error) {
	f, ok := r.Lookup(namespace, name)
	if !ok {
		return nil, errors.ToHost(errors.NotFound(errors.PhaseCall, "function", namespace+"#"+name))
	}

	Logger().Debug("dispatching call",
		zap.String("namespace", namespace),
		zap.String("name", name),
		zap.Int("args", len(args)),
		zap.Bool("async", f.async))

	if f.async {
		return future.Spawn(ctx, func(ctx context.Context) (any, error) {
			result, err := f.invoke(ctx, r.m, args)
			if err != nil {
				return nil, errors.ToHost(err)
			}
			return result, nil
		}), nil
	}

	result, err := f.invoke(ctx, r.m, args)
	if err != nil {
		return nil, errors.ToHost(err)
	}
	return result, nil
}
