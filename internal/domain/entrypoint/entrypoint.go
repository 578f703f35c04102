// Package entrypoint locates and validates the registration target an app
// exposes, and adapts it into a uniform Func.
//
// Accepted shapes, with H any type *gin.Engine is assignable to:
//
//	func(H)
//	func(H) error
//	func(H) *routes.Collection
//	func(H) (*routes.Collection, error)
//	struct type whose pointer has a Register method of one of the above
package entrypoint

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/appkit/internal/shared/types"
	"github.com/GriffinCanCode/appkit/pkg/code"
	"github.com/GriffinCanCode/appkit/pkg/routes"
)

// DefaultAttribute is used when a descriptor names only a module.
const DefaultAttribute = "register"

// RegisterMethod is the method looked up on class entrypoints.
const RegisterMethod = "Register"

var (
	ErrModuleImport     = errors.New("failed to import module")
	ErrAttributeMissing = errors.New("entrypoint attribute not found")
	ErrNotCallable      = errors.New("entrypoint is not callable")
	ErrInstantiate      = errors.New("failed to instantiate class")
	ErrNoRegisterMethod = errors.New("class has no Register method")
	ErrNoParameters     = errors.New("entrypoint must accept at least one parameter")
	ErrHostParameter    = errors.New("entrypoint cannot accept the host engine")
	ErrRouteConflict    = errors.New("route already registered on the host engine")
)

// ginDuplicateRoute prefixes the message gin panics with when a (method,
// path) pair gets a second handler.
const ginDuplicateRoute = "handlers are already registered for path '"

// RouteConflictError reports an entrypoint stopped by gin at a route that
// another registration already owns. Routes the entrypoint added before
// Path stay mounted.
type RouteConflictError struct {
	Path string
}

func (e *RouteConflictError) Error() string {
	return fmt.Sprintf("%v: %s", ErrRouteConflict, e.Path)
}

func (e *RouteConflictError) Unwrap() error { return ErrRouteConflict }

// routeConflict recognizes gin's duplicate route panic.
func routeConflict(r any) (*RouteConflictError, bool) {
	msg, ok := r.(string)
	if !ok || !strings.HasPrefix(msg, ginDuplicateRoute) {
		return nil, false
	}
	return &RouteConflictError{
		Path: strings.TrimSuffix(strings.TrimPrefix(msg, ginDuplicateRoute), "'"),
	}, true
}

var engineType = reflect.TypeFor[*gin.Engine]()

// Func is an adapted entrypoint. Panics inside the app's code are returned
// as errors; gin's duplicate route panic becomes a *RouteConflictError.
type Func func(host *gin.Engine) (*routes.Collection, error)

// Catalog is the code capability the loader needs.
type Catalog interface {
	code.Resolver
	Instantiate(class any) (any, error)
}

// Loader resolves entrypoint descriptors against a catalog.
type Loader struct {
	code Catalog
}

// NewLoader creates an entrypoint loader.
func NewLoader(c Catalog) *Loader {
	return &Loader{code: c}
}

// Parse splits a descriptor into module and attribute. A bare module name
// means the app module's own register attribute.
func Parse(descriptor, appImportPath string) (module, attr string) {
	i := strings.LastIndex(descriptor, ":")
	if i < 0 {
		return appImportPath, DefaultAttribute
	}
	return descriptor[:i], descriptor[i+1:]
}

// Load resolves descriptor for the app at appImportPath without invoking
// it. Failures are *types.LoadError at the entrypoint-validate stage.
func (l *Loader) Load(descriptor, appImportPath string) (Func, error) {
	fn, err := l.load(descriptor, appImportPath)
	if err != nil {
		return nil, types.NewLoadError(appImportPath, types.StageEntrypoint, err)
	}
	return fn, nil
}

func (l *Loader) load(descriptor, appImportPath string) (Func, error) {
	mod, err := l.code.Import(appImportPath)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrModuleImport, appImportPath, err)
	}

	modPath, attr := Parse(descriptor, appImportPath)
	if modPath != appImportPath {
		if mod, err = l.code.Import(modPath); err != nil {
			return nil, fmt.Errorf("%w %q (entrypoint module): %w", ErrModuleImport, modPath, err)
		}
	}

	v, err := l.code.Attribute(mod, attr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q in module %q", ErrAttributeMissing, attr, modPath)
	}

	if l.code.IsClass(v) {
		inst, err := l.code.Instantiate(v)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInstantiate, attr, err)
		}
		method := reflect.ValueOf(inst).MethodByName(RegisterMethod)
		if !method.IsValid() {
			return nil, fmt.Errorf("%w: class %q", ErrNoRegisterMethod, attr)
		}
		return adapt(attr, method)
	}

	if !l.code.IsCallable(v) {
		return nil, fmt.Errorf("%w: %q is a %T", ErrNotCallable, attr, v)
	}
	if n, ok := l.code.TryParameterCount(v); ok && n < 1 {
		return nil, fmt.Errorf("%w (the host engine): %q", ErrNoParameters, attr)
	}
	return adapt(attr, reflect.ValueOf(v))
}

func adapt(name string, fv reflect.Value) (Func, error) {
	ft := fv.Type()
	if ft.NumIn() > 0 && !engineType.AssignableTo(ft.In(0)) {
		return nil, fmt.Errorf("%w: %q takes %s first", ErrHostParameter, name, ft.In(0))
	}

	return func(host *gin.Engine) (rc *routes.Collection, err error) {
		defer func() {
			if r := recover(); r != nil {
				if conflict, ok := routeConflict(r); ok {
					rc, err = nil, conflict
					return
				}
				rc, err = nil, fmt.Errorf("panic in %s: %v", name, r)
			}
		}()

		n := ft.NumIn()
		if ft.IsVariadic() {
			n--
		}
		args := make([]reflect.Value, n)
		for i := range args {
			if i == 0 {
				args[i] = reflect.ValueOf(host)
				continue
			}
			args[i] = reflect.Zero(ft.In(i))
		}

		for _, out := range fv.Call(args) {
			switch v := out.Interface().(type) {
			case *routes.Collection:
				rc = v
			case error:
				err = v
			}
		}
		return rc, err
	}, nil
}
