// Package resource defines resource objects: named collections of typed
// operations that the app package maps onto HTTP endpoints.
package resource

import (
	"context"
	"fmt"

	"github.com/restforge/restforge/internal/schema"
	"github.com/restforge/restforge/internal/security"
)

// Kind classifies an operation and determines its HTTP mapping.
type Kind string

const (
	// Lifecycle operations map to methods on the resource path itself.
	KindCreate Kind = "create" // POST
	KindRead   Kind = "read"   // GET
	KindUpdate Kind = "update" // PUT
	KindDelete Kind = "delete" // DELETE
	KindPatch  Kind = "patch"  // PATCH

	// Named operations map to a subpath beneath the resource.
	KindAction Kind = "action" // POST {path}/{name}
	KindQuery  Kind = "query"  // GET {path}/{name}
)

// Param declares a single operation parameter, bound from the query
// string.
type Param struct {
	Schema   schema.Type
	Required bool
	Default  any // applied when an optional parameter is omitted
}

// Params holds the decoded, validated arguments of an operation call,
// keyed by parameter name. The request body, when an operation declares
// one, is stored under the "_body" key.
type Params map[string]any

// BodyKey is the Params key under which a decoded request body is stored.
const BodyKey = "_body"

// Func is an operation implementation.
type Func func(ctx context.Context, p Params) (any, error)

// Operation is a single callable unit of a resource.
type Operation struct {
	Kind     Kind
	Name     string // required for action and query kinds
	Params   map[string]Param
	Body     schema.Type // nil when the operation takes no body
	Returns  schema.Type // nil when the operation returns nothing
	Security []security.Requirement
	Func     Func
}

// key identifies an operation within a resource. Lifecycle kinds are
// singletons; action and query kinds are distinguished by name.
func (op *Operation) key() string {
	switch op.Kind {
	case KindAction, KindQuery:
		return string(op.Kind) + ":" + op.Name
	default:
		return string(op.Kind)
	}
}

// Resource is a named set of operations.
type Resource struct {
	Name string
	ops  map[string]*Operation
}

// New returns an empty resource with the given name.
func New(name string) *Resource {
	return &Resource{
		Name: name,
		ops:  make(map[string]*Operation),
	}
}

// Register adds an operation to the resource. It rejects operations with
// a missing Func, named kinds without a name, and duplicate
// registrations.
func (r *Resource) Register(op *Operation) error {
	if op.Func == nil {
		return fmt.Errorf("resource %s: operation %s has no function", r.Name, op.Kind)
	}
	switch op.Kind {
	case KindCreate, KindRead, KindUpdate, KindDelete, KindPatch:
		if op.Name != "" {
			return fmt.Errorf("resource %s: %s operation must not be named", r.Name, op.Kind)
		}
	case KindAction, KindQuery:
		if op.Name == "" {
			return fmt.Errorf("resource %s: %s operation requires a name", r.Name, op.Kind)
		}
	default:
		return fmt.Errorf("resource %s: unknown operation kind %q", r.Name, op.Kind)
	}
	k := op.key()
	if _, exists := r.ops[k]; exists {
		return fmt.Errorf("resource %s: operation %s already registered", r.Name, k)
	}
	r.ops[k] = op
	return nil
}

// MustRegister is Register for static resource construction; it panics on
// registration errors.
func (r *Resource) MustRegister(op *Operation) {
	if err := r.Register(op); err != nil {
		panic(err)
	}
}

// Operation looks up a registered operation. Name is ignored for
// lifecycle kinds.
func (r *Resource) Operation(kind Kind, name string) (*Operation, bool) {
	op, ok := r.ops[(&Operation{Kind: kind, Name: name}).key()]
	return op, ok
}

// Operations returns all registered operations.
func (r *Resource) Operations() []*Operation {
	ops := make([]*Operation, 0, len(r.ops))
	for _, op := range r.ops {
		ops = append(ops, op)
	}
	return ops
}

// Call dispatches to a registered operation. Unknown operations return
// ErrNotFound.
func (r *Resource) Call(ctx context.Context, kind Kind, name string, p Params) (any, error) {
	op, ok := r.Operation(kind, name)
	if !ok {
		return nil, fmt.Errorf("resource %s: operation %s/%s: %w", r.Name, kind, name, ErrNotFound)
	}
	return op.Func(ctx, p)
}
