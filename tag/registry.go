package tag

import (
	"fmt"

	"github.com/arloliu/anvil/errs"
)

// Registry maps custom kind ids to constructors.
//
// A Registry is configured once at start-up and read by every Codec that holds
// it; changes only affect calls made afterwards. It is not synchronized:
// Register and Unregister must not run concurrently with encoding or decoding.
type Registry struct {
	ctors map[Kind]func() Custom
}

// NewRegistry returns an empty registry. The zero value is also ready to use.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[Kind]func() Custom)}
}

// Register installs ctor for id.
//
// It fails with errs.ErrKindReserved for a fixed id, errs.ErrKindRegistered if
// id is taken, and errs.ErrInvalidOption if ctor is nil or builds a tag that
// reports a different kind.
func (r *Registry) Register(id Kind, ctor func() Custom) error {
	if id.IsFixed() {
		return fmt.Errorf("register kind %d: %w", id, errs.ErrKindReserved)
	}
	if _, ok := r.ctors[id]; ok {
		return fmt.Errorf("register kind %d: %w", id, errs.ErrKindRegistered)
	}
	if ctor == nil {
		return fmt.Errorf("register kind %d: nil constructor: %w", id, errs.ErrInvalidOption)
	}
	if got := ctor().Kind(); got != id {
		return fmt.Errorf("register kind %d: constructor builds kind %d: %w", id, got, errs.ErrInvalidOption)
	}

	if r.ctors == nil {
		r.ctors = make(map[Kind]func() Custom)
	}
	r.ctors[id] = ctor

	return nil
}

// Unregister removes the constructor for id.
func (r *Registry) Unregister(id Kind) error {
	if id.IsFixed() {
		return fmt.Errorf("unregister kind %d: %w", id, errs.ErrKindReserved)
	}
	if _, ok := r.ctors[id]; !ok {
		return fmt.Errorf("unregister kind %d: %w", id, errs.ErrKindNotRegistered)
	}

	delete(r.ctors, id)

	return nil
}

// Lookup returns the constructor for id.
func (r *Registry) Lookup(id Kind) (func() Custom, bool) {
	if r == nil {
		return nil, false
	}

	ctor, ok := r.ctors[id]

	return ctor, ok
}
