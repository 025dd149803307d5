package tag

import (
	"fmt"
	"iter"

	"github.com/arloliu/anvil/errs"
)

// List is an ordered sequence of unnamed tags that all share one kind.
//
// A list declared with KindEnd and no elements adopts the kind of the first
// element appended to it. The zero value is an empty list of KindEnd.
type List struct {
	elem  Kind
	items []Tag
}

var _ Tag = (*List)(nil)

// NewList returns a list of elem holding items.
// It fails with errs.ErrListKindMismatch if any item is of another kind.
func NewList(elem Kind, items ...Tag) (*List, error) {
	l := &List{elem: elem, items: make([]Tag, 0, len(items))}
	for i, item := range items {
		if err := l.Append(item); err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
	}

	return l, nil
}

// Kind returns KindList.
func (l *List) Kind() Kind { return KindList }

// ElemKind returns the declared element kind.
func (l *List) ElemKind() Kind { return l.elem }

// Len returns the number of elements.
func (l *List) Len() int { return len(l.items) }

// At returns the element at i, or nil when i is out of range.
func (l *List) At(i int) Tag {
	if i < 0 || i >= len(l.items) {
		return nil
	}

	return l.items[i]
}

// Append adds t to the end of the list.
func (l *List) Append(t Tag) error {
	if err := l.check(t); err != nil {
		return err
	}
	if l.elem == KindEnd && len(l.items) == 0 {
		l.elem = t.Kind()
	}
	l.items = append(l.items, t)

	return nil
}

// Set replaces the element at i.
func (l *List) Set(i int, t Tag) error {
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("list index %d of %d: %w", i, len(l.items), errs.ErrIndexOutOfRange)
	}
	if err := l.check(t); err != nil {
		return err
	}
	l.items[i] = t

	return nil
}

// Remove deletes the element at i. An emptied list keeps its element kind.
func (l *List) Remove(i int) error {
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("list index %d of %d: %w", i, len(l.items), errs.ErrIndexOutOfRange)
	}
	l.items = append(l.items[:i], l.items[i+1:]...)

	return nil
}

// All iterates over index and element pairs.
func (l *List) All() iter.Seq2[int, Tag] {
	return func(yield func(int, Tag) bool) {
		for i, t := range l.items {
			if !yield(i, t) {
				return
			}
		}
	}
}

func (l *List) check(t Tag) error {
	if t == nil {
		return errs.ErrNilTag
	}

	k := t.Kind()
	if k == KindEnd {
		return errs.ErrEndTag
	}
	if !(l.elem == KindEnd && len(l.items) == 0) && k != l.elem {
		return fmt.Errorf("%w: list of %s cannot hold %s", errs.ErrListKindMismatch, l.elem, k)
	}
	if contains(t, l) {
		return errs.ErrCyclicTree
	}

	return nil
}
