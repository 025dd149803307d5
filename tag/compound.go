package tag

import (
	"fmt"
	"iter"

	"github.com/arloliu/anvil/errs"
)

// Compound maps unique names to tags and remembers insertion order.
//
// The zero value is an empty compound ready to use.
type Compound struct {
	names  []string
	values []Tag
	index  map[string]int
}

var _ Tag = (*Compound)(nil)

// NewCompound returns an empty compound.
func NewCompound() *Compound {
	return &Compound{}
}

// Kind returns KindCompound.
func (c *Compound) Kind() Kind { return KindCompound }

// Len returns the number of entries.
func (c *Compound) Len() int { return len(c.names) }

// Put stores t under name. An existing entry is replaced in place and keeps its position.
//
// Put rejects nil and End values and any value whose subtree contains c.
func (c *Compound) Put(name string, t Tag) error {
	if t == nil {
		return fmt.Errorf("compound entry %q: %w", name, errs.ErrNilTag)
	}
	if t.Kind() == KindEnd {
		return fmt.Errorf("compound entry %q: %w", name, errs.ErrEndTag)
	}
	if contains(t, c) {
		return fmt.Errorf("compound entry %q: %w", name, errs.ErrCyclicTree)
	}

	c.put(name, t)

	return nil
}

// put stores t without validation. Decoded trees are acyclic by construction.
func (c *Compound) put(name string, t Tag) {
	if i, ok := c.index[name]; ok {
		c.values[i] = t
		return
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	c.index[name] = len(c.names)
	c.names = append(c.names, name)
	c.values = append(c.values, t)
}

// Get returns the tag stored under name.
func (c *Compound) Get(name string) (Tag, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}

	return c.values[i], true
}

// Has reports whether name is present.
func (c *Compound) Has(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Delete removes name and reports whether it was present.
func (c *Compound) Delete(name string) bool {
	i, ok := c.index[name]
	if !ok {
		return false
	}

	c.names = append(c.names[:i], c.names[i+1:]...)
	c.values = append(c.values[:i], c.values[i+1:]...)
	delete(c.index, name)
	for j := i; j < len(c.names); j++ {
		c.index[c.names[j]] = j
	}

	return true
}

// Names returns the entry names in insertion order.
func (c *Compound) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)

	return out
}

// All iterates over entries in insertion order.
func (c *Compound) All() iter.Seq2[string, Tag] {
	return func(yield func(string, Tag) bool) {
		for i, name := range c.names {
			if !yield(name, c.values[i]) {
				return
			}
		}
	}
}

// Lookup returns the entry under name if it exists and has type T.
func Lookup[T Tag](c *Compound, name string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}

	t, ok := c.Get(name)
	if !ok {
		return zero, false
	}
	v, ok := t.(T)

	return v, ok
}

// The typed getters return the zero value when name is absent or holds another kind.

func (c *Compound) Byte(name string) int8 {
	v, _ := Lookup[Byte](c, name)
	return int8(v)
}

func (c *Compound) Short(name string) int16 {
	v, _ := Lookup[Short](c, name)
	return int16(v)
}

func (c *Compound) Int(name string) int32 {
	v, _ := Lookup[Int](c, name)
	return int32(v)
}

func (c *Compound) Long(name string) int64 {
	v, _ := Lookup[Long](c, name)
	return int64(v)
}

func (c *Compound) Float(name string) float32 {
	v, _ := Lookup[Float](c, name)
	return float32(v)
}

func (c *Compound) Double(name string) float64 {
	v, _ := Lookup[Double](c, name)
	return float64(v)
}

func (c *Compound) String(name string) string {
	v, _ := Lookup[String](c, name)
	return string(v)
}

func (c *Compound) ByteArray(name string) []byte {
	v, _ := Lookup[ByteArray](c, name)
	return v
}

func (c *Compound) IntArray(name string) []int32 {
	v, _ := Lookup[IntArray](c, name)
	return v
}

func (c *Compound) LongArray(name string) []int64 {
	v, _ := Lookup[LongArray](c, name)
	return v
}

// List returns the list under name, or nil.
func (c *Compound) List(name string) *List {
	v, _ := Lookup[*List](c, name)
	return v
}

// Compound returns the nested compound under name, or nil.
func (c *Compound) Compound(name string) *Compound {
	v, _ := Lookup[*Compound](c, name)
	return v
}
