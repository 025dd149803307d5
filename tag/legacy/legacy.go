// Package legacy provides custom tag kinds written by older producers of the
// tag format. None of them is part of the fixed kind set; install them into a
// tag.Registry with RegisterAll before decoding data that may contain them.
package legacy

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/arloliu/anvil/errs"
	"github.com/arloliu/anvil/tag"
)

// Kind ids of the legacy custom kinds.
const (
	KindOpaque     tag.Kind = 90
	KindShortArray tag.Kind = 100
	KindChar       tag.Kind = 110
	KindStruct     tag.Kind = 120
)

// RegisterAll registers every legacy kind in r.
func RegisterAll(r *tag.Registry) error {
	ctors := []struct {
		id   tag.Kind
		ctor func() tag.Custom
	}{
		{KindOpaque, func() tag.Custom { return &Opaque{} }},
		{KindShortArray, func() tag.Custom { return &ShortArray{} }},
		{KindChar, func() tag.Custom { return new(Char) }},
		{KindStruct, func() tag.Custom { return &Struct{} }},
	}
	for _, c := range ctors {
		if err := r.Register(c.id, c.ctor); err != nil {
			return err
		}
	}

	return nil
}

// Opaque is an uninterpreted blob: an i32 length followed by raw bytes.
type Opaque struct {
	Data []byte
}

func (o *Opaque) Kind() tag.Kind { return KindOpaque }

func (o *Opaque) EncodePayload(w *tag.Writer) error {
	if err := w.PutLength(len(o.Data)); err != nil {
		return err
	}
	w.PutBytes(o.Data)

	return nil
}

func (o *Opaque) DecodePayload(r *tag.Reader) error {
	n, err := r.ReadLength(1)
	if err != nil {
		return err
	}
	o.Data, err = r.ReadBytes(n)

	return err
}

func (o *Opaque) EqualTag(other tag.Tag) bool {
	p, ok := other.(*Opaque)
	return ok && bytes.Equal(o.Data, p.Data)
}

func (o *Opaque) CloneTag() tag.Tag {
	return &Opaque{Data: bytes.Clone(o.Data)}
}

// ShortArray is an array of 16-bit integers.
type ShortArray struct {
	Values []int16
}

func (s *ShortArray) Kind() tag.Kind { return KindShortArray }

func (s *ShortArray) EncodePayload(w *tag.Writer) error {
	if err := w.PutLength(len(s.Values)); err != nil {
		return err
	}
	for _, v := range s.Values {
		w.PutInt16(v)
	}

	return nil
}

func (s *ShortArray) DecodePayload(r *tag.Reader) error {
	n, err := r.ReadLength(2)
	if err != nil {
		return err
	}

	s.Values = make([]int16, n)
	for i := range s.Values {
		if s.Values[i], err = r.ReadInt16(); err != nil {
			return err
		}
	}

	return nil
}

func (s *ShortArray) EqualTag(other tag.Tag) bool {
	p, ok := other.(*ShortArray)
	return ok && slices.Equal(s.Values, p.Values)
}

func (s *ShortArray) CloneTag() tag.Tag {
	return &ShortArray{Values: slices.Clone(s.Values)}
}

// Char is a single UTF-16 code unit.
type Char uint16

func (c *Char) Kind() tag.Kind { return KindChar }

func (c *Char) EncodePayload(w *tag.Writer) error {
	w.PutUint16(uint16(*c))
	return nil
}

func (c *Char) DecodePayload(r *tag.Reader) error {
	v, err := r.ReadUint16()
	*c = Char(v)

	return err
}

func (c *Char) EqualTag(other tag.Tag) bool {
	p, ok := other.(*Char)
	return ok && *c == *p
}

// NewChar returns a Char holding r, which must fit in one UTF-16 code unit.
func NewChar(r rune) (*Char, error) {
	if r < 0 || r > 0xffff {
		return nil, fmt.Errorf("rune %U needs a surrogate pair: %w", r, errs.ErrIndexOutOfRange)
	}
	c := Char(r) //nolint:gosec

	return &c, nil
}

// Struct is a heterogeneous sequence of unnamed tags. Each element carries its
// own kind byte: i32 count, then kind and payload per element.
type Struct struct {
	Elements []tag.Tag
}

var _ tag.Branch = (*Struct)(nil)

func (s *Struct) Kind() tag.Kind { return KindStruct }

// Children returns the elements, for cycle checks.
func (s *Struct) Children() []tag.Tag { return s.Elements }

// Add appends t, rejecting nil, End and values that contain s.
func (s *Struct) Add(t tag.Tag) error {
	if t == nil {
		return errs.ErrNilTag
	}
	if t.Kind() == tag.KindEnd {
		return errs.ErrEndTag
	}
	if reaches(t, s) {
		return errs.ErrCyclicTree
	}
	s.Elements = append(s.Elements, t)

	return nil
}

func (s *Struct) EncodePayload(w *tag.Writer) error {
	if err := w.Enter(); err != nil {
		return err
	}
	defer w.Leave()

	if err := w.PutLength(len(s.Elements)); err != nil {
		return err
	}
	for i, e := range s.Elements {
		if e == nil {
			return fmt.Errorf("struct element %d: %w", i, errs.ErrNilTag)
		}
		w.PutKind(e.Kind())
		if err := w.PutPayload(e); err != nil {
			return fmt.Errorf("struct element %d: %w", i, err)
		}
	}

	return nil
}

func (s *Struct) DecodePayload(r *tag.Reader) error {
	if err := r.Enter(); err != nil {
		return err
	}
	defer r.Leave()

	n, err := r.ReadLength(1)
	if err != nil {
		return err
	}

	s.Elements = make([]tag.Tag, 0, n)
	for i := 0; i < n; i++ {
		k, err := r.ReadKind()
		if err != nil {
			return err
		}
		if k == tag.KindEnd {
			return errs.Malformedf("struct element %d is End", i)
		}
		e, err := r.ReadPayload(k)
		if err != nil {
			return fmt.Errorf("struct element %d: %w", i, err)
		}
		s.Elements = append(s.Elements, e)
	}

	return nil
}

func (s *Struct) EqualTag(other tag.Tag) bool {
	p, ok := other.(*Struct)
	if !ok || len(s.Elements) != len(p.Elements) {
		return false
	}
	for i := range s.Elements {
		if !tag.Equal(s.Elements[i], p.Elements[i]) {
			return false
		}
	}

	return true
}

func (s *Struct) CloneTag() tag.Tag {
	out := &Struct{Elements: make([]tag.Tag, len(s.Elements))}
	for i, e := range s.Elements {
		out.Elements[i] = tag.Clone(e)
	}

	return out
}

// reaches reports whether target is t or nested anywhere below it.
func reaches(t tag.Tag, target *Struct) bool {
	switch v := t.(type) {
	case *Struct:
		if v == target {
			return true
		}
		for _, e := range v.Elements {
			if reaches(e, target) {
				return true
			}
		}
	case *tag.Compound:
		for _, e := range v.All() {
			if reaches(e, target) {
				return true
			}
		}
	case *tag.List:
		for _, e := range v.All() {
			if reaches(e, target) {
				return true
			}
		}
	}

	return false
}
