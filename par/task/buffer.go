// Copyright 2025 go-par Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package task

import (
	"encoding/binary"
	"fmt"

	"github.com/ajroetker/go-par/par"
)

// Kind is the declared element type of a Buffer.
type Kind uint8

const (
	KindRaw Kind = iota
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindUint8
	KindPoint2D
)

// Size returns the encoded size of one element, 1 for KindRaw.
func (k Kind) Size() int {
	switch k {
	case KindInt32, KindFloat32:
		return 4
	case KindInt64, KindFloat64:
		return 8
	case KindPoint2D:
		return 16
	default:
		return 1
	}
}

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindUint8:
		return "uint8"
	case KindPoint2D:
		return "point2d"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Point2D is the element type of KindPoint2D buffers.
type Point2D struct {
	X, Y float64
}

// Elem is the set of Go element types a Buffer can hold.
type Elem interface {
	int32 | int64 | float32 | float64 | uint8 | Point2D
}

// KindOf returns the Kind of the element type T.
func KindOf[T Elem]() Kind {
	var zero T
	switch any(zero).(type) {
	case int32:
		return KindInt32
	case int64:
		return KindInt64
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	case uint8:
		return KindUint8
	case Point2D:
		return KindPoint2D
	}
	return KindRaw
}

// Buffer is a named, typed, little-endian encoded sequence of Count
// elements.
type Buffer struct {
	Name  string
	Kind  Kind
	Count int
	Data  []byte
}

// NewBuffer encodes values into a new buffer.
func NewBuffer[T Elem](name string, values []T) Buffer {
	b := Alloc(name, KindOf[T](), len(values))
	if len(values) > 0 {
		// Sizes match by construction.
		_, _ = binary.Encode(b.Data, binary.LittleEndian, values)
	}
	return b
}

// Alloc returns a zeroed buffer of count elements of kind.
func Alloc(name string, kind Kind, count int) Buffer {
	return Buffer{Name: name, Kind: kind, Count: count, Data: make([]byte, count*kind.Size())}
}

// check verifies the buffer is well formed and holds elements of kind.
func (b *Buffer) check(kind Kind) error {
	if b.Kind != kind {
		return par.Invalid("buffer %q holds %s, not %s", b.Name, b.Kind, kind)
	}
	if b.Count < 0 || len(b.Data) != b.Count*kind.Size() {
		return par.Invalid("buffer %q: %d bytes for %d elements of %s", b.Name, len(b.Data), b.Count, kind)
	}
	return nil
}

// Decode returns a copy of the buffer's elements.
func Decode[T Elem](b *Buffer) ([]T, error) {
	if err := b.check(KindOf[T]()); err != nil {
		return nil, err
	}
	values := make([]T, b.Count)
	if b.Count == 0 {
		return values, nil
	}
	if _, err := binary.Decode(b.Data, binary.LittleEndian, values); err != nil {
		return nil, par.Invalid("buffer %q: %v", b.Name, err)
	}
	return values, nil
}

// Encode writes values into the buffer, which must already be sized for
// them.
func Encode[T Elem](b *Buffer, values []T) error {
	if err := b.check(KindOf[T]()); err != nil {
		return err
	}
	if len(values) != b.Count {
		return par.Invalid("buffer %q has room for %d elements, got %d", b.Name, b.Count, len(values))
	}
	if len(values) == 0 {
		return nil
	}
	if _, err := binary.Encode(b.Data, binary.LittleEndian, values); err != nil {
		return par.Invalid("buffer %q: %v", b.Name, err)
	}
	return nil
}

// Data carries a task's inputs and outputs. Buffers are addressed by name;
// position is only the order they were declared in.
type Data struct {
	Inputs  []Buffer
	Outputs []Buffer
}

func find(buffers []Buffer, name string) *Buffer {
	for i := range buffers {
		if buffers[i].Name == name {
			return &buffers[i]
		}
	}
	return nil
}

// In returns the input buffer called name.
func (d *Data) In(name string) (*Buffer, error) {
	if b := find(d.Inputs, name); b != nil {
		return b, nil
	}
	return nil, par.Invalid("missing input %q", name)
}

// Out returns the output buffer called name.
func (d *Data) Out(name string) (*Buffer, error) {
	if b := find(d.Outputs, name); b != nil {
		return b, nil
	}
	return nil, par.Invalid("missing output %q", name)
}

// SetOut replaces the output buffer with b's name, or appends b. Tasks
// whose output size is only known after Run use it in PostProcessing.
func (d *Data) SetOut(b Buffer) {
	if old := find(d.Outputs, b.Name); old != nil {
		*old = b
		return
	}
	d.Outputs = append(d.Outputs, b)
}

// Field declares one buffer of a Schema.
type Field struct {
	Name     string
	Kind     Kind
	MinCount int
}

// Schema declares the buffers a task reads and writes.
type Schema struct {
	Inputs  []Field
	Outputs []Field
}

// Check verifies that d holds every declared buffer with the declared kind
// and at least MinCount well-formed elements.
func (s Schema) Check(d *Data) error {
	if d == nil {
		return par.Invalid("no task data")
	}
	for _, f := range s.Inputs {
		if err := checkField(d.In, f); err != nil {
			return err
		}
	}
	for _, f := range s.Outputs {
		if err := checkField(d.Out, f); err != nil {
			return err
		}
	}
	return nil
}

func checkField(lookup func(string) (*Buffer, error), f Field) error {
	b, err := lookup(f.Name)
	if err != nil {
		return err
	}
	if err := b.check(f.Kind); err != nil {
		return err
	}
	if b.Count < f.MinCount {
		return par.Invalid("buffer %q has %d elements, need at least %d", f.Name, b.Count, f.MinCount)
	}
	return nil
}
