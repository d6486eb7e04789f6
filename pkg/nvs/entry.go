package nvs

import (
	"encoding/binary"
	"fmt"
)

// Type is the stored type of an entry.
type Type byte

// Entry types.
const (
	TypeU8  Type = 0x01
	TypeU32 Type = 0x04
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case TypeU8:
		return "u8"
	case TypeU32:
		return "u32"
	}
	return fmt.Sprintf("type(0x%02x)", byte(t))
}

func (t Type) size() int {
	switch t {
	case TypeU8:
		return 1
	case TypeU32:
		return 4
	}
	return 0
}

// Entry is a typed value.
type Entry struct {
	Key   string
	Type  Type
	Value uint32
}

// MarshalBinary encodes the type tag followed by the little-endian value.
func (e Entry) MarshalBinary() ([]byte, error) {
	n := e.Type.size()
	if n == 0 {
		return nil, fmt.Errorf("nvs: unsupported %v", e.Type)
	}
	b := make([]byte, 1+4)
	b[0] = byte(e.Type)
	binary.LittleEndian.PutUint32(b[1:], e.Value)
	return b[:1+n], nil
}

// UnmarshalBinary decodes the value part of an entry.
func (e *Entry) UnmarshalBinary(b []byte) error {
	if len(b) < 1 {
		return fmt.Errorf("nvs: empty entry")
	}
	t := Type(b[0])
	n := t.size()
	if n == 0 || len(b) != 1+n {
		return fmt.Errorf("nvs: corrupted entry of %v, %d bytes", t, len(b))
	}
	var v [4]byte
	copy(v[:], b[1:])
	e.Type, e.Value = t, binary.LittleEndian.Uint32(v[:])
	return nil
}

// backend is the raw storage of a Partition.
type backend interface {
	get(ns, key string) (Entry, error)
	put(ns string, e Entry) error
	delete(ns, key string) error
	list(ns string) ([]Entry, error)
	sync() error
}

// handle implements Handle over a backend, adding name and type checks.
type handle struct {
	ns string
	be backend
}

func newHandle(ns string, be backend) (*handle, error) {
	if !validName(ns) {
		return nil, &KeyError{Namespace: ns, Err: ErrInvalidName}
	}
	return &handle{ns: ns, be: be}, nil
}

func (h *handle) Namespace() string {
	return h.ns
}

func (h *handle) wrap(key string, err error) error {
	if err == nil {
		return nil
	}
	return &KeyError{Namespace: h.ns, Key: key, Err: err}
}

func (h *handle) getTyped(key string, t Type) (uint32, error) {
	e, err := h.be.get(h.ns, key)
	if err != nil {
		return 0, h.wrap(key, err)
	}
	if e.Type != t {
		return 0, h.wrap(key, ErrTypeMismatch)
	}
	return e.Value, nil
}

func (h *handle) setTyped(key string, t Type, v uint32) error {
	if !validName(key) {
		return h.wrap(key, ErrInvalidName)
	}
	return h.wrap(key, h.be.put(h.ns, Entry{Key: key, Type: t, Value: v}))
}

func (h *handle) GetU8(key string) (uint8, error) {
	v, err := h.getTyped(key, TypeU8)
	return uint8(v), err
}

func (h *handle) GetU32(key string) (uint32, error) {
	return h.getTyped(key, TypeU32)
}

func (h *handle) SetU8(key string, val uint8) error {
	return h.setTyped(key, TypeU8, uint32(val))
}

func (h *handle) SetU32(key string, val uint32) error {
	return h.setTyped(key, TypeU32, val)
}

func (h *handle) EraseKey(key string) error {
	return h.wrap(key, h.be.delete(h.ns, key))
}

func (h *handle) Entries() ([]Entry, error) {
	entries, err := h.be.list(h.ns)
	return entries, h.wrap("*", err)
}

func (h *handle) Commit() error {
	return h.wrap("*", h.be.sync())
}

func (h *handle) Close() error {
	return nil
}
