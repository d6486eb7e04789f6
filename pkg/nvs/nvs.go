// Package nvs provides a namespaced, typed key/value store with the
// semantics of an embedded non-volatile storage partition.
//
// Every Set and EraseKey is atomic and durable when it returns, the way a
// single entry write on flash either lands or does not. Commit is a write
// barrier reporting errors of earlier writes the backend deferred.
package nvs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the key does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoFreePages indicates the partition has no room left and needs
	// to be erased.
	ErrNoFreePages = errors.New("no free pages")
	// ErrNewVersionFound indicates the partition was written by a newer
	// format version and needs to be erased.
	ErrNewVersionFound = errors.New("new version found")
	// ErrTypeMismatch indicates the stored value has a different type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrPowerLoss is returned by writes after a simulated power loss.
	ErrPowerLoss = errors.New("power loss")
	// ErrNotInitialized is returned when a partition is used before Init.
	ErrNotInitialized = errors.New("not initialized")
	// ErrInvalidName indicates an empty or reserved namespace or key.
	ErrInvalidName = errors.New("invalid name")
)

// FormatVersion is the layout version written by this package.
const FormatVersion uint32 = 1

// MaxNameLen is the longest namespace or key name accepted.
const MaxNameLen = 15

// KeyError annotates an error with the entry it relates to.
type KeyError struct {
	Namespace string
	Key       string
	Err       error
}

// Error implements error.
func (e *KeyError) Error() string {
	return fmt.Sprintf("nvs %s/%s: %v", e.Namespace, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *KeyError) Unwrap() error {
	return e.Err
}

// Partition is a storage area holding namespaces.
type Partition interface {
	// Init opens the partition. It returns ErrNoFreePages or
	// ErrNewVersionFound when the partition must be erased before use.
	// A partition filled exactly to capacity is usable: existing entries
	// can be overwritten or erased. Only a partition holding more entries
	// than its capacity reports ErrNoFreePages.
	Init() error
	// Erase wipes all namespaces and formats the partition.
	Erase() error
	// Open returns a handle to a namespace.
	Open(namespace string) (Handle, error)
	Close() error
}

// Handle accesses the entries of one namespace.
type Handle interface {
	Namespace() string
	GetU8(key string) (uint8, error)
	GetU32(key string) (uint32, error)
	SetU8(key string, val uint8) error
	SetU32(key string, val uint32) error
	EraseKey(key string) error
	// Entries lists all entries sorted by key.
	Entries() ([]Entry, error)
	Commit() error
	Close() error
}

func validName(name string) bool {
	return name != "" && len(name) <= MaxNameLen && name[0] != '_'
}
