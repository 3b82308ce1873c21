// Package storage is the local key-value store behind the leaderboard. Values
// are opaque strings; callers decide the encoding.
package storage

import "errors"

var ErrClosed = errors.New("storage: store is closed")

type KV interface {
	// Get returns the value stored under key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}
