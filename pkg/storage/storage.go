// Package storage provides the key-value persistence port used for integration lists and
// passkey sessions, with Postgres, Redis and in-memory adapters.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("key not found")

type KeyValue interface {
	// Load returns the value stored under key or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverRedis    Driver = "redis"
	DriverMemory   Driver = "memory"
)

func ParseDriver(s string) (Driver, error) {
	switch Driver(s) {
	case DriverPostgres, DriverRedis, DriverMemory:
		return Driver(s), nil
	}
	return "", fmt.Errorf("unknown storage driver: %q", s)
}
