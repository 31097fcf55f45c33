package redis

import (
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// NewClient builds a client from a redis:// or rediss:// URL.
func NewClient(url string) (*backend.Client, error) {
	opts, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return backend.NewClient(opts), nil
}
