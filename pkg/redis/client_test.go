package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestConfigOptions(t *testing.T) {
	opts := Config{Addr: "cache:6379", Password: "pw", DB: 2, PoolSize: 20, DialTimeout: 3 * time.Second}.options()

	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 20, opts.PoolSize)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)

	assert.Zero(t, Config{Addr: "cache:6379"}.options().DialTimeout)
}

func TestNewClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewClient(ctx, Config{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond}, zap.NewNop())

	assert.ErrorContains(t, err, "redis ping 127.0.0.1:1")
}
