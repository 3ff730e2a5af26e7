package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect(t *testing.T) {
	t.Run("Unreachable Server", func(t *testing.T) {
		rdb, err := Connect(Config{Addr: "127.0.0.1:1", TimeoutSeconds: 1})
		assert.Error(t, err)
		assert.Nil(t, rdb)
	})

	// We cannot test a successful connection without a running Redis.
}
