package server_test

import (
	"testing"
	"time"

	"ticket-reconciler/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Addr(t *testing.T) {
	tests := []struct {
		name string
		port string
		want string
	}{
		{"Default", "8080", ":8080"},
		{"Custom", "9191", ":9191"},
		{"Empty", "", ":"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{Port: tt.port}
			assert.Equal(t, tt.want, c.Addr())
		})
	}
}

func TestConfig_Timeouts(t *testing.T) {
	c := server.Config{ReadTimeoutSeconds: 30, WriteTimeoutSeconds: 300}

	assert.Equal(t, 30*time.Second, c.ReadTimeout())
	assert.Equal(t, 5*time.Minute, c.WriteTimeout())
	assert.Zero(t, server.Config{}.ReadTimeout())
}
