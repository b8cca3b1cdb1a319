package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "object id", in: "/api/product/65a1f0c2e4b0a1b2c3d4e5f6", want: "/api/product/:id"},
		{name: "nested id", in: "/api/product/65a1f0c2e4b0a1b2c3d4e5f6/checkout", want: "/api/product/:id/checkout"},
		{name: "no id", in: "/api/category", want: "/api/category"},
		{name: "short hex kept", in: "/api/product/abc123", want: "/api/product/abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePath(tt.in))
		})
	}
}
