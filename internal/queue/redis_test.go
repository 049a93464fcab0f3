package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantAddr     string
		wantPassword string
		wantDB       int
		wantTLS      bool
		wantErr      bool
	}{
		{
			name:     "bare host and port",
			url:      "localhost:6379",
			wantAddr: "localhost:6379",
		},
		{
			name:     "redis scheme",
			url:      "redis://localhost:6379",
			wantAddr: "localhost:6379",
		},
		{
			name:         "redis with password and db",
			url:          "redis://:secret@redis.internal:6380/2",
			wantAddr:     "redis.internal:6380",
			wantPassword: "secret",
			wantDB:       2,
		},
		{
			name:     "rediss enables tls",
			url:      "rediss://redis.internal:6380",
			wantAddr: "redis.internal:6380",
			wantTLS:  true,
		},
		{
			name:    "unsupported scheme",
			url:     "http://localhost:6379",
			wantErr: true,
		},
		{
			name:    "missing host",
			url:     "redis:///2",
			wantErr: true,
		},
		{
			name:    "invalid db number",
			url:     "redis://localhost:6379/notanumber",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt, err := ParseRedisURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, opt.Addr)
			assert.Equal(t, tt.wantPassword, opt.Password)
			assert.Equal(t, tt.wantDB, opt.DB)
			if tt.wantTLS {
				assert.NotNil(t, opt.TLSConfig)
			} else {
				assert.Nil(t, opt.TLSConfig)
			}
		})
	}
}
