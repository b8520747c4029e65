package config

import (
	"flag"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	type want struct {
		runAddress   string
		databasePath string
		redisAddr    string
	}

	tests := []struct {
		name  string
		env   map[string]string
		flags []string
		want  want
	}{
		{
			name:  "defaults",
			env:   map[string]string{},
			flags: []string{},
			want: want{
				runAddress:   "localhost:8080",
				databasePath: "./llevatelo.db",
			},
		},
		{
			name: "env only",
			env: map[string]string{
				"RUN_ADDRESS":   "localhost:9999",
				"DATABASE_PATH": "/var/lib/llevatelo/data.db",
				"REDIS_ADDR":    "localhost:6379",
			},
			flags: []string{},
			want: want{
				runAddress:   "localhost:9999",
				databasePath: "/var/lib/llevatelo/data.db",
				redisAddr:    "localhost:6379",
			},
		},
		{
			name: "flags only",
			env:  map[string]string{},
			flags: []string{
				"-a", "localhost:7777",
				"-d", ":memory:",
				"-r", "cache:6379",
			},
			want: want{
				runAddress:   "localhost:7777",
				databasePath: ":memory:",
				redisAddr:    "cache:6379",
			},
		},
		{
			name: "env overrides flags",
			env: map[string]string{
				"RUN_ADDRESS":   "env:9000",
				"DATABASE_PATH": "/env/data.db",
				"REDIS_ADDR":    "env-cache:6379",
			},
			flags: []string{
				"-a", "flag:8000",
				"-d", "/flag/data.db",
				"-r", "flag-cache:6379",
			},
			want: want{
				runAddress:   "env:9000",
				databasePath: "/env/data.db",
				redisAddr:    "env-cache:6379",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			os.Args = append([]string{"test"}, tt.flags...)

			cfg, err := Parse()
			require.NoError(t, err)

			assert.Equal(t, tt.want.runAddress, cfg.RunAddress)
			assert.Equal(t, tt.want.databasePath, cfg.DatabasePath)
			assert.Equal(t, tt.want.redisAddr, cfg.RedisAddr)
		})
	}
}
