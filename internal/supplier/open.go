package supplier

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Supported backends.
const (
	BackendMySQL = "mysql"
	BackendRedis = "redis"
	BackendFile  = "file"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	MySQL   MySQLConfig
	Redis   RedisConfig
	File    string
}

// Backends lists the supported backend names.
func Backends() []string {
	return []string{BackendMySQL, BackendRedis, BackendFile}
}

// Open creates the supplier for the configured backend.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Supplier, error) {
	switch opts.Backend {
	case BackendMySQL:
		return NewMySQL(ctx, opts.MySQL, logger)
	case BackendRedis:
		return NewRedis(opts.Redis, logger), nil
	case BackendFile:
		if opts.File == "" {
			return nil, fmt.Errorf("file backend requires a problems file")
		}
		return LoadFile(opts.File)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
