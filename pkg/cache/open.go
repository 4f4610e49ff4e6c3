package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Backend names accepted by [Open].
const (
	BackendNull  = "null"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Dir     string
	Redis   RedisConfig
	Mongo   MongoConfig
}

// Open builds the backend named by opts.Backend. An empty backend means
// file; an empty Dir means [DefaultDir].
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch strings.ToLower(opts.Backend) {
	case BackendNull, "none":
		return NewNullCache(), nil
	case "", BackendFile:
		dir := opts.Dir
		if dir == "" {
			var err error
			if dir, err = DefaultDir(); err != nil {
				return nil, err
			}
		}
		return wrap(NewFileCache(dir))
	case BackendRedis:
		return wrap(NewRedisCache(ctx, opts.Redis))
	case BackendMongo:
		return wrap(NewMongoCache(ctx, opts.Mongo))
	}
	return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
}

// DefaultDir returns the per-user cache directory for claimgraph.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate user cache dir: %w", err)
	}
	return filepath.Join(base, "claimgraph"), nil
}

// wrap keeps a failed constructor's typed nil out of the interface.
func wrap[C Cache](c C, err error) (Cache, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}
