package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/momentics/clientconnect/api"
)

// DefaultRedisKey is the hash holding hotpatch definitions.
const DefaultRedisKey = "clientconnect:hotpatches"

// Redis loads definitions from a Redis hash. Each field is
// "<namespace>/<api>" and each value a JSON record; namespace and api may
// be omitted from the record and are then taken from the field name.
type Redis struct {
	rdb *redis.Client
	key string
}

var _ api.DefinitionSource = (*Redis)(nil)

// RedisOption configures a Redis source.
type RedisOption func(*Redis)

// WithKey overrides the hash key.
func WithKey(key string) RedisOption {
	return func(r *Redis) { r.key = strings.TrimSpace(key) }
}

// NewRedis creates a Redis source over rdb.
func NewRedis(rdb *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{rdb: rdb, key: DefaultRedisKey}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load implements api.DefinitionSource.
func (r *Redis) Load(ctx context.Context) ([]api.Definition, error) {
	if r == nil || r.rdb == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "redis hotpatch source has no client")
	}
	fields, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", r.key, err)
	}
	return decodeHash(fields)
}

// decodeHash turns hash fields into definitions ordered by field name.
func decodeHash(fields map[string]string) ([]api.Definition, error) {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	defs := make([]api.Definition, 0, len(names))
	for _, field := range names {
		var rec record
		if err := json.Unmarshal([]byte(fields[field]), &rec); err != nil {
			return nil, fmt.Errorf("decode hotpatch %s: %w", field, err)
		}
		ns, apiName, ok := strings.Cut(field, "/")
		if rec.Namespace == "" && ok {
			rec.Namespace = ns
		}
		if rec.API == "" && ok {
			rec.API = apiName
		}
		d, err := rec.definition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return defs, nil
}
