package nvs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisPartition keeps each namespace in a Redis hash named
// "<prefix>:<namespace>". The set "<prefix>:_spaces" tracks namespaces and
// the hash "<prefix>:_nvs" holds the format version.
type RedisPartition struct {
	Client *redis.Client
	Prefix string
	// MaxEntries limits the number of entries, 0 for unlimited.
	MaxEntries int
	// Timeout bounds every round trip.
	Timeout time.Duration
}

// NewRedisPartition creates a partition using client, keys prefixed with
// prefix.
func NewRedisPartition(client *redis.Client, prefix string) *RedisPartition {
	return &RedisPartition{Client: client, Prefix: prefix, Timeout: 2 * time.Second}
}

func (p *RedisPartition) ctx() (context.Context, context.CancelFunc) {
	if p.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), p.Timeout)
}

func (p *RedisPartition) key(name string) string {
	return p.Prefix + ":" + name
}

func (p *RedisPartition) spacesKey() string {
	return p.key("_spaces")
}

func (p *RedisPartition) metaKey() string {
	return p.key("_nvs")
}

// Init implements Partition.
func (p *RedisPartition) Init() error {
	ctx, cancel := p.ctx()
	defer cancel()
	if err := p.Client.Ping(ctx).Err(); err != nil {
		return err
	}
	ver, err := p.Client.HGet(ctx, p.metaKey(), "version").Uint64()
	switch {
	case errors.Is(err, redis.Nil):
		if err = p.Client.HSet(ctx, p.metaKey(), "version", FormatVersion).Err(); err != nil {
			return err
		}
	case err != nil:
		return err
	case uint32(ver) > FormatVersion:
		return ErrNewVersionFound
	}
	if p.MaxEntries > 0 {
		n, err := p.count(ctx)
		if err != nil {
			return err
		}
		if n > p.MaxEntries {
			return ErrNoFreePages
		}
	}
	return nil
}

// Erase implements Partition.
func (p *RedisPartition) Erase() error {
	ctx, cancel := p.ctx()
	defer cancel()
	spaces, err := p.Client.SMembers(ctx, p.spacesKey()).Result()
	if err != nil {
		return err
	}
	_, err = p.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, ns := range spaces {
			pipe.Del(ctx, p.key(ns))
		}
		pipe.Del(ctx, p.spacesKey())
		pipe.HSet(ctx, p.metaKey(), "version", FormatVersion)
		return nil
	})
	return err
}

// Open implements Partition.
func (p *RedisPartition) Open(namespace string) (Handle, error) {
	return newHandle(namespace, p)
}

// Close implements Partition.
func (p *RedisPartition) Close() error {
	return p.Client.Close()
}

func (p *RedisPartition) count(ctx context.Context) (int, error) {
	spaces, err := p.Client.SMembers(ctx, p.spacesKey()).Result()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, ns := range spaces {
		n, err := p.Client.HLen(ctx, p.key(ns)).Result()
		if err != nil {
			return 0, err
		}
		total += int(n)
	}
	return total, nil
}

func (p *RedisPartition) get(ns, key string) (e Entry, err error) {
	ctx, cancel := p.ctx()
	defer cancel()
	val, err := p.Client.HGet(ctx, p.key(ns), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return e, ErrNotFound
	} else if err != nil {
		return e, err
	}
	e.Key = key
	return e, e.UnmarshalBinary(val)
}

func (p *RedisPartition) put(ns string, e Entry) error {
	val, err := e.MarshalBinary()
	if err != nil {
		return err
	}
	ctx, cancel := p.ctx()
	defer cancel()
	if p.MaxEntries > 0 {
		exists, err := p.Client.HExists(ctx, p.key(ns), e.Key).Result()
		if err != nil {
			return err
		}
		if !exists {
			n, err := p.count(ctx)
			if err != nil {
				return err
			}
			if n >= p.MaxEntries {
				return ErrNoFreePages
			}
		}
	}
	_, err = p.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, p.spacesKey(), ns)
		pipe.HSet(ctx, p.key(ns), e.Key, val)
		return nil
	})
	return err
}

func (p *RedisPartition) delete(ns, key string) error {
	ctx, cancel := p.ctx()
	defer cancel()
	n, err := p.Client.HDel(ctx, p.key(ns), key).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *RedisPartition) list(ns string) ([]Entry, error) {
	ctx, cancel := p.ctx()
	defer cancel()
	vals, err := p.Client.HGetAll(ctx, p.key(ns)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(vals))
	for k, v := range vals {
		e := Entry{Key: k}
		if err := e.UnmarshalBinary([]byte(v)); err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		entries = append(entries, e)
	}
	sortEntries(entries)
	return entries, nil
}

// sync round-trips to the server so that connection failures of earlier
// writes surface at Commit.
func (p *RedisPartition) sync() error {
	ctx, cancel := p.ctx()
	defer cancel()
	return p.Client.Ping(ctx).Err()
}

// ParseRedisURL builds a client from redis://[:password@]host:port/db.
func ParseRedisURL(rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

