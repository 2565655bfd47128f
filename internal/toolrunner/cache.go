package toolrunner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
)

// ResultCache memoizes deterministic tool invocations in Redis, keyed by
// a hash of their arguments. A single process can still fire the same
// deterministic invocation concurrently (e.g. two stage workers racing
// on the same graph); ResultCache folds those into one subprocess run
// with a singleflight.Group before either of them ever reaches Redis.
//
// A nil *ResultCache is a valid, inert cache: every method is a no-op
// that falls through to calling the wrapped function directly, the same
// "absent config disables the feature" contract neo4jmirror.Mirror uses.
type ResultCache struct {
	rdb   *goredis.Client
	ttl   time.Duration
	group singleflight.Group
	log   *logger.Logger
}

// NewResultCacheFromEnv builds a ResultCache from
// MSC_TOOLCACHE_REDIS_ADDR and MSC_TOOLCACHE_TTL_SECONDS. An unset
// address returns (nil, nil): the cache is optional infrastructure, not
// a requirement for the pipeline to run.
func NewResultCacheFromEnv(log *logger.Logger) (*ResultCache, error) {
	if log == nil {
		log = logger.NewNop()
	}
	addr := strings.TrimSpace(os.Getenv("MSC_TOOLCACHE_REDIS_ADDR"))
	if addr == "" {
		return nil, nil
	}
	ttl := 24 * time.Hour
	if v := strings.TrimSpace(os.Getenv("MSC_TOOLCACHE_TTL_SECONDS")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			ttl = time.Duration(secs) * time.Second
		}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("toolrunner: redis ping: %w", err)
	}
	return &ResultCache{rdb: rdb, ttl: ttl, log: log.With("component", "toolcache")}, nil
}

// Close releases the underlying Redis client. Safe to call on a nil
// ResultCache.
func (c *ResultCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// cachedResult is the JSON shape stored in Redis; it mirrors Result
// exactly, kept as a separate type so a future Result field never
// silently changes the wire format of already-cached entries.
type cachedResult struct {
	Meta           map[string]interface{} `json:"meta,omitempty"`
	ElapsedSeconds float64                 `json:"elapsedSeconds"`
}

// cacheKey hashes the parts of opts that determine a deterministic
// invocation's output: the argv, the stdin payload, and which stream
// carries meta output. Timeout is deliberately excluded, since it
// bounds how long we wait, not what the tool computes.
func cacheKey(opts Options) string {
	h := sha256.New()
	for _, a := range opts.Args {
		h.Write([]byte(a))
		h.Write([]byte{0})
	}
	h.Write(opts.Stdin)
	fmt.Fprintf(h, "|meta=%d", opts.Meta)
	return "toolrunner:cache:" + hex.EncodeToString(h.Sum(nil))
}

// Do returns the cached Result for opts if one is present in Redis,
// otherwise invokes fn, caches a successful outcome, and returns it.
// Concurrent calls for the same opts within this process share a single
// call to fn via singleflight. A nil *ResultCache (or one with no
// usable Redis connection) just calls fn directly.
func (c *ResultCache) Do(ctx context.Context, opts Options, fn func() (Result, error)) (Result, error) {
	if c == nil || c.rdb == nil {
		return fn()
	}
	key := cacheKey(opts)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if raw, getErr := c.rdb.Get(ctx, key).Bytes(); getErr == nil {
			var cached cachedResult
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				return Result{Meta: cached.Meta, ElapsedSeconds: cached.ElapsedSeconds}, nil
			}
		}
		result, fnErr := fn()
		if fnErr != nil {
			return Result{}, fnErr
		}
		if raw, jsonErr := json.Marshal(cachedResult{Meta: result.Meta, ElapsedSeconds: result.ElapsedSeconds}); jsonErr == nil {
			if setErr := c.rdb.Set(ctx, key, raw, c.ttl).Err(); setErr != nil {
				c.log.Warn("could not store tool result in cache", "error", setErr.Error())
			}
		}
		return result, nil
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}
