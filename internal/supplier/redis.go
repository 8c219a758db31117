package supplier

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"github.com/eugenenazirov/cartcheck/internal/packing"
)

// Key layout:
//
//	problems                 list of problem ids, in evaluation order
//	problem:<id>:capacity    cart capacity
//	problem:<id>:items       hash of item id to volume
const problemsKey = "problems"

// RedisConfig holds the connection settings of the Redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}

// Redis reads problems from a Redis database.
type Redis struct {
	pool   *redis.Pool
	logger *zap.Logger
}

// NewRedis creates a Redis supplier. Connections are dialled lazily, one per fetch.
func NewRedis(cfg RedisConfig, logger *zap.Logger) *Redis {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	url := cfg.Addr
	if !strings.Contains(url, "://") {
		url = "redis://" + url
	}

	return &Redis{
		pool: &redis.Pool{
			MaxIdle:      1,
			IdleTimeout:  time.Minute,
			Wait:         true,
			TestOnBorrow: testOnBorrow,
			DialContext: func(ctx context.Context) (redis.Conn, error) {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return redis.DialURL(url,
					redis.DialPassword(cfg.Password),
					redis.DialDatabase(cfg.DB),
					redis.DialConnectTimeout(timeout),
					redis.DialReadTimeout(timeout),
					redis.DialWriteTimeout(timeout),
				)
			},
		},
		logger: logger.With(zap.String("component", "supplier.redis")),
	}
}

func testOnBorrow(c redis.Conn, lastUsed time.Time) error {
	if time.Since(lastUsed) < 15*time.Second {
		return nil
	}
	_, err := c.Do("PING")
	return err
}

func capacityKey(id packing.ProblemID) string {
	return fmt.Sprintf("problem:%d:capacity", id)
}

func itemsKey(id packing.ProblemID) string {
	return fmt.Sprintf("problem:%d:items", id)
}

func (r *Redis) connect(ctx context.Context) (redis.Conn, error) {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		r.logger.Error("failed to connect to redis", zap.Error(err))
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return conn, nil
}

func (r *Redis) release(conn redis.Conn) {
	if err := conn.Close(); err != nil {
		r.logger.Warn("failed to release redis connection", zap.Error(err))
	}
}

// ListProblemIDs returns the ids in the problems list.
func (r *Redis) ListProblemIDs(ctx context.Context) ([]packing.ProblemID, error) {
	conn, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer r.release(conn)

	values, err := redis.Int64s(redis.DoContext(conn, ctx, "LRANGE", problemsKey, 0, -1))
	if err != nil {
		r.logger.Error("failed to list problems", zap.String("cmd", "LRANGE"), zap.String("key", problemsKey), zap.Error(err))
		return nil, fmt.Errorf("list problem ids: %w", err)
	}

	ids := make([]packing.ProblemID, len(values))
	for i, v := range values {
		ids[i] = packing.ProblemID(v)
	}
	return ids, nil
}

// GetProblem reads the capacity and items of one problem.
func (r *Redis) GetProblem(ctx context.Context, id packing.ProblemID) (packing.Problem, error) {
	conn, err := r.connect(ctx)
	if err != nil {
		return packing.Problem{}, err
	}
	defer r.release(conn)

	capacity, err := redis.Float64(redis.DoContext(conn, ctx, "GET", capacityKey(id)))
	if errors.Is(err, redis.ErrNil) {
		return packing.Problem{}, notFound(id)
	}
	if err != nil {
		r.logger.Error("failed to get capacity", zap.String("cmd", "GET"), zap.String("key", capacityKey(id)), zap.Error(err))
		return packing.Problem{}, fmt.Errorf("get capacity of problem %d: %w", id, err)
	}

	fields, err := redis.StringMap(redis.DoContext(conn, ctx, "HGETALL", itemsKey(id)))
	if err != nil {
		r.logger.Error("failed to get items", zap.String("cmd", "HGETALL"), zap.String("key", itemsKey(id)), zap.Error(err))
		return packing.Problem{}, fmt.Errorf("get items of problem %d: %w", id, err)
	}

	items := make(packing.Items, len(fields))
	for field, value := range fields {
		itemID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return packing.Problem{}, fmt.Errorf("%w: problem %d has item id %q", ErrInvalidProblem, id, field)
		}
		volume, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return packing.Problem{}, fmt.Errorf("%w: item %d of problem %d has volume %q", ErrInvalidProblem, itemID, id, value)
		}
		items[packing.ItemID(itemID)] = volume
	}

	p := packing.Problem{ID: id, Capacity: capacity, Items: items}
	if err := validateProblem(p); err != nil {
		return packing.Problem{}, err
	}
	return p, nil
}

// Put writes a problem, replacing its previous items, and moves its id to the end of the
// problems list. Re-putting an existing problem therefore changes the evaluation order.
func (r *Redis) Put(ctx context.Context, p packing.Problem) error {
	if err := validateProblem(p); err != nil {
		return err
	}

	conn, err := r.connect(ctx)
	if err != nil {
		return err
	}
	defer r.release(conn)

	args := redis.Args{}.Add(itemsKey(p.ID))
	for id, volume := range p.Items {
		args = args.Add(int64(id), volume)
	}

	_ = conn.Send("MULTI")
	_ = conn.Send("SET", capacityKey(p.ID), p.Capacity)
	_ = conn.Send("DEL", itemsKey(p.ID))
	if len(p.Items) > 0 {
		_ = conn.Send("HSET", args...)
	}
	_ = conn.Send("LREM", problemsKey, 0, int64(p.ID))
	_ = conn.Send("RPUSH", problemsKey, int64(p.ID))
	if _, err := redis.DoContext(conn, ctx, "EXEC"); err != nil {
		r.logger.Error("failed to store problem", zap.Int64("problem_id", int64(p.ID)), zap.Error(err))
		return fmt.Errorf("store problem %d: %w", p.ID, err)
	}
	return nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.pool.Close()
}
