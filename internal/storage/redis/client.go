package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sessions are cached, not owned, here: the users table stays the source of
// truth, so a short TTL bounds staleness after the auth service rotates a token.
const sessionTTL = 5 * time.Minute

type Client struct {
	cli *redis.Client
}

func New(ctx context.Context, url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis parse url: %w", err)
	}
	cli := redis.NewClient(opts)
	if err := cli.Ping(ctx).Err(); err != nil {
		if closeErr := cli.Close(); closeErr != nil {
			return nil, fmt.Errorf("redis ping: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{cli: cli}, nil
}

func (c *Client) Close() error {
	return c.cli.Close()
}

func (c *Client) SetSession(ctx context.Context, token string, userID int64) error {
	return c.cli.Set(ctx, "session:"+token, userID, sessionTTL).Err()
}

func (c *Client) GetSession(ctx context.Context, token string) (int64, bool, error) {
	val, err := c.cli.Get(ctx, "session:"+token).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("redis session value %q: %w", val, err)
	}
	return id, true, nil
}

func (c *Client) DeleteSession(ctx context.Context, token string) error {
	return c.cli.Del(ctx, "session:"+token).Err()
}
