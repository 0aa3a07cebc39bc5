// api/db/redis.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	logger "github.com/schedly/api/logging"
	"github.com/schedly/api/model"
)

var RedisClient *redis.Client

func InitRedis() error {
	RedisClient = redis.NewClient(&redis.Options{
		Addr:         viper.GetString("redis.addr"),
		Password:     viper.GetString("redis.password"),
		DB:           viper.GetInt("redis.db"),
		DialTimeout:  viper.GetDuration("redis.dialTimeout"),
		ReadTimeout:  viper.GetDuration("redis.readTimeout"),
		WriteTimeout: viper.GetDuration("redis.writeTimeout"),
		PoolSize:     viper.GetInt("redis.poolSize"),
		PoolTimeout:  viper.GetDuration("redis.poolTimeout"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Successfully connected to Redis")
	return nil
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			logger.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}

// DecisionCache stores guard decisions as literal "true"/"false" strings
// under the guard's composite keys. It satisfies the decision engine's
// cache contract.
type DecisionCache struct {
	client *redis.Client
}

func NewDecisionCache(client *redis.Client) *DecisionCache {
	return &DecisionCache{client: client}
}

// Get returns the cached decision for key, or nil on a miss.
func (c *DecisionCache) Get(ctx context.Context, key string) (*bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get decision from cache: %w", err)
	}

	allowed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("malformed cached decision %q: %w", value, err)
	}
	return &allowed, nil
}

// Set stores the decision, overwriting any prior value, with the given expiry.
func (c *DecisionCache) Set(ctx context.Context, key string, allowed bool, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, strconv.FormatBool(allowed), ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache decision: %w", err)
	}
	return nil
}

func CacheOrganization(ctx context.Context, organization *model.Organization) error {
	organizationJSON, err := json.Marshal(organization)
	if err != nil {
		return fmt.Errorf("failed to marshal organization: %w", err)
	}

	key := fmt.Sprintf("organization:%d", organization.ID)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, organizationJSON, defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache organization: %w", err)
	}

	logger.Debug("Organization cached successfully", zap.Int64("organizationID", organization.ID))
	return nil
}

func DeleteCachedOrganization(ctx context.Context, organizationID int64) error {
	key := fmt.Sprintf("organization:%d", organizationID)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete organization from cache: %w", err)
	}
	logger.Debug("Organization deleted from cache", zap.Int64("organizationID", organizationID))
	return nil
}

func GetCachedOrganization(ctx context.Context, organizationID int64) (*model.Organization, error) {
	key := fmt.Sprintf("organization:%d", organizationID)
	organizationJSON, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("Organization not found in cache", zap.Int64("organizationID", organizationID))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get organization from cache: %w", err)
	}

	var organization model.Organization
	err = json.Unmarshal([]byte(organizationJSON), &organization)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal organization: %w", err)
	}

	logger.Debug("Organization retrieved from cache", zap.Int64("organizationID", organizationID))
	return &organization, nil
}

func CacheTeam(ctx context.Context, team *model.Team) error {
	teamJSON, err := json.Marshal(team)
	if err != nil {
		return fmt.Errorf("failed to marshal team: %w", err)
	}

	key := fmt.Sprintf("team:%d", team.ID)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, teamJSON, defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache team: %w", err)
	}

	logger.Debug("Team cached successfully", zap.Int64("teamID", team.ID))
	return nil
}

func DeleteCachedTeam(ctx context.Context, teamID int64) error {
	key := fmt.Sprintf("team:%d", teamID)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete team from cache: %w", err)
	}
	logger.Debug("Team deleted from cache", zap.Int64("teamID", teamID))
	return nil
}

func GetCachedTeam(ctx context.Context, teamID int64) (*model.Team, error) {
	key := fmt.Sprintf("team:%d", teamID)
	teamJSON, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("Team not found in cache", zap.Int64("teamID", teamID))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get team from cache: %w", err)
	}

	var team model.Team
	err = json.Unmarshal([]byte(teamJSON), &team)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal team: %w", err)
	}

	logger.Debug("Team retrieved from cache", zap.Int64("teamID", teamID))
	return &team, nil
}

func CacheUser(ctx context.Context, user *model.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	key := fmt.Sprintf("user:%d", user.ID)
	defaultTTL := viper.GetDuration("redis.defaultCacheTTL")
	err = RedisClient.Set(ctx, key, userJSON, defaultTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache user: %w", err)
	}

	logger.Debug("User cached successfully", zap.Int64("userID", user.ID))
	return nil
}

func DeleteCachedUser(ctx context.Context, userID int64) error {
	key := fmt.Sprintf("user:%d", userID)
	err := RedisClient.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("failed to delete user from cache: %w", err)
	}
	logger.Debug("User deleted from cache", zap.Int64("userID", userID))
	return nil
}

func GetCachedUser(ctx context.Context, userID int64) (*model.User, error) {
	key := fmt.Sprintf("user:%d", userID)
	userJSON, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		logger.Debug("User not found in cache", zap.Int64("userID", userID))
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user from cache: %w", err)
	}

	var user model.User
	err = json.Unmarshal([]byte(userJSON), &user)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	logger.Debug("User retrieved from cache", zap.Int64("userID", userID))
	return &user, nil
}

func RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := RedisClient.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}
