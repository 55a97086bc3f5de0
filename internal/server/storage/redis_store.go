package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// Redis key
	rosterKey = "roster:members"

	// 名册数据过期时间
	rosterExpiration = 2 * time.Hour
)

// RosterMemberData 名册成员数据（用于 Redis 序列化）
type RosterMemberData struct {
	NetworkID uint64 `json:"network_id"`
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
	IsHost    bool   `json:"is_host"`
	JoinedAt  int64  `json:"joined_at"`
}

// RedisStore Redis 存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// --- 名册存储 ---

// SaveRosterMember 保存名册成员
func (rs *RedisStore) SaveRosterMember(ctx context.Context, m *RosterMemberData) error {
	if m == nil {
		return nil
	}

	data, err := json.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "序列化名册成员失败")
	}

	pipe := rs.client.TxPipeline()
	pipe.HSet(ctx, rosterKey, strconv.FormatUint(m.NetworkID, 10), data)
	pipe.Expire(ctx, rosterKey, rosterExpiration)
	_, err = pipe.Exec(ctx)
	return err
}

// RemoveRosterMember 删除名册成员
func (rs *RedisStore) RemoveRosterMember(ctx context.Context, networkID uint64) error {
	return rs.client.HDel(ctx, rosterKey, strconv.FormatUint(networkID, 10)).Err()
}

// IsRosterMember 判断是否为名册成员
func (rs *RedisStore) IsRosterMember(ctx context.Context, networkID uint64) (bool, error) {
	return rs.client.HExists(ctx, rosterKey, strconv.FormatUint(networkID, 10)).Result()
}

// LoadRosterMembers 加载全部名册成员
func (rs *RedisStore) LoadRosterMembers(ctx context.Context) ([]*RosterMemberData, error) {
	raw, err := rs.client.HGetAll(ctx, rosterKey).Result()
	if err != nil {
		return nil, err
	}

	members := make([]*RosterMemberData, 0, len(raw))
	for key, value := range raw {
		var m RosterMemberData
		if err := json.Unmarshal([]byte(value), &m); err != nil {
			return nil, errors.Wrapf(err, "反序列化名册成员 %s 失败", key)
		}
		members = append(members, &m)
	}
	return members, nil
}

// ClearRoster 清空名册
func (rs *RedisStore) ClearRoster(ctx context.Context) error {
	return rs.client.Del(ctx, rosterKey).Err()
}

// Ping 检查连接
func (rs *RedisStore) Ping(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}
