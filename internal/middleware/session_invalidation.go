package middleware

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// UserSessionsPrefix keys the set of live session ids for one user.
const UserSessionsPrefix = "user_sessions:"

// DestroyUserSessions deletes every session:<sid> listed under
// user_sessions:<userID> and the set itself. Returns how many sessions were
// removed. Used after account changes that the stored session shape would
// otherwise hide, such as admin promotion.
func DestroyUserSessions(ctx context.Context, rdb *redis.Client, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}
	key := UserSessionsPrefix + userID
	sessionIDs, err := rdb.SMembers(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	keys := make([]string, 0, len(sessionIDs)+1)
	for _, sid := range sessionIDs {
		keys = append(keys, SessionRedisPrefix+sid)
	}
	keys = append(keys, key)
	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		return 0, err
	}
	return len(sessionIDs), nil
}
