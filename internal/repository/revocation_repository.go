package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// revokedKeyPrefix namespaces revocation markers in the key store. A marker
// under invalidated_token_<jti> means that specific token must no longer be
// honored even though its signature and expiry would still check out.
const revokedKeyPrefix = "invalidated_token_"

// RevocationRepo records revoked token ids in Redis. Each marker is a
// single SET with a TTL at least as long as the longest access-token
// lifetime, so a revoked token can never outlive its marker. Writes are
// idempotent: revoking an already-revoked jti simply refreshes the marker.
type RevocationRepo struct{ RDB *redis.Client }

func NewRevocationRepo(rdb *redis.Client) *RevocationRepo { return &RevocationRepo{RDB: rdb} }

// Revoke stores a marker for jti that expires after ttl.
func (r *RevocationRepo) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return r.RDB.Set(ctx, revokedKeyPrefix+jti, true, ttl).Err()
}

// IsRevoked reports whether a marker for jti exists.
func (r *RevocationRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.RDB.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
