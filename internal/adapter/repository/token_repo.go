package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ErrTokenNotFound means no user owns the presented credential.
var ErrTokenNotFound = errors.New("api token not found")

// TokenRepo resolves bearer credentials to user identities. Only the
// SHA-256 of a token is ever stored.
type TokenRepo struct {
	pool *pgxpool.Pool
}

func NewTokenRepo(pool *pgxpool.Pool) *TokenRepo {
	return &TokenRepo{pool: pool}
}

// HashToken returns the hex SHA-256 of a raw bearer token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the user owning the raw bearer token.
func (r *TokenRepo) Lookup(ctx context.Context, token string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT user_id FROM api_tokens WHERE token_hash = $1 AND revoked_at IS NULL`,
		HashToken(token)).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrTokenNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return userID, nil
}

// Issue stores the hash of a new token for the user and returns nothing
// secret; the caller already holds the raw token.
func (r *TokenRepo) Issue(ctx context.Context, userID uuid.UUID, token string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO api_tokens (id, user_id, token_hash, created_at) VALUES ($1,$2,$3,now())`,
		uuid.New(), userID, HashToken(token))
	return err
}
