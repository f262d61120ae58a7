package postgres

import (
	"context"
	"errors"
	"fmt"

	"remitchat/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PublicKeyRepo implements ports.PublicKeyRepository.
type PublicKeyRepo struct {
	pool Pool
}

// NewPublicKeyRepo creates a new PublicKeyRepo.
func NewPublicKeyRepo(pool Pool) *PublicKeyRepo {
	return &PublicKeyRepo{pool: pool}
}

// Upsert replaces the user's published key. One row per user; a fresh
// publish after key rotation overwrites the previous key in place.
func (r *PublicKeyRepo) Upsert(ctx context.Context, rec *domain.PublicKeyRecord) error {
	query := `INSERT INTO public_keys (user_id, public_key, hash_alg, fingerprint, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET public_key = EXCLUDED.public_key, hash_alg = EXCLUDED.hash_alg,
			fingerprint = EXCLUDED.fingerprint, updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query,
		rec.UserID, rec.PublicKey, rec.HashAlg, rec.Fingerprint, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert public key: %w", err)
	}
	return nil
}

// Get fetches a user's published key. Returns nil, nil when the user
// has never published one.
func (r *PublicKeyRepo) Get(ctx context.Context, userID uuid.UUID) (*domain.PublicKeyRecord, error) {
	query := `SELECT user_id, public_key, hash_alg, fingerprint, updated_at
		FROM public_keys WHERE user_id = $1`

	rec := &domain.PublicKeyRecord{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&rec.UserID, &rec.PublicKey, &rec.HashAlg, &rec.Fingerprint, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get public key: %w", err)
	}
	return rec, nil
}
