package service

import (
	"context"
	"fmt"
	"time"

	"remitchat/internal/core/domain"
	"remitchat/internal/core/ports"
	"remitchat/pkg/apperror"
	"remitchat/pkg/e2ee"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DirectoryServiceImpl implements ports.DirectoryService.
type DirectoryServiceImpl struct {
	keyRepo  ports.PublicKeyRepository
	contacts ports.Contacts
	log      zerolog.Logger
}

// NewDirectoryService creates a new DirectoryServiceImpl.
func NewDirectoryService(keyRepo ports.PublicKeyRepository, contacts ports.Contacts, log zerolog.Logger) *DirectoryServiceImpl {
	return &DirectoryServiceImpl{keyRepo: keyRepo, contacts: contacts, log: log}
}

// PublishKey upserts the caller's advertised public key, replacing any
// previous one. The key must parse as a valid RSA public key.
func (s *DirectoryServiceImpl) PublishKey(ctx context.Context, userID uuid.UUID, pemKey, hashAlg string) (*domain.PublicKeyRecord, error) {
	parsed, err := e2ee.ParsePublishedKey(pemKey, hashAlg)
	if err != nil {
		return nil, apperror.Validation(fmt.Sprintf("invalid public key: %v", err))
	}
	if hashAlg != e2ee.HashSHA256 && hashAlg != e2ee.HashSHA1 {
		return nil, apperror.Validation(fmt.Sprintf("unsupported hash algorithm %q", hashAlg))
	}

	rec := &domain.PublicKeyRecord{
		UserID:      userID,
		PublicKey:   pemKey,
		HashAlg:     hashAlg,
		Fingerprint: parsed.Fingerprint,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.keyRepo.Upsert(ctx, rec); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("upsert public key: %w", err))
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("fingerprint", rec.Fingerprint).
		Msg("public key published")

	return rec, nil
}

// LookupKey returns the target's current public key. Self-lookup is
// always permitted; otherwise a mutual contact relation is required.
func (s *DirectoryServiceImpl) LookupKey(ctx context.Context, requesterID, targetID uuid.UUID) (*domain.PublicKeyRecord, error) {
	if requesterID != targetID {
		mutual, err := s.contacts.IsMutualContact(ctx, requesterID, targetID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("contact check: %w", err))
		}
		if !mutual {
			return nil, apperror.ErrKeyLookupDenied()
		}
	}

	rec, err := s.keyRepo.Get(ctx, targetID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get public key: %w", err))
	}
	if rec == nil {
		return nil, apperror.ErrKeyNotPublished()
	}
	return rec, nil
}
