package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"remitchat/internal/core/domain"
	"remitchat/internal/core/ports"
	"remitchat/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	codeTTL    = 5 * time.Minute
	codeDigits = 6
)

// VerificationServiceImpl implements ports.VerificationService: a
// short-lived, single-use 6-digit code dispatched out of band and
// consumed exactly once, immediately before funds move.
type VerificationServiceImpl struct {
	codes    ports.CodeStore
	contacts ports.ContactPoints
	notifier ports.Notifier
	log      zerolog.Logger
}

// NewVerificationService creates a new VerificationServiceImpl.
func NewVerificationService(
	codes ports.CodeStore,
	contacts ports.ContactPoints,
	notifier ports.Notifier,
	log zerolog.Logger,
) *VerificationServiceImpl {
	return &VerificationServiceImpl{
		codes:    codes,
		contacts: contacts,
		notifier: notifier,
		log:      log,
	}
}

// Issue generates a fresh code for the user, replacing any previously
// active one, and dispatches it over the requested channel. The code
// is stored before dispatch: a notification failure leaves no usable
// code behind only in the sense that the caller is told to retry.
func (s *VerificationServiceImpl) Issue(ctx context.Context, userID uuid.UUID, channel domain.Channel) (*ports.IssueCodeResult, error) {
	if !channel.IsValid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown channel %q", channel))
	}

	destination, err := s.contacts.GetContactPoint(ctx, userID, channel)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve contact point: %w", err))
	}
	if destination == "" {
		return nil, apperror.Validation(fmt.Sprintf("no %s contact point on file", channel))
	}

	code, err := generateCode()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate code: %w", err))
	}

	if err := s.codes.Put(ctx, userID, code, channel, codeTTL); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("store code: %w", err))
	}

	if err := s.notifier.Send(ctx, destination, channel, code); err != nil {
		s.log.Error().Err(err).
			Str("user_id", userID.String()).
			Str("channel", string(channel)).
			Msg("verification code dispatch failed")
		return nil, apperror.ErrNotificationFailed(err)
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("channel", string(channel)).
		Msg("verification code issued")

	return &ports.IssueCodeResult{
		MaskedDestination: domain.MaskDestination(destination, channel),
		Channel:           channel,
		ExpiresIn:         codeTTL,
	}, nil
}

// Consume atomically checks and clears the user's active code. A
// mismatch leaves the code active for another attempt; the store
// enforces the attempt budget.
func (s *VerificationServiceImpl) Consume(ctx context.Context, userID uuid.UUID, code string) error {
	if len(code) != codeDigits {
		return apperror.ErrCodeMismatch()
	}

	result, err := s.codes.ConsumeIfMatch(ctx, userID, code)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("consume code: %w", err))
	}
	switch result {
	case ports.CodeConsumeOK:
		return nil
	case ports.CodeConsumeMissing:
		return apperror.ErrNoActiveCode()
	default:
		s.log.Warn().Str("user_id", userID.String()).Msg("verification code mismatch")
		return apperror.ErrCodeMismatch()
	}
}

// generateCode returns a uniformly random 6-digit code with leading
// zeros preserved.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
