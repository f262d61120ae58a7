package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"remitchat/internal/core/domain"
	"remitchat/internal/core/ports"
	"remitchat/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type verificationTestDeps struct {
	svc      *VerificationServiceImpl
	codes    *mocks.MockCodeStore
	contacts *mocks.MockContactPoints
	notifier *mocks.MockNotifier
	ctrl     *gomock.Controller
}

func setupVerificationService(t *testing.T) *verificationTestDeps {
	ctrl := gomock.NewController(t)
	d := &verificationTestDeps{
		codes:    mocks.NewMockCodeStore(ctrl),
		contacts: mocks.NewMockContactPoints(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
		ctrl:     ctrl,
	}
	d.svc = NewVerificationService(d.codes, d.contacts, d.notifier, zerolog.Nop())
	return d
}

func TestVerificationService_Issue_Email(t *testing.T) {
	d := setupVerificationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	var issued string
	d.contacts.EXPECT().GetContactPoint(ctx, userID, domain.ChannelEmail).Return("alice@example.com", nil)
	d.codes.EXPECT().Put(ctx, userID, gomock.Any(), domain.ChannelEmail, 5*time.Minute).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, code string, _ domain.Channel, _ time.Duration) error {
			issued = code
			return nil
		})
	d.notifier.EXPECT().Send(ctx, "alice@example.com", domain.ChannelEmail, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ domain.Channel, code string) error {
			assert.Equal(t, issued, code, "stored and dispatched codes match")
			return nil
		})

	result, err := d.svc.Issue(ctx, userID, domain.ChannelEmail)
	require.NoError(t, err)
	assert.Len(t, issued, 6)
	assert.Regexp(t, `^\d{6}$`, issued)
	assert.Equal(t, "al***@example.com", result.MaskedDestination)
	assert.Equal(t, 5*time.Minute, result.ExpiresIn)
}

func TestVerificationService_Issue_SMSMasking(t *testing.T) {
	d := setupVerificationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	d.contacts.EXPECT().GetContactPoint(ctx, userID, domain.ChannelSMS).Return("+84901234567", nil)
	d.codes.EXPECT().Put(ctx, userID, gomock.Any(), domain.ChannelSMS, 5*time.Minute).Return(nil)
	d.notifier.EXPECT().Send(ctx, "+84901234567", domain.ChannelSMS, gomock.Any()).Return(nil)

	result, err := d.svc.Issue(ctx, userID, domain.ChannelSMS)
	require.NoError(t, err)
	assert.Equal(t, "********4567", result.MaskedDestination)
}

func TestVerificationService_Issue_UnknownChannel(t *testing.T) {
	d := setupVerificationService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Issue(context.Background(), uuid.New(), "PIGEON")
	assertAppError(t, err, "VAL_002")
}

func TestVerificationService_Issue_NoContactPoint(t *testing.T) {
	d := setupVerificationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	d.contacts.EXPECT().GetContactPoint(ctx, userID, domain.ChannelEmail).Return("", nil)

	_, err := d.svc.Issue(ctx, userID, domain.ChannelEmail)
	assertAppError(t, err, "VAL_002")
}

func TestVerificationService_Issue_DispatchFailure(t *testing.T) {
	d := setupVerificationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	d.contacts.EXPECT().GetContactPoint(ctx, userID, domain.ChannelEmail).Return("a@b.co", nil)
	d.codes.EXPECT().Put(ctx, userID, gomock.Any(), domain.ChannelEmail, 5*time.Minute).Return(nil)
	d.notifier.EXPECT().Send(ctx, "a@b.co", domain.ChannelEmail, gomock.Any()).
		Return(errors.New("smtp timeout"))

	_, err := d.svc.Issue(ctx, userID, domain.ChannelEmail)
	assertAppError(t, err, "DEP_002")
}

func TestVerificationService_Consume_Match(t *testing.T) {
	d := setupVerificationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	d.codes.EXPECT().ConsumeIfMatch(ctx, userID, "123456").Return(ports.CodeConsumeOK, nil)

	assert.NoError(t, d.svc.Consume(ctx, userID, "123456"))
}

func TestVerificationService_Consume_Missing(t *testing.T) {
	d := setupVerificationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	d.codes.EXPECT().ConsumeIfMatch(ctx, userID, "123456").Return(ports.CodeConsumeMissing, nil)

	assertAppError(t, d.svc.Consume(ctx, userID, "123456"), "CODE_001")
}

func TestVerificationService_Consume_Mismatch(t *testing.T) {
	d := setupVerificationService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	d.codes.EXPECT().ConsumeIfMatch(ctx, userID, "654321").Return(ports.CodeConsumeMismatch, nil)

	assertAppError(t, d.svc.Consume(ctx, userID, "654321"), "CODE_002")
}

func TestVerificationService_Consume_WrongLengthShortCircuits(t *testing.T) {
	d := setupVerificationService(t)
	defer d.ctrl.Finish()

	// No store call for obviously malformed codes.
	assertAppError(t, d.svc.Consume(context.Background(), uuid.New(), "123"), "CODE_002")
}
