package service

import (
	"context"
	"testing"
	"time"

	"remitchat/internal/core/domain"
	"remitchat/internal/core/ports/mocks"
	"remitchat/pkg/e2ee"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type directoryTestDeps struct {
	svc      *DirectoryServiceImpl
	keyRepo  *mocks.MockPublicKeyRepository
	contacts *mocks.MockContacts
	ctrl     *gomock.Controller
}

func setupDirectoryService(t *testing.T) *directoryTestDeps {
	ctrl := gomock.NewController(t)
	d := &directoryTestDeps{
		keyRepo:  mocks.NewMockPublicKeyRepository(ctrl),
		contacts: mocks.NewMockContacts(ctrl),
		ctrl:     ctrl,
	}
	d.svc = NewDirectoryService(d.keyRepo, d.contacts, zerolog.Nop())
	return d
}

func testPublicPEM(t *testing.T) (string, string) {
	t.Helper()
	pair, err := e2ee.GenerateKeyPair()
	require.NoError(t, err)
	pemKey, err := pair.PublicPEM()
	require.NoError(t, err)
	return pemKey, pair.Fingerprint()
}

func TestDirectoryService_PublishKey_Success(t *testing.T) {
	d := setupDirectoryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	pemKey, fingerprint := testPublicPEM(t)

	d.keyRepo.EXPECT().Upsert(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *domain.PublicKeyRecord) error {
			assert.Equal(t, userID, rec.UserID)
			assert.Equal(t, fingerprint, rec.Fingerprint)
			assert.Equal(t, e2ee.HashSHA256, rec.HashAlg)
			return nil
		})

	rec, err := d.svc.PublishKey(ctx, userID, pemKey, e2ee.HashSHA256)
	require.NoError(t, err)
	assert.Equal(t, fingerprint, rec.Fingerprint)
}

func TestDirectoryService_PublishKey_GarbagePEM(t *testing.T) {
	d := setupDirectoryService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.PublishKey(context.Background(), uuid.New(), "not a key", e2ee.HashSHA256)
	assertAppError(t, err, "VAL_002")
}

func TestDirectoryService_PublishKey_UnsupportedHash(t *testing.T) {
	d := setupDirectoryService(t)
	defer d.ctrl.Finish()

	pemKey, _ := testPublicPEM(t)
	_, err := d.svc.PublishKey(context.Background(), uuid.New(), pemKey, "MD5")
	assertAppError(t, err, "VAL_002")
}

func TestDirectoryService_LookupKey_SelfAlwaysAllowed(t *testing.T) {
	d := setupDirectoryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	rec := &domain.PublicKeyRecord{UserID: userID, Fingerprint: "fp", UpdatedAt: time.Now()}

	// No contact check for self-lookup.
	d.keyRepo.EXPECT().Get(ctx, userID).Return(rec, nil)

	got, err := d.svc.LookupKey(ctx, userID, userID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestDirectoryService_LookupKey_MutualContact(t *testing.T) {
	d := setupDirectoryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	requesterID := uuid.New()
	targetID := uuid.New()
	rec := &domain.PublicKeyRecord{UserID: targetID, Fingerprint: "fp"}

	d.contacts.EXPECT().IsMutualContact(ctx, requesterID, targetID).Return(true, nil)
	d.keyRepo.EXPECT().Get(ctx, targetID).Return(rec, nil)

	got, err := d.svc.LookupKey(ctx, requesterID, targetID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestDirectoryService_LookupKey_NotMutualDenied(t *testing.T) {
	d := setupDirectoryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	requesterID := uuid.New()
	targetID := uuid.New()

	d.contacts.EXPECT().IsMutualContact(ctx, requesterID, targetID).Return(false, nil)

	_, err := d.svc.LookupKey(ctx, requesterID, targetID)
	assertAppError(t, err, "AUTHZ_004")
}

func TestDirectoryService_LookupKey_NeverPublished(t *testing.T) {
	d := setupDirectoryService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	requesterID := uuid.New()
	targetID := uuid.New()

	d.contacts.EXPECT().IsMutualContact(ctx, requesterID, targetID).Return(true, nil)
	d.keyRepo.EXPECT().Get(ctx, targetID).Return(nil, nil)

	_, err := d.svc.LookupKey(ctx, requesterID, targetID)
	assertAppError(t, err, "KEY_001")
}
