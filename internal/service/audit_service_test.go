package service

import (
	"context"
	"testing"
	"time"

	"remitchat/internal/core/domain"
	"remitchat/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestAuditService_LogPersistsAsync(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockAuditRepository(ctrl)
	svc := NewAuditService(repo, zerolog.Nop())

	userID := uuid.New()
	done := make(chan *domain.AuditLog, 1)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry *domain.AuditLog) error {
			done <- entry
			return nil
		})

	svc.Log(context.Background(), &domain.AuditLog{
		ID:           uuid.New(),
		UserID:       &userID,
		Action:       domain.AuditActionPayRequest,
		ResourceType: "payment_request",
	})

	select {
	case entry := <-done:
		assert.Equal(t, domain.AuditActionPayRequest, entry.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("audit entry was never persisted")
	}
}

func TestAuditService_NilRepoDoesNotPanic(t *testing.T) {
	svc := NewAuditService(nil, zerolog.Nop())
	svc.Log(context.Background(), &domain.AuditLog{Action: domain.AuditActionOpenThread})
	time.Sleep(10 * time.Millisecond)
}
