package ports

import (
	"context"

	"remitchat/internal/core/domain"

	"github.com/google/uuid"
)

// External collaborators. These subsystems live outside this service
// (contact CRUD, wallet linking, the blockchain node, the notification
// gateway); only their contracts are known here.

// Contacts answers whether two users have a mutual contact relation.
type Contacts interface {
	IsMutualContact(ctx context.Context, userA, userB uuid.UUID) (bool, error)
}

// WalletDirectory resolves a user's verified wallet address.
// An empty address means the user has not linked a wallet.
type WalletDirectory interface {
	GetVerifiedWallet(ctx context.Context, userID uuid.UUID) (string, error)
}

// TransferReceipt is the settlement reference returned by a
// successful transfer.
type TransferReceipt struct {
	TxHash string
	Status string
}

// SettlementClient is the external, irreversible transfer executor.
// Transfer is non-cancellable once started: its outcome is always
// awaited to completion before any compensation runs.
type SettlementClient interface {
	Transfer(ctx context.Context, toAddress string, amount int64) (*TransferReceipt, error)
	GetBalance(ctx context.Context, address string) (int64, error)
}

// Notifier dispatches a verification code to a contact point.
type Notifier interface {
	Send(ctx context.Context, destination string, channel domain.Channel, code string) error
}

// ContactPoints resolves a user's contact destination for a channel
// (email address or phone number, owned by the account subsystem).
type ContactPoints interface {
	GetContactPoint(ctx context.Context, userID uuid.UUID, channel domain.Channel) (string, error)
}
