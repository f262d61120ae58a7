package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"remitchat/internal/core/domain"
	"remitchat/internal/core/ports"
	"remitchat/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentServiceImpl implements ports.PaymentService. Pay is a saga:
// a strict step sequence with one designated compensating action per
// failure branch, so a request never stays in PROCESSING once the
// call returns.
type PaymentServiceImpl struct {
	threadRepo  ports.ThreadRepository
	reqRepo     ports.PaymentRequestRepository
	txRepo      ports.TransactionRepository
	wallets     ports.WalletDirectory
	settlement  ports.SettlementClient
	verifier    ports.VerificationService
	audit       ports.AuditService
	log         zerolog.Logger
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	threadRepo ports.ThreadRepository,
	reqRepo ports.PaymentRequestRepository,
	txRepo ports.TransactionRepository,
	wallets ports.WalletDirectory,
	settlement ports.SettlementClient,
	verifier ports.VerificationService,
	audit ports.AuditService,
	log zerolog.Logger,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		threadRepo: threadRepo,
		reqRepo:    reqRepo,
		txRepo:     txRepo,
		wallets:    wallets,
		settlement: settlement,
		verifier:   verifier,
		audit:      audit,
		log:        log,
	}
}

// Pay executes the payment saga for a request.
//
// Step order: authorize → resolve wallets → check balance → CAS
// pending→processing (linearization point) → consume verification
// code → create pending Transaction → external transfer → finalize.
// Every failure after the CAS reverts processing→pending before the
// error propagates.
func (s *PaymentServiceImpl) Pay(ctx context.Context, threadID, requestID, payerID uuid.UUID, code string) (*ports.PayResult, error) {
	// Step 1: load and authorize.
	thread, err := s.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch thread: %w", err))
	}
	if thread == nil {
		return nil, apperror.ErrNotFound("Thread")
	}
	if !thread.HasParticipant(payerID) {
		return nil, apperror.ErrNotParticipant()
	}

	req, err := s.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch request: %w", err))
	}
	if req == nil || req.ThreadID != threadID {
		return nil, apperror.ErrNotFound("Payment request")
	}
	if req.TargetID != payerID {
		return nil, apperror.ErrNotRequestTarget()
	}
	switch req.Status {
	case domain.RequestStatusPaid:
		return nil, apperror.ErrRequestAlreadyPaid()
	case domain.RequestStatusCancelled:
		return nil, apperror.ErrRequestCancelled()
	}

	// Step 2: resolve verified wallet addresses.
	payerWallet, err := s.wallets.GetVerifiedWallet(ctx, payerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve payer wallet: %w", err))
	}
	if payerWallet == "" {
		return nil, apperror.ErrWalletNotLinked("payer")
	}
	requesterWallet, err := s.wallets.GetVerifiedWallet(ctx, req.RequesterID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve requester wallet: %w", err))
	}
	if requesterWallet == "" {
		return nil, apperror.ErrWalletNotLinked("requester")
	}

	// Step 3: on-chain balance check, before any state mutation.
	balance, err := s.settlement.GetBalance(ctx, payerWallet)
	if err != nil {
		return nil, apperror.ErrSettlementFailed(fmt.Errorf("balance query: %w", err))
	}
	if req.Amount > balance {
		return nil, apperror.ErrInsufficientFunds()
	}

	// Step 4: linearization point. Exactly one concurrent Pay call can
	// win this conditional transition; losers get a conflict and stop.
	now := time.Now().UTC()
	claimed, err := s.reqRepo.MarkProcessing(ctx, requestID, threadID, payerID, now)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("mark processing: %w", err))
	}
	if !claimed {
		return nil, apperror.ErrRequestConflict()
	}

	// From here on every failure path must revert processing→pending.
	// The settlement call and the compensation must survive a client
	// disconnect, so downstream steps run on a detached context.
	dctx := context.WithoutCancel(ctx)

	// Step 5: consume the single-use verification code.
	if err := s.verifier.Consume(dctx, payerID, code); err != nil {
		s.compensate(dctx, requestID, "verification failed")
		return nil, err
	}

	// Step 6: record the settlement attempt before calling out.
	txn := &domain.Transaction{
		ID:             uuid.New(),
		SenderID:       payerID,
		ReceiverID:     req.RequesterID,
		SenderWallet:   payerWallet,
		ReceiverWallet: requesterWallet,
		Amount:         req.Amount,
		Status:         domain.TransactionStatusPending,
		CreatedAt:      now,
	}
	if err := s.txRepo.Create(dctx, txn); err != nil {
		s.compensate(dctx, requestID, "transaction insert failed")
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	// Step 7: irreversible external settlement. Never cancelled once
	// started; the outcome is awaited before any compensation.
	receipt, err := s.settlement.Transfer(dctx, requesterWallet, req.Amount)
	if err != nil {
		s.failTransaction(dctx, txn.ID)
		s.compensate(dctx, requestID, "settlement failed")
		return nil, apperror.ErrSettlementFailed(err)
	}

	settledAt := time.Now().UTC()
	txn.Status = domain.TransactionStatusSuccess
	txn.TxHash = &receipt.TxHash
	txn.ProcessedAt = &settledAt
	if err := s.txRepo.UpdateStatus(dctx, txn.ID, domain.TransactionStatusSuccess, &receipt.TxHash, settledAt); err != nil {
		// Funds moved; the transaction row is stale but the request
		// must still be finalized. Log and continue.
		s.log.Error().Err(err).
			Str("transaction_id", txn.ID.String()).
			Msg("failed to mark transaction success after settlement")
	}

	paid, err := s.reqRepo.MarkPaid(dctx, requestID, ports.PaidFields{
		PaidByUserID:  payerID,
		TransactionID: txn.ID,
		TxHash:        receipt.TxHash,
		At:            settledAt,
	})
	if err != nil || !paid {
		// The processing claim was ours, so this only happens on
		// storage failure. Funds already moved: report it loudly.
		s.log.Error().Err(err).Bool("applied", paid).
			Str("request_id", requestID.String()).
			Str("tx_hash", receipt.TxHash).
			Msg("settlement succeeded but request could not be finalized")
		return nil, apperror.InternalError(fmt.Errorf("finalize paid request: %w", err))
	}

	if err := s.threadRepo.TouchLastMessage(dctx, threadID, settledAt); err != nil {
		s.log.Warn().Err(err).Str("thread_id", threadID.String()).Msg("failed to bump last_message_at")
	}

	s.auditPaid(dctx, payerID, req, txn)

	final, err := s.reqRepo.GetByID(dctx, requestID)
	if err != nil || final == nil {
		// Fall back to the known-good projection.
		req.Status = domain.RequestStatusPaid
		req.PaidAt = &settledAt
		req.PaidByUserID = &payerID
		req.PaidTransactionID = &txn.ID
		req.PaidTxHash = &receipt.TxHash
		final = req
	}

	s.log.Info().
		Str("request_id", requestID.String()).
		Str("tx_hash", receipt.TxHash).
		Int64("amount", req.Amount).
		Msg("payment request settled")

	return &ports.PayResult{Request: final, Transaction: txn}, nil
}

// Cancel transitions a pending request to cancelled. Only the
// requester may cancel; cancelling an already-cancelled request is
// idempotent; a paid request can never be cancelled.
func (s *PaymentServiceImpl) Cancel(ctx context.Context, threadID, requestID, callerID uuid.UUID) (*domain.PaymentRequest, error) {
	req, err := s.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch request: %w", err))
	}
	if req == nil || req.ThreadID != threadID {
		return nil, apperror.ErrNotFound("Payment request")
	}
	if req.RequesterID != callerID {
		return nil, apperror.ErrNotRequester()
	}
	switch req.Status {
	case domain.RequestStatusPaid:
		return nil, apperror.ErrRequestAlreadyPaid()
	case domain.RequestStatusCancelled:
		// Idempotent: return the current terminal state.
		return req, nil
	}

	applied, err := s.reqRepo.MarkCancelled(ctx, requestID, callerID, time.Now().UTC())
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("mark cancelled: %w", err))
	}
	if !applied {
		// Lost a race against a concurrent pay or cancel.
		return nil, apperror.ErrRequestConflict()
	}

	final, err := s.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("re-fetch request: %w", err))
	}

	s.log.Info().
		Str("request_id", requestID.String()).
		Str("cancelled_by", callerID.String()).
		Msg("payment request cancelled")

	return final, nil
}

// compensate reverts processing→pending. A compensation failure is
// logged but never replaces the original error shown to the caller;
// the residual stuck-in-processing risk on a crash here is accepted
// and handled operationally.
func (s *PaymentServiceImpl) compensate(ctx context.Context, requestID uuid.UUID, cause string) {
	reverted, err := s.reqRepo.RevertProcessing(ctx, requestID)
	if err != nil {
		s.log.Error().Err(err).
			Str("request_id", requestID.String()).
			Str("cause", cause).
			Msg("compensating rollback failed, request may be stuck in processing")
		return
	}
	if !reverted {
		s.log.Error().
			Str("request_id", requestID.String()).
			Str("cause", cause).
			Msg("compensating rollback matched no row")
		return
	}
	s.log.Warn().
		Str("request_id", requestID.String()).
		Str("cause", cause).
		Msg("payment saga rolled back to pending")
}

func (s *PaymentServiceImpl) failTransaction(ctx context.Context, txID uuid.UUID) {
	now := time.Now().UTC()
	if err := s.txRepo.UpdateStatus(ctx, txID, domain.TransactionStatusFailed, nil, now); err != nil {
		s.log.Error().Err(err).Str("transaction_id", txID.String()).Msg("failed to mark transaction failed")
	}
}

func (s *PaymentServiceImpl) auditPaid(ctx context.Context, payerID uuid.UUID, req *domain.PaymentRequest, txn *domain.Transaction) {
	if s.audit == nil {
		return
	}
	details, _ := json.Marshal(map[string]interface{}{
		"amount":         req.Amount,
		"transaction_id": txn.ID.String(),
		"tx_hash":        txn.TxHash,
	})
	s.audit.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		UserID:       &payerID,
		Action:       domain.AuditActionPayRequest,
		ResourceType: "payment_request",
		ResourceID:   req.ID.String(),
		Details:      string(details),
		CreatedAt:    time.Now().UTC(),
	})
}
