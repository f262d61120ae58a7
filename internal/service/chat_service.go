package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"remitchat/internal/core/domain"
	"remitchat/internal/core/ports"
	"remitchat/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultHistoryLimit = 50

// ChatServiceImpl implements ports.ChatService.
type ChatServiceImpl struct {
	threadRepo ports.ThreadRepository
	msgRepo    ports.MessageRepository
	reqRepo    ports.PaymentRequestRepository
	reportRepo ports.ReportRepository
	log        zerolog.Logger
}

// NewChatService creates a new ChatServiceImpl.
func NewChatService(
	threadRepo ports.ThreadRepository,
	msgRepo ports.MessageRepository,
	reqRepo ports.PaymentRequestRepository,
	reportRepo ports.ReportRepository,
	log zerolog.Logger,
) *ChatServiceImpl {
	return &ChatServiceImpl{
		threadRepo: threadRepo,
		msgRepo:    msgRepo,
		reqRepo:    reqRepo,
		reportRepo: reportRepo,
		log:        log,
	}
}

// OpenThread fetches or lazily creates the single thread for an
// unordered user pair. Creation is idempotent under race: losing the
// uniqueness conflict means another request created the thread first,
// so the canonical record is re-fetched instead of failing.
func (s *ChatServiceImpl) OpenThread(ctx context.Context, userID, peerID uuid.UUID) (*domain.Thread, error) {
	if userID == peerID {
		return nil, apperror.ErrSelfThread()
	}

	key := domain.BuildParticipantKey(userID, peerID)

	existing, err := s.threadRepo.GetByParticipantKey(ctx, key)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch thread: %w", err))
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	thread := &domain.Thread{
		ID:             uuid.New(),
		ParticipantA:   userID,
		ParticipantB:   peerID,
		ParticipantKey: key,
		CreatedAt:      now,
		LastMessageAt:  now,
	}

	err = s.threadRepo.Create(ctx, thread)
	if err == nil {
		s.log.Info().
			Str("thread_id", thread.ID.String()).
			Str("participant_key", key).
			Msg("thread created")
		return thread, nil
	}
	if !errors.Is(err, ports.ErrDuplicate) {
		return nil, apperror.InternalError(fmt.Errorf("create thread: %w", err))
	}

	// Lost the creation race, the winner's record is canonical.
	winner, err := s.threadRepo.GetByParticipantKey(ctx, key)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("re-fetch thread after conflict: %w", err))
	}
	if winner == nil {
		return nil, apperror.InternalError(fmt.Errorf("thread vanished after duplicate conflict"))
	}
	return winner, nil
}

// AppendMessage appends an encrypted message to a thread. A
// request-carrying message creates its PaymentRequest first; if the
// message itself then fails to persist, the request is deleted
// best-effort so no request exists without a visible message. The
// returned view carries the sender's cipher copy only.
func (s *ChatServiceImpl) AppendMessage(ctx context.Context, in ports.AppendMessageInput) (*ports.MessageView, error) {
	if err := in.CipherForSender.Validate(); err != nil {
		return nil, apperror.ErrMalformedCipherPayload(err)
	}
	if err := in.CipherForRecipient.Validate(); err != nil {
		return nil, apperror.ErrMalformedCipherPayload(err)
	}
	if in.Type != domain.MessageTypeText && in.Type != domain.MessageTypeRequest {
		return nil, apperror.Validation(fmt.Sprintf("unknown message type %q", in.Type))
	}

	thread, err := s.threadRepo.GetByID(ctx, in.ThreadID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch thread: %w", err))
	}
	if thread == nil {
		return nil, apperror.ErrNotFound("Thread")
	}
	if !thread.HasParticipant(in.SenderID) {
		return nil, apperror.ErrNotParticipant()
	}

	recipientID := thread.PeerOf(in.SenderID)
	now := time.Now().UTC()

	var request *domain.PaymentRequest
	if in.Type == domain.MessageTypeRequest {
		if in.RequestAmount <= 0 {
			return nil, apperror.ErrInvalidAmount()
		}
		request = &domain.PaymentRequest{
			ID:          uuid.New(),
			ThreadID:    thread.ID,
			RequesterID: in.SenderID,
			TargetID:    recipientID,
			Amount:      in.RequestAmount,
			Note:        in.RequestNote,
			Status:      domain.RequestStatusPending,
			CreatedAt:   now,
		}
		if err := s.reqRepo.Create(ctx, request); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create payment request: %w", err))
		}
	}

	msg := &domain.Message{
		ID:                 uuid.New(),
		ThreadID:           thread.ID,
		SenderID:           in.SenderID,
		RecipientID:        recipientID,
		Type:               in.Type,
		CipherForSender:    in.CipherForSender,
		CipherForRecipient: in.CipherForRecipient,
		CreatedAt:          now,
	}
	if request != nil {
		msg.RequestID = &request.ID
	}

	if err := s.msgRepo.Create(ctx, msg); err != nil {
		if request != nil {
			// Avoid an orphaned request with no visible message.
			if delErr := s.reqRepo.Delete(context.WithoutCancel(ctx), request.ID); delErr != nil {
				s.log.Warn().Err(delErr).
					Str("request_id", request.ID.String()).
					Msg("failed to clean up request after message insert failure")
			}
		}
		return nil, apperror.InternalError(fmt.Errorf("create message: %w", err))
	}

	if err := s.threadRepo.TouchLastMessage(ctx, thread.ID, now); err != nil {
		s.log.Warn().Err(err).Str("thread_id", thread.ID.String()).Msg("failed to bump last_message_at")
	}

	return &ports.MessageView{
		ID:          msg.ID,
		ThreadID:    msg.ThreadID,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		Type:        msg.Type,
		Cipher:      msg.CipherForSender,
		Request:     request,
		CreatedAt:   msg.CreatedAt,
	}, nil
}

// GetHistory returns up to limit messages in chronological order,
// each projected with the cipher copy matching the viewer and the
// linked request's current status. Message records are immutable but
// request status is mutable, so statuses are re-read on every fetch.
func (s *ChatServiceImpl) GetHistory(ctx context.Context, threadID, viewerID uuid.UUID, limit int) ([]ports.MessageView, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultHistoryLimit
	}

	thread, err := s.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch thread: %w", err))
	}
	if thread == nil {
		return nil, apperror.ErrNotFound("Thread")
	}
	if !thread.HasParticipant(viewerID) {
		return nil, apperror.ErrNotParticipant()
	}

	msgs, err := s.msgRepo.ListByThread(ctx, threadID, limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list messages: %w", err))
	}

	var reqIDs []uuid.UUID
	for _, m := range msgs {
		if m.RequestID != nil {
			reqIDs = append(reqIDs, *m.RequestID)
		}
	}
	requests := map[uuid.UUID]domain.PaymentRequest{}
	if len(reqIDs) > 0 {
		requests, err = s.reqRepo.GetManyByIDs(ctx, reqIDs)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("load request statuses: %w", err))
		}
	}

	// Repo returns newest first; the caller renders chronologically.
	views := make([]ports.MessageView, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		view := ports.MessageView{
			ID:          m.ID,
			ThreadID:    m.ThreadID,
			SenderID:    m.SenderID,
			RecipientID: m.RecipientID,
			Type:        m.Type,
			Cipher:      m.CipherFor(viewerID),
			CreatedAt:   m.CreatedAt,
		}
		if m.RequestID != nil {
			if req, ok := requests[*m.RequestID]; ok {
				reqCopy := req
				view.Request = &reqCopy
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// ReportThread files an abuse report with reporter-revealed plaintext
// excerpts, capped in count and length.
func (s *ChatServiceImpl) ReportThread(ctx context.Context, in ports.ReportThreadInput) (*domain.ThreadReport, error) {
	thread, err := s.threadRepo.GetByID(ctx, in.ThreadID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("fetch thread: %w", err))
	}
	if thread == nil {
		return nil, apperror.ErrNotFound("Thread")
	}
	if !thread.HasParticipant(in.ReporterID) {
		return nil, apperror.ErrNotParticipant()
	}

	report := &domain.ThreadReport{
		ID:         uuid.New(),
		ThreadID:   in.ThreadID,
		ReporterID: in.ReporterID,
		ReportedID: thread.PeerOf(in.ReporterID),
		Reason:     in.Reason,
		Excerpts:   in.Excerpts,
		CreatedAt:  time.Now().UTC(),
	}
	if err := report.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create report: %w", err))
	}

	s.log.Info().
		Str("thread_id", in.ThreadID.String()).
		Str("reporter_id", in.ReporterID.String()).
		Int("excerpts", len(report.Excerpts)).
		Msg("thread reported")

	return report, nil
}
