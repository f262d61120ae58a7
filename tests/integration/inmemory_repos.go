package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"remitchat/internal/core/domain"
	"remitchat/internal/core/ports"

	"github.com/google/uuid"
)

// In-memory repository implementations. They mirror the conditional
// update semantics of the postgres layer (guarded single-record
// transitions) so the services can be exercised without a database.

// --- Public Key Repo ---

type inMemoryKeyRepo struct {
	mu   sync.RWMutex
	keys map[uuid.UUID]domain.PublicKeyRecord
}

func newInMemoryKeyRepo() *inMemoryKeyRepo {
	return &inMemoryKeyRepo{keys: make(map[uuid.UUID]domain.PublicKeyRecord)}
}

func (r *inMemoryKeyRepo) Upsert(ctx context.Context, rec *domain.PublicKeyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[rec.UserID] = *rec
	return nil
}

func (r *inMemoryKeyRepo) Get(ctx context.Context, userID uuid.UUID) (*domain.PublicKeyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.keys[userID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// --- Thread Repo ---

type inMemoryThreadRepo struct {
	mu      sync.Mutex
	threads map[uuid.UUID]domain.Thread
	byKey   map[string]uuid.UUID
}

func newInMemoryThreadRepo() *inMemoryThreadRepo {
	return &inMemoryThreadRepo{
		threads: make(map[uuid.UUID]domain.Thread),
		byKey:   make(map[string]uuid.UUID),
	}
}

func (r *inMemoryThreadRepo) Create(ctx context.Context, t *domain.Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byKey[t.ParticipantKey]; exists {
		return ports.ErrDuplicate
	}
	r.threads[t.ID] = *t
	r.byKey[t.ParticipantKey] = t.ID
	return nil
}

func (r *inMemoryThreadRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *inMemoryThreadRepo) GetByParticipantKey(ctx context.Context, key string) (*domain.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byKey[key]
	if !ok {
		return nil, nil
	}
	t := r.threads[id]
	return &t, nil
}

func (r *inMemoryThreadRepo) TouchLastMessage(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[id]
	if !ok {
		return nil
	}
	if t.LastMessageAt.Before(at) {
		t.LastMessageAt = at
		r.threads[id] = t
	}
	return nil
}

// --- Message Repo ---

type inMemoryMessageRepo struct {
	mu       sync.Mutex
	messages []domain.Message
	failNext bool
}

func newInMemoryMessageRepo() *inMemoryMessageRepo {
	return &inMemoryMessageRepo{}
}

func (r *inMemoryMessageRepo) Create(ctx context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext {
		r.failNext = false
		return fmt.Errorf("simulated insert failure")
	}
	r.messages = append(r.messages, *m)
	return nil
}

func (r *inMemoryMessageRepo) ListByThread(ctx context.Context, threadID uuid.UUID, limit int) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for i := len(r.messages) - 1; i >= 0 && len(out) < limit; i-- {
		if r.messages[i].ThreadID == threadID {
			out = append(out, r.messages[i])
		}
	}
	return out, nil
}

// --- Payment Request Repo ---

type inMemoryRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]domain.PaymentRequest
}

func newInMemoryRequestRepo() *inMemoryRequestRepo {
	return &inMemoryRequestRepo{requests: make(map[uuid.UUID]domain.PaymentRequest)}
}

func (r *inMemoryRequestRepo) Create(ctx context.Context, req *domain.PaymentRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[req.ID] = *req
	return nil
}

func (r *inMemoryRequestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, id)
	return nil
}

func (r *inMemoryRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (r *inMemoryRequestRepo) GetManyByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.PaymentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uuid.UUID]domain.PaymentRequest, len(ids))
	for _, id := range ids {
		if req, ok := r.requests[id]; ok {
			out[id] = req
		}
	}
	return out, nil
}

func (r *inMemoryRequestRepo) MarkProcessing(ctx context.Context, id, threadID, targetID uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.ThreadID != threadID || req.TargetID != targetID || req.Status != domain.RequestStatusPending {
		return false, nil
	}
	req.Status = domain.RequestStatusProcessing
	req.ProcessingAt = &at
	r.requests[id] = req
	return true, nil
}

func (r *inMemoryRequestRepo) RevertProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != domain.RequestStatusProcessing {
		return false, nil
	}
	req.Status = domain.RequestStatusPending
	req.ProcessingAt = nil
	r.requests[id] = req
	return true, nil
}

func (r *inMemoryRequestRepo) MarkPaid(ctx context.Context, id uuid.UUID, paid ports.PaidFields) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != domain.RequestStatusProcessing {
		return false, nil
	}
	req.Status = domain.RequestStatusPaid
	req.PaidAt = &paid.At
	req.PaidByUserID = &paid.PaidByUserID
	req.PaidTransactionID = &paid.TransactionID
	hash := paid.TxHash
	req.PaidTxHash = &hash
	r.requests[id] = req
	return true, nil
}

func (r *inMemoryRequestRepo) MarkCancelled(ctx context.Context, id, byUserID uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != domain.RequestStatusPending {
		return false, nil
	}
	req.Status = domain.RequestStatusCancelled
	req.CancelledAt = &at
	req.CancelledByUserID = &byUserID
	r.requests[id] = req
	return true, nil
}

// --- Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.Mutex
	transactions map[uuid.UUID]domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{transactions: make(map[uuid.UUID]domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions[t.ID] = *t
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *inMemoryTransactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus, txHash *string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return fmt.Errorf("transaction not found")
	}
	t.Status = status
	t.TxHash = txHash
	t.ProcessedAt = &at
	r.transactions[id] = t
	return nil
}

func (r *inMemoryTransactionRepo) byStatus(status domain.TransactionStatus) []domain.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Transaction
	for _, t := range r.transactions {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// --- Report Repo ---

type inMemoryReportRepo struct {
	mu      sync.Mutex
	reports []domain.ThreadReport
}

func newInMemoryReportRepo() *inMemoryReportRepo {
	return &inMemoryReportRepo{}
}

func (r *inMemoryReportRepo) Create(ctx context.Context, report *domain.ThreadReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, *report)
	return nil
}

// --- Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

// --- External collaborator fakes ---

// fakeWalletDirectory maps users to linked wallet addresses.
type fakeWalletDirectory struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]string
}

func newFakeWalletDirectory() *fakeWalletDirectory {
	return &fakeWalletDirectory{wallets: make(map[uuid.UUID]string)}
}

func (d *fakeWalletDirectory) link(userID uuid.UUID, address string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wallets[userID] = address
}

func (d *fakeWalletDirectory) GetVerifiedWallet(ctx context.Context, userID uuid.UUID) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.wallets[userID], nil
}

// fakeSettlement simulates the settlement gateway. Transfers are
// counted so tests can assert funds moved exactly once.
type fakeSettlement struct {
	mu        sync.Mutex
	balances  map[string]int64
	transfers int
	failNext  bool
}

func newFakeSettlement() *fakeSettlement {
	return &fakeSettlement{balances: make(map[string]int64)}
}

func (s *fakeSettlement) fund(address string, amount int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[address] = amount
}

func (s *fakeSettlement) transferCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transfers
}

func (s *fakeSettlement) Transfer(ctx context.Context, toAddress string, amount int64) (*ports.TransferReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext {
		s.failNext = false
		return nil, fmt.Errorf("simulated settlement failure")
	}
	s.transfers++
	s.balances[toAddress] += amount
	return &ports.TransferReceipt{
		TxHash: fmt.Sprintf("0xfake%06d", s.transfers),
		Status: "confirmed",
	}, nil
}

func (s *fakeSettlement) GetBalance(ctx context.Context, address string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[address], nil
}

// fakeContacts treats every user pair as mutual contacts.
type fakeContacts struct{}

func (fakeContacts) IsMutualContact(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	return true, nil
}

// fakeContactPoints serves a fixed email per user.
type fakeContactPoints struct{}

func (fakeContactPoints) GetContactPoint(ctx context.Context, userID uuid.UUID, channel domain.Channel) (string, error) {
	if channel == domain.ChannelSMS {
		return "+84901234567", nil
	}
	return userID.String()[:8] + "@example.com", nil
}

// fakeNotifier captures dispatched codes so tests can use them.
type fakeNotifier struct {
	mu    sync.Mutex
	codes map[string]string // destination -> last code
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{codes: make(map[string]string)}
}

func (n *fakeNotifier) Send(ctx context.Context, destination string, channel domain.Channel, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.codes[destination] = code
	return nil
}

func (n *fakeNotifier) lastCode(destination string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.codes[destination]
}
