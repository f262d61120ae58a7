package dto

// PublishKeyRequest is the request body for publishing a public key.
type PublishKeyRequest struct {
	PublicKeyPEM string `json:"public_key_pem" binding:"required,max=8192"`
	HashAlg      string `json:"hash_alg" binding:"required"`
}

// PublicKeyResponse is the directory view of a user's current key.
type PublicKeyResponse struct {
	UserID       string `json:"user_id"`
	PublicKeyPEM string `json:"public_key_pem"`
	HashAlg      string `json:"hash_alg"`
	Fingerprint  string `json:"fingerprint"`
	UpdatedAt    string `json:"updated_at"`
}

// OpenThreadRequest is the request body for opening a thread with a peer.
type OpenThreadRequest struct {
	PeerID string `json:"peer_id" binding:"required,uuid"`
}

// ThreadResponse is the API view of a thread.
type ThreadResponse struct {
	ID            string `json:"id"`
	ParticipantA  string `json:"participant_a"`
	ParticipantB  string `json:"participant_b"`
	CreatedAt     string `json:"created_at"`
	LastMessageAt string `json:"last_message_at"`
}

// CipherPayload is one encrypted copy of a message body. All fields
// are base64; the server treats them as opaque.
type CipherPayload struct {
	Ciphertext string `json:"ciphertext" binding:"required,b64"`
	IV         string `json:"iv" binding:"required,b64"`
	WrappedKey string `json:"wrapped_key" binding:"required,b64"`
}

// AppendMessageRequest is the request body for appending a message.
// Amount and Note are only meaningful for REQUEST messages.
type AppendMessageRequest struct {
	Type               string        `json:"type" binding:"required,oneof=TEXT REQUEST"`
	CipherForSender    CipherPayload `json:"cipher_for_sender" binding:"required"`
	CipherForRecipient CipherPayload `json:"cipher_for_recipient" binding:"required"`
	Amount             int64         `json:"amount,omitempty"`
	Note               string        `json:"note,omitempty" binding:"max=500"`
}

// MessageResponse is a message projected for the requesting viewer.
type MessageResponse struct {
	ID          string                  `json:"id"`
	ThreadID    string                  `json:"thread_id"`
	SenderID    string                  `json:"sender_id"`
	RecipientID string                  `json:"recipient_id"`
	Type        string                  `json:"type"`
	Cipher      CipherPayload           `json:"cipher"`
	Request     *PaymentRequestResponse `json:"request,omitempty"`
	CreatedAt   string                  `json:"created_at"`
}

// MessageListResponse wraps a thread history page.
type MessageListResponse struct {
	Items []MessageResponse `json:"items"`
}

// PaymentRequestResponse is the API view of a payment request.
type PaymentRequestResponse struct {
	ID           string  `json:"id"`
	ThreadID     string  `json:"thread_id"`
	RequesterID  string  `json:"requester_id"`
	TargetID     string  `json:"target_id"`
	Amount       int64   `json:"amount"`
	Note         string  `json:"note,omitempty"`
	Status       string  `json:"status"`
	PaidAt       *string `json:"paid_at,omitempty"`
	PaidByUserID *string `json:"paid_by_user_id,omitempty"`
	PaidTxHash   *string `json:"paid_tx_hash,omitempty"`
	CancelledAt  *string `json:"cancelled_at,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// PayRequest is the request body for paying a payment request.
type PayRequest struct {
	Code string `json:"code" binding:"required,len=6,numeric"`
}

// TransactionResponse is the API view of a settlement attempt.
type TransactionResponse struct {
	ID          string  `json:"id"`
	SenderID    string  `json:"sender_id"`
	ReceiverID  string  `json:"receiver_id"`
	Amount      int64   `json:"amount"`
	Status      string  `json:"status"`
	TxHash      *string `json:"tx_hash,omitempty"`
	CreatedAt   string  `json:"created_at"`
	ProcessedAt *string `json:"processed_at,omitempty"`
}

// PayResponse is the response body for a successful payment.
type PayResponse struct {
	Request     PaymentRequestResponse `json:"request"`
	Transaction TransactionResponse    `json:"transaction"`
}

// IssueCodeRequest is the request body for issuing a verification code.
type IssueCodeRequest struct {
	Channel string `json:"channel" binding:"required,oneof=EMAIL SMS"`
}

// IssueCodeResponse reports where the code was dispatched.
type IssueCodeResponse struct {
	MaskedDestination string `json:"masked_destination"`
	Channel           string `json:"channel"`
	ExpiresIn         int64  `json:"expires_in"` // seconds
}

// ReportThreadRequest is the request body for reporting a thread.
// Excerpts are plaintext the reporter reveals from their own view.
type ReportThreadRequest struct {
	Reason   string   `json:"reason" binding:"required,max=1000"`
	Excerpts []string `json:"excerpts,omitempty" binding:"max=10,dive,max=500"`
}

// ReportResponse is the response body for a filed report.
type ReportResponse struct {
	ID         string `json:"id"`
	ThreadID   string `json:"thread_id"`
	ReporterID string `json:"reporter_id"`
	ReportedID string `json:"reported_id"`
	CreatedAt  string `json:"created_at"`
}
