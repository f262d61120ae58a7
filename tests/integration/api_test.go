package integration

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "remitchat/internal/adapter/http/handler"
	redisStorage "remitchat/internal/adapter/storage/redis"
	"remitchat/internal/service"
	"remitchat/pkg/e2ee"
	"remitchat/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds the full application stack: real HTTP layer,
// middleware, services, the real Redis code store on miniredis, and
// in-memory repos plus collaborator fakes.

type testApp struct {
	server     *httptest.Server
	redis      *miniredis.Miniredis
	tokenSvc   *service.JWTTokenService
	chatSvc    *service.ChatServiceImpl
	paymentSvc *service.PaymentServiceImpl
	verifySvc  *service.VerificationServiceImpl
	threads    *inMemoryThreadRepo
	requests   *inMemoryRequestRepo
	txs        *inMemoryTransactionRepo
	wallets    *fakeWalletDirectory
	settlement *fakeSettlement
	notifier   *fakeNotifier
	audit      *inMemoryAuditRepo
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	log := logger.New("error", false)

	keyRepo := newInMemoryKeyRepo()
	threadRepo := newInMemoryThreadRepo()
	msgRepo := newInMemoryMessageRepo()
	reqRepo := newInMemoryRequestRepo()
	txRepo := newInMemoryTransactionRepo()
	reportRepo := newInMemoryReportRepo()
	auditRepo := newInMemoryAuditRepo()

	codeStore := redisStorage.NewCodeStore(rdb)
	wallets := newFakeWalletDirectory()
	settlement := newFakeSettlement()
	notifier := newFakeNotifier()

	tokenSvc := service.NewJWTTokenService("integration-test-secret", "remitchat-test")
	auditSvc := service.NewAuditService(auditRepo, log)
	directorySvc := service.NewDirectoryService(keyRepo, fakeContacts{}, log)
	chatSvc := service.NewChatService(threadRepo, msgRepo, reqRepo, reportRepo, log)
	verificationSvc := service.NewVerificationService(codeStore, fakeContactPoints{}, notifier, log)
	paymentSvc := service.NewPaymentService(threadRepo, reqRepo, txRepo, wallets, settlement, verificationSvc, auditSvc, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		DirectorySvc:    directorySvc,
		ChatSvc:         chatSvc,
		PaymentSvc:      paymentSvc,
		VerificationSvc: verificationSvc,
		TokenSvc:        tokenSvc,
		Logger:          log,
	})

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		mr.Close()
	})

	return &testApp{
		server:     server,
		redis:      mr,
		tokenSvc:   tokenSvc,
		chatSvc:    chatSvc,
		paymentSvc: paymentSvc,
		verifySvc:  verificationSvc,
		threads:    threadRepo,
		requests:   reqRepo,
		txs:        txRepo,
		wallets:    wallets,
		settlement: settlement,
		notifier:   notifier,
		audit:      auditRepo,
	}
}

func (a *testApp) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := a.tokenSvc.Generate(userID, time.Hour)
	require.NoError(t, err)
	return token
}

// do performs an authenticated JSON request and decodes the envelope.
func (a *testApp) do(t *testing.T, token, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

func dataOf(t *testing.T, envelope map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := envelope["data"].(map[string]interface{})
	require.True(t, ok, "no data in envelope: %v", envelope)
	return data
}

// contactEmail mirrors fakeContactPoints for reading dispatched codes.
func contactEmail(userID uuid.UUID) string {
	return userID.String()[:8] + "@example.com"
}

func cipherBody(t *testing.T, msg e2ee.Payload) map[string]interface{} {
	t.Helper()
	return map[string]interface{}{
		"ciphertext":  msg.Ciphertext,
		"iv":          msg.IV,
		"wrapped_key": msg.WrappedKey,
	}
}

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)

	resp, err := http.Get(app.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_RequiresToken(t *testing.T) {
	app := newTestApp(t)

	status, envelope := app.do(t, "", http.MethodPost, "/api/v1/threads", map[string]string{"peer_id": uuid.NewString()})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "AUTH_001", envelope["error_code"])
}

// TestIntegration_FullRemittanceFlow walks the entire product flow:
// key publication, thread opening, an encrypted text exchange with a
// real client-side crypto round trip, a payment request, the
// verification code gate, and settlement.
func TestIntegration_FullRemittanceFlow(t *testing.T) {
	app := newTestApp(t)

	aliceID, bobID := uuid.New(), uuid.New()
	aliceToken, bobToken := app.token(t, aliceID), app.token(t, bobID)

	alicePair, err := e2ee.GenerateKeyPair()
	require.NoError(t, err)
	bobPair, err := e2ee.GenerateKeyPair()
	require.NoError(t, err)

	// Both publish their public keys.
	alicePEM, err := alicePair.PublicPEM()
	require.NoError(t, err)
	bobPEM, err := bobPair.PublicPEM()
	require.NoError(t, err)

	status, _ := app.do(t, aliceToken, http.MethodPut, "/api/v1/keys", map[string]string{
		"public_key_pem": alicePEM, "hash_alg": "SHA-256",
	})
	require.Equal(t, http.StatusOK, status)
	status, _ = app.do(t, bobToken, http.MethodPut, "/api/v1/keys", map[string]string{
		"public_key_pem": bobPEM, "hash_alg": "SHA-256",
	})
	require.Equal(t, http.StatusOK, status)

	// Alice fetches Bob's key from the directory.
	status, envelope := app.do(t, aliceToken, http.MethodGet, "/api/v1/keys/"+bobID.String(), nil)
	require.Equal(t, http.StatusOK, status)
	keyData := dataOf(t, envelope)
	bobPublished, err := e2ee.ParsePublishedKey(keyData["public_key_pem"].(string), keyData["hash_alg"].(string))
	require.NoError(t, err)

	// Alice opens a thread with Bob; Bob opening it again gets the same thread.
	status, envelope = app.do(t, aliceToken, http.MethodPost, "/api/v1/threads", map[string]string{"peer_id": bobID.String()})
	require.Equal(t, http.StatusCreated, status)
	threadID := dataOf(t, envelope)["id"].(string)

	status, envelope = app.do(t, bobToken, http.MethodPost, "/api/v1/threads", map[string]string{"peer_id": aliceID.String()})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, threadID, dataOf(t, envelope)["id"].(string), "order-independent thread identity")

	// Alice sends an encrypted text message.
	plaintext := "hi Bob, sending the rent share today"
	enc, err := e2ee.Encrypt([]byte(plaintext), alicePair.Published(), bobPublished)
	require.NoError(t, err)

	status, _ = app.do(t, aliceToken, http.MethodPost, "/api/v1/threads/"+threadID+"/messages", map[string]interface{}{
		"type":                 "TEXT",
		"cipher_for_sender":    cipherBody(t, enc.ForSender),
		"cipher_for_recipient": cipherBody(t, enc.ForRecipient),
	})
	require.Equal(t, http.StatusCreated, status)

	// Bob reads the history and decrypts his copy.
	status, envelope = app.do(t, bobToken, http.MethodGet, "/api/v1/threads/"+threadID+"/messages", nil)
	require.Equal(t, http.StatusOK, status)
	items := dataOf(t, envelope)["items"].([]interface{})
	require.Len(t, items, 1)
	msg := items[0].(map[string]interface{})
	cipher := msg["cipher"].(map[string]interface{})

	decrypted, err := e2ee.Decrypt(e2ee.Payload{
		Ciphertext: cipher["ciphertext"].(string),
		IV:         cipher["iv"].(string),
		WrappedKey: cipher["wrapped_key"].(string),
	}, []*rsa.PrivateKey{bobPair.Private})
	require.NoError(t, err)
	assert.Equal(t, plaintext, string(decrypted))

	// Bob requests 250000 from Alice inside the thread.
	reqEnc, err := e2ee.Encrypt([]byte("request: rent share"), bobPair.Published(), alicePair.Published())
	require.NoError(t, err)
	status, envelope = app.do(t, bobToken, http.MethodPost, "/api/v1/threads/"+threadID+"/messages", map[string]interface{}{
		"type":                 "REQUEST",
		"amount":               250000,
		"note":                 "rent share",
		"cipher_for_sender":    cipherBody(t, reqEnc.ForSender),
		"cipher_for_recipient": cipherBody(t, reqEnc.ForRecipient),
	})
	require.Equal(t, http.StatusCreated, status)
	reqData := dataOf(t, envelope)["request"].(map[string]interface{})
	requestID := reqData["id"].(string)
	assert.Equal(t, "PENDING", reqData["status"])
	assert.Equal(t, aliceID.String(), reqData["target_id"])

	// Wallets linked and funded.
	app.wallets.link(aliceID, "0xalice")
	app.wallets.link(bobID, "0xbob")
	app.settlement.fund("0xalice", 1_000_000)

	// Alice requests a verification code and reads it off the fake notifier.
	status, envelope = app.do(t, aliceToken, http.MethodPost, "/api/v1/verification/codes", map[string]string{"channel": "EMAIL"})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, dataOf(t, envelope)["masked_destination"], "***")
	code := app.notifier.lastCode(contactEmail(aliceID))
	require.Len(t, code, 6)

	// Alice pays.
	status, envelope = app.do(t, aliceToken, http.MethodPost,
		fmt.Sprintf("/api/v1/threads/%s/requests/%s/pay", threadID, requestID),
		map[string]string{"code": code})
	require.Equal(t, http.StatusOK, status)
	payData := dataOf(t, envelope)
	paidReq := payData["request"].(map[string]interface{})
	assert.Equal(t, "PAID", paidReq["status"])
	assert.NotEmpty(t, paidReq["paid_tx_hash"])
	txData := payData["transaction"].(map[string]interface{})
	assert.Equal(t, "SUCCESS", txData["status"])

	assert.Equal(t, 1, app.settlement.transferCount())
	balance, _ := app.settlement.GetBalance(context.Background(), "0xbob")
	assert.Equal(t, int64(250000), balance)

	// History shows the live request state.
	status, envelope = app.do(t, aliceToken, http.MethodGet, "/api/v1/threads/"+threadID+"/messages", nil)
	require.Equal(t, http.StatusOK, status)
	items = dataOf(t, envelope)["items"].([]interface{})
	require.Len(t, items, 2)
	last := items[1].(map[string]interface{})
	assert.Equal(t, "PAID", last["request"].(map[string]interface{})["status"])

	// The code is single-use: a second pay attempt cannot reuse it.
	status, envelope = app.do(t, aliceToken, http.MethodPost,
		fmt.Sprintf("/api/v1/threads/%s/requests/%s/pay", threadID, requestID),
		map[string]string{"code": code})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CFT_002", envelope["error_code"])
}

func TestIntegration_WrongCodeLeavesRequestPayable(t *testing.T) {
	app := newTestApp(t)

	aliceID, bobID := uuid.New(), uuid.New()
	aliceToken, bobToken := app.token(t, aliceID), app.token(t, bobID)
	threadID, requestID := openThreadWithRequest(t, app, aliceToken, bobToken, aliceID, bobID, 50000)

	app.wallets.link(aliceID, "0xalice")
	app.wallets.link(bobID, "0xbob")
	app.settlement.fund("0xalice", 100000)

	status, _ := app.do(t, aliceToken, http.MethodPost, "/api/v1/verification/codes", map[string]string{"channel": "EMAIL"})
	require.Equal(t, http.StatusOK, status)
	code := app.notifier.lastCode(contactEmail(aliceID))

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	payPath := fmt.Sprintf("/api/v1/threads/%s/requests/%s/pay", threadID, requestID)

	status, envelope := app.do(t, aliceToken, http.MethodPost, payPath, map[string]string{"code": wrong})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "CODE_002", envelope["error_code"])
	assert.Equal(t, 0, app.settlement.transferCount(), "no funds move on a bad code")

	// The claim was rolled back: the correct code still pays.
	status, envelope = app.do(t, aliceToken, http.MethodPost, payPath, map[string]string{"code": code})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "PAID", dataOf(t, envelope)["request"].(map[string]interface{})["status"])
}

func TestIntegration_CancelBlocksPayment(t *testing.T) {
	app := newTestApp(t)

	aliceID, bobID := uuid.New(), uuid.New()
	aliceToken, bobToken := app.token(t, aliceID), app.token(t, bobID)
	threadID, requestID := openThreadWithRequest(t, app, aliceToken, bobToken, aliceID, bobID, 75000)

	// Only the requester may cancel.
	cancelPath := fmt.Sprintf("/api/v1/threads/%s/requests/%s/cancel", threadID, requestID)
	status, envelope := app.do(t, aliceToken, http.MethodPost, cancelPath, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "AUTHZ_003", envelope["error_code"])

	status, envelope = app.do(t, bobToken, http.MethodPost, cancelPath, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "CANCELLED", dataOf(t, envelope)["status"])

	// Cancel is idempotent for the requester.
	status, _ = app.do(t, bobToken, http.MethodPost, cancelPath, nil)
	assert.Equal(t, http.StatusOK, status)

	// Paying a cancelled request is a conflict.
	app.wallets.link(aliceID, "0xalice")
	app.wallets.link(bobID, "0xbob")
	app.settlement.fund("0xalice", 100000)
	status, envelope = app.do(t, aliceToken, http.MethodPost, "/api/v1/verification/codes", map[string]string{"channel": "EMAIL"})
	require.Equal(t, http.StatusOK, status)
	code := app.notifier.lastCode(contactEmail(aliceID))

	status, envelope = app.do(t, aliceToken, http.MethodPost,
		fmt.Sprintf("/api/v1/threads/%s/requests/%s/pay", threadID, requestID),
		map[string]string{"code": code})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CFT_003", envelope["error_code"])
}

func TestIntegration_ReportThread(t *testing.T) {
	app := newTestApp(t)

	aliceID, bobID := uuid.New(), uuid.New()
	aliceToken, bobToken := app.token(t, aliceID), app.token(t, bobID)
	threadID, _ := openThreadWithRequest(t, app, aliceToken, bobToken, aliceID, bobID, 10000)

	status, envelope := app.do(t, aliceToken, http.MethodPost, "/api/v1/threads/"+threadID+"/report", map[string]interface{}{
		"reason":   "demanded payment for goods that never arrived",
		"excerpts": []string{"send first, then I ship"},
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, bobID.String(), dataOf(t, envelope)["reported_id"])
}

// openThreadWithRequest opens a thread between the two users and has
// the peer file a payment request against the first user.
func openThreadWithRequest(t *testing.T, app *testApp, userToken, peerToken string, userID, peerID uuid.UUID, amount int64) (string, string) {
	t.Helper()

	status, envelope := app.do(t, userToken, http.MethodPost, "/api/v1/threads", map[string]string{"peer_id": peerID.String()})
	require.Equal(t, http.StatusCreated, status)
	threadID := dataOf(t, envelope)["id"].(string)

	cipher := map[string]interface{}{
		"ciphertext":  "Y2lwaGVydGV4dA==",
		"iv":          "aXY=",
		"wrapped_key": "d3JhcHBlZA==",
	}
	status, envelope = app.do(t, peerToken, http.MethodPost, "/api/v1/threads/"+threadID+"/messages", map[string]interface{}{
		"type":                 "REQUEST",
		"amount":               amount,
		"cipher_for_sender":    cipher,
		"cipher_for_recipient": cipher,
	})
	require.Equal(t, http.StatusCreated, status)
	requestID := dataOf(t, envelope)["request"].(map[string]interface{})["id"].(string)
	return threadID, requestID
}
