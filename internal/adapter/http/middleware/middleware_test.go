package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"remitchat/internal/core/ports"
	"remitchat/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(r *gin.Engine, method, path string, headers map[string]string, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	tokenSvc := mocks.NewMockTokenService(ctrl)

	r := gin.New()
	r.GET("/protected", JWTAuth(tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(r, http.MethodGet, "/protected", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_MalformedHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	tokenSvc := mocks.NewMockTokenService(ctrl)

	r := gin.New()
	r.GET("/protected", JWTAuth(tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(r, http.MethodGet, "/protected", map[string]string{"Authorization": "Token abc"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("bad-token").Return(nil, errors.New("expired"))

	r := gin.New()
	r.GET("/protected", JWTAuth(tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(r, http.MethodGet, "/protected", map[string]string{"Authorization": "Bearer bad-token"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_001")
}

func TestJWTAuth_ValidTokenSetsUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	userID := uuid.New()
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("good-token").Return(&ports.TokenClaims{UserID: userID}, nil)

	var gotID uuid.UUID
	r := gin.New()
	r.GET("/protected", JWTAuth(tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		id, ok := UserID(c)
		require.True(t, ok)
		gotID = id
		c.Status(http.StatusOK)
	})

	w := performRequest(r, http.MethodGet, "/protected", map[string]string{"Authorization": "Bearer good-token"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, gotID)
}

func TestRecovery_CatchesPanic(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	w := performRequest(r, http.MethodGet, "/boom", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_001")
}

func TestMaxBodySize_RejectsOversizedBody(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodySize(16))
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	small := performRequest(r, http.MethodPost, "/echo", nil, `{"a":1}`)
	assert.Equal(t, http.StatusOK, small.Code)

	big := performRequest(r, http.MethodPost, "/echo", nil, `{"a":"`+strings.Repeat("x", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, big.Code)
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()))
	r.GET("/ok", func(c *gin.Context) {
		time.Sleep(time.Millisecond)
		c.Status(http.StatusOK)
	})

	w := performRequest(r, http.MethodGet, "/ok", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
