package http

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoService "github.com/epiccms/cardvault/internal/crypto/service"
	"github.com/epiccms/cardvault/internal/keystore"
	payloadDomain "github.com/epiccms/cardvault/internal/payload/domain"
	"github.com/epiccms/cardvault/internal/payload/http/dto"
	payloadUseCase "github.com/epiccms/cardvault/internal/payload/usecase"
)

var testSkipPaths = []string{"/v1/encryption", "/healthz"}

// setupTestRouter wires the middleware pair and a few routes around a real
// codec, mirroring the production chain.
func setupTestRouter(t *testing.T, failClosed bool) (*gin.Engine, *payloadUseCase.Codec, *keystore.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rsaCipher := cryptoService.NewRSAOAEPCipher()
	store := keystore.NewStore(rsaCipher, 5*time.Minute, time.Minute, nil)
	codec := payloadUseCase.NewCodec(store, rsaCipher, cryptoService.NewAEADManager(), nil)

	router := gin.New()
	router.Use(ResponseEncryptionMiddleware(codec, testSkipPaths, failClosed, nil))
	router.Use(RequestDecryptionMiddleware(codec, testSkipPaths, nil))

	handler := NewEncryptionHandler(codec, nil)
	router.GET("/v1/encryption/public-key", handler.PublicKeyHandler)
	router.GET("/v1/encryption/key-count", handler.KeyCountHandler)

	router.POST("/v1/echo", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
			return
		}
		c.JSON(http.StatusOK, body)
	})

	router.POST("/v1/download", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/octet-stream", []byte{0x01, 0x02, 0x03})
	})

	router.POST("/v1/consume", func(c *gin.Context) {
		// Drops the session mid-request so response encryption cannot succeed.
		if correlation, ok := GetCorrelation(c.Request.Context()); ok {
			store.Invalidate(correlation.SessionID)
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return router, codec, store
}

// issueGrant fetches a public-key grant through the router.
func issueGrant(t *testing.T, router *gin.Engine) *payloadDomain.PublicKeyGrant {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/encryption/public-key", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.PublicKeyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	return &payloadDomain.PublicKeyGrant{
		SessionID:  response.SessionID,
		PublicKey:  response.PublicKey,
		Timestamp:  response.Timestamp,
		TTLSeconds: response.TTLSeconds,
	}
}

// sealRequest emulates the client side of the protocol.
func sealRequest(t *testing.T, grant *payloadDomain.PublicKeyGrant, body []byte) (*payloadDomain.Envelope, []byte) {
	t.Helper()

	rsaCipher := cryptoService.NewRSAOAEPCipher()
	publicKey, err := rsaCipher.DecodePublicKey(grant.PublicKey)
	require.NoError(t, err)

	key := make([]byte, 32)
	_, err = rand.Read(key)
	require.NoError(t, err)

	aead, err := cryptoService.NewAESGCM(key)
	require.NoError(t, err)

	ciphertext, nonce, err := aead.Encrypt(body, nil)
	require.NoError(t, err)

	wrapped, err := rsaCipher.Encrypt(key, publicKey)
	require.NoError(t, err)

	return &payloadDomain.Envelope{
		SessionID:     grant.SessionID,
		EncryptedData: payloadDomain.EncodeSealed(nonce, ciphertext),
		EncryptedKey:  base64.StdEncoding.EncodeToString(wrapped),
		KeyEncoding:   payloadDomain.KeyEncodingRaw,
	}, key
}

// openResponse decrypts a response envelope with the client's AES key.
func openResponse(t *testing.T, body, key []byte) []byte {
	t.Helper()

	envelope, ok := payloadDomain.ParseEnvelope(body)
	require.True(t, ok, "response is not an envelope: %s", body)

	aead, err := cryptoService.NewAESGCM(key)
	require.NoError(t, err)

	nonce, ciphertext, err := payloadDomain.DecodeSealed(envelope.EncryptedData)
	require.NoError(t, err)

	plaintext, err := aead.Decrypt(ciphertext, nonce, nil)
	require.NoError(t, err)
	return plaintext
}

func postEnvelope(router *gin.Engine, path string, envelope *payloadDomain.Envelope) *httptest.ResponseRecorder {
	body, _ := json.Marshal(envelope)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestMiddleware_EncryptedRoundTrip(t *testing.T) {
	router, _, store := setupTestRouter(t, false)

	grant := issueGrant(t, router)
	requestBody := []byte(`{"cardNumber":"4532015112830366"}`)
	envelope, key := sealRequest(t, grant, requestBody)

	w := postEnvelope(router, "/v1/echo", envelope)
	require.Equal(t, http.StatusOK, w.Code)

	plaintext := openResponse(t, w.Body.Bytes(), key)
	assert.JSONEq(t, string(requestBody), string(plaintext))

	t.Run("session is single use", func(t *testing.T) {
		assert.Equal(t, 0, store.ActiveCount())

		second := postEnvelope(router, "/v1/echo", envelope)
		assert.Equal(t, http.StatusBadRequest, second.Code)
	})
}

// TestMiddleware_PanicReportsInternalError mirrors the production middleware
// order, where response encryption wraps recovery: a panicking handler must
// surface as 500 rather than the real writer's default 200, and an encrypted
// request must still consume its session.
func TestMiddleware_PanicReportsInternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rsaCipher := cryptoService.NewRSAOAEPCipher()
	store := keystore.NewStore(rsaCipher, 5*time.Minute, time.Minute, nil)
	codec := payloadUseCase.NewCodec(store, rsaCipher, cryptoService.NewAEADManager(), nil)

	router := gin.New()
	router.Use(ResponseEncryptionMiddleware(codec, testSkipPaths, false, nil))
	router.Use(gin.RecoveryWithWriter(io.Discard))
	router.Use(RequestDecryptionMiddleware(codec, testSkipPaths, nil))

	handler := NewEncryptionHandler(codec, nil)
	router.GET("/v1/encryption/public-key", handler.PublicKeyHandler)
	router.POST("/v1/boom", func(c *gin.Context) {
		panic("handler exploded")
	})

	t.Run("plaintext request", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/boom", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("encrypted request still consumes the session", func(t *testing.T) {
		grant := issueGrant(t, router)
		envelope, _ := sealRequest(t, grant, []byte(`{"cardNumber":"4532015112830366"}`))

		w := postEnvelope(router, "/v1/boom", envelope)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, 0, store.ActiveCount())
	})
}

func TestMiddleware_UnencryptedPassThrough(t *testing.T) {
	router, _, _ := setupTestRouter(t, false)

	body := []byte(`{"hello":"world"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/echo", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	// Plaintext in, plaintext out: no envelope anywhere.
	assert.JSONEq(t, string(body), w.Body.String())
}

func TestMiddleware_AllowListedPathUntouched(t *testing.T) {
	router, _, _ := setupTestRouter(t, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/encryption/key-count", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.KeyCountResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
}

func TestMiddleware_UniformRejection(t *testing.T) {
	router, _, _ := setupTestRouter(t, false)

	grant := issueGrant(t, router)
	envelope, _ := sealRequest(t, grant, []byte(`{"a":1}`))

	// Tampered ciphertext against a live session.
	tampered := *envelope
	blob, err := base64.StdEncoding.DecodeString(tampered.EncryptedData)
	require.NoError(t, err)
	blob[len(blob)-1] ^= 1
	tampered.EncryptedData = base64.StdEncoding.EncodeToString(blob)

	tamperedResp := postEnvelope(router, "/v1/echo", &tampered)

	// Unknown session.
	unknown := *envelope
	unknown.SessionID = "never-issued"
	unknownResp := postEnvelope(router, "/v1/echo", &unknown)

	// Garbage wrapped key against a live session.
	grant2 := issueGrant(t, router)
	badKey, _ := sealRequest(t, grant2, []byte(`{"a":1}`))
	badKey.EncryptedKey = base64.StdEncoding.EncodeToString([]byte("not a wrapped key"))
	badKeyResp := postEnvelope(router, "/v1/echo", badKey)

	// All three rejections are byte-for-byte identical.
	assert.Equal(t, http.StatusBadRequest, tamperedResp.Code)
	assert.Equal(t, tamperedResp.Code, unknownResp.Code)
	assert.Equal(t, tamperedResp.Code, badKeyResp.Code)
	assert.Equal(t, tamperedResp.Body.String(), unknownResp.Body.String())
	assert.Equal(t, tamperedResp.Body.String(), badKeyResp.Body.String())
}

func TestMiddleware_DeserializationFailureHasDetail(t *testing.T) {
	router, _, _ := setupTestRouter(t, false)

	grant := issueGrant(t, router)
	envelope, _ := sealRequest(t, grant, []byte("this is not json"))

	w := postEnvelope(router, "/v1/echo", envelope)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "deserialization")
}

func TestMiddleware_BinaryResponsePassesThrough(t *testing.T) {
	router, _, store := setupTestRouter(t, false)

	grant := issueGrant(t, router)
	envelope, _ := sealRequest(t, grant, []byte(`{"file":"report"}`))

	w := postEnvelope(router, "/v1/download", envelope)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, w.Body.Bytes())

	// The session is still consumed by the transaction.
	assert.Equal(t, 0, store.ActiveCount())
}

func TestMiddleware_EncryptionFailurePolicy(t *testing.T) {
	t.Run("fail-open serves plaintext", func(t *testing.T) {
		router, _, _ := setupTestRouter(t, false)

		grant := issueGrant(t, router)
		envelope, _ := sealRequest(t, grant, []byte(`{"x":1}`))

		w := postEnvelope(router, "/v1/consume", envelope)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	})

	t.Run("fail-closed rejects", func(t *testing.T) {
		router, _, _ := setupTestRouter(t, true)

		grant := issueGrant(t, router)
		envelope, _ := sealRequest(t, grant, []byte(`{"x":1}`))

		w := postEnvelope(router, "/v1/consume", envelope)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), `"ok"`)
	})
}

func TestEncryptionHandler_PublicKeyHandler(t *testing.T) {
	router, _, store := setupTestRouter(t, false)

	grant := issueGrant(t, router)
	assert.NotEmpty(t, grant.SessionID)
	assert.NotEmpty(t, grant.PublicKey)
	assert.Equal(t, 300, grant.TTLSeconds)
	assert.WithinDuration(t, time.Now(), grant.Timestamp, time.Minute)
	assert.Equal(t, 1, store.ActiveCount())
}

func TestEncryptionHandler_KeyCountHandler(t *testing.T) {
	router, _, _ := setupTestRouter(t, false)

	issueGrant(t, router)
	issueGrant(t, router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/encryption/key-count", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.KeyCountResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.ActiveSessions)
}
