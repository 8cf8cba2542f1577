package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ameledin/studiovault/internal/common"
	"github.com/ameledin/studiovault/internal/logging"
	"github.com/ameledin/studiovault/internal/server/services"
)

// fakeService scripts Service responses per call.
type fakeService struct {
	issueFn    func(collectionID string, files []services.FileSpec) (*services.CredentialBatch, error)
	renewFn    func(collectionID, key string) (*services.IssuedCredential, error)
	confirmFn  func(collectionID, batchToken string, claims []services.Claim) (*services.ConfirmVerdict, error)
	manifestFn func(collectionID string) ([]services.ManifestEntry, error)
}

func (f *fakeService) IssueCredentials(ctx context.Context, collectionID string, files []services.FileSpec) (*services.CredentialBatch, error) {
	return f.issueFn(collectionID, files)
}

func (f *fakeService) RenewCredential(ctx context.Context, collectionID, key string) (*services.IssuedCredential, error) {
	return f.renewFn(collectionID, key)
}

func (f *fakeService) ConfirmBatch(ctx context.Context, collectionID, batchToken string, claims []services.Claim) (*services.ConfirmVerdict, error) {
	return f.confirmFn(collectionID, batchToken, claims)
}

func (f *fakeService) Manifest(ctx context.Context, collectionID string) ([]services.ManifestEntry, error) {
	return f.manifestFn(collectionID)
}

func newTestServer(t *testing.T, svc Service) *Server {
	t.Helper()
	return NewServer(":0", svc, logging.NewDefault())
}

func doJSON(t *testing.T, s *Server, method, path string, payload any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	s := newTestServer(t, &fakeService{})
	w := doJSON(t, s, http.MethodGet, "/ping", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIssueCredentials_OK(t *testing.T) {
	svc := &fakeService{
		issueFn: func(collectionID string, files []services.FileSpec) (*services.CredentialBatch, error) {
			assert.Equal(t, "c1", collectionID)
			require.Len(t, files, 1)
			return &services.CredentialBatch{
				Credentials: []services.IssuedCredential{
					{Key: "collections/c1/k0", URL: "http://signed", ExpiresAt: time.Now().Add(15 * time.Minute)},
				},
				BatchToken: "tok",
			}, nil
		},
	}
	s := newTestServer(t, svc)

	w := doJSON(t, s, http.MethodPost, "/api/v1/collections/c1/credentials", credentialsRequest{
		Files: []services.FileSpec{{Filename: "a.jpg", Size: 1024}},
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)

	var batch services.CredentialBatch
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &batch))
	assert.Equal(t, "tok", batch.BatchToken)
	require.Len(t, batch.Credentials, 1)
	assert.Equal(t, "collections/c1/k0", batch.Credentials[0].Key)
}

func TestIssueCredentials_PolicyViolationIs422(t *testing.T) {
	svc := &fakeService{
		issueFn: func(string, []services.FileSpec) (*services.CredentialBatch, error) {
			return nil, common.ErrFileTooLarge
		},
	}
	s := newTestServer(t, svc)

	w := doJSON(t, s, http.MethodPost, "/api/v1/collections/c1/credentials", credentialsRequest{
		Files: []services.FileSpec{{Filename: "huge.jpg", Size: 1 << 40}},
	}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestIssueCredentials_MalformedBody(t *testing.T) {
	s := newTestServer(t, &fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/collections/c1/credentials", bytes.NewBufferString("{broken"))
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRenewCredential_OK(t *testing.T) {
	svc := &fakeService{
		renewFn: func(collectionID, key string) (*services.IssuedCredential, error) {
			assert.Equal(t, "c1", collectionID)
			assert.Equal(t, "collections/c1/k0", key)
			return &services.IssuedCredential{Key: key, URL: "http://fresh"}, nil
		},
	}
	s := newTestServer(t, svc)

	w := doJSON(t, s, http.MethodPost, "/api/v1/collections/c1/credentials/renew", renewRequest{Key: "collections/c1/k0"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var cred services.IssuedCredential
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cred))
	assert.Equal(t, "http://fresh", cred.URL)
}

func TestRenewCredential_UnknownKeyIs404(t *testing.T) {
	svc := &fakeService{
		renewFn: func(string, string) (*services.IssuedCredential, error) {
			return nil, common.ErrorNotFound
		},
	}
	s := newTestServer(t, svc)

	w := doJSON(t, s, http.MethodPost, "/api/v1/collections/c1/credentials/renew", renewRequest{Key: "nope"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfirm_OK(t *testing.T) {
	svc := &fakeService{
		confirmFn: func(collectionID, batchToken string, claims []services.Claim) (*services.ConfirmVerdict, error) {
			assert.Equal(t, "tok-123", batchToken)
			require.Len(t, claims, 1)
			return &services.ConfirmVerdict{Success: true, ConfirmedCount: 1}, nil
		},
	}
	s := newTestServer(t, svc)

	w := doJSON(t, s, http.MethodPost, "/api/v1/collections/c1/confirm", confirmRequest{
		Files: []services.Claim{{Key: "collections/c1/k0", Size: 10}},
	}, map[string]string{common.BatchTokenHeaderName: "tok-123"})

	require.Equal(t, http.StatusOK, w.Code)

	var verdict services.ConfirmVerdict
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verdict))
	assert.True(t, verdict.Success)
	assert.Equal(t, 1, verdict.ConfirmedCount)
}

func TestConfirm_MissingTokenIs401(t *testing.T) {
	s := newTestServer(t, &fakeService{})

	w := doJSON(t, s, http.MethodPost, "/api/v1/collections/c1/confirm", confirmRequest{}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestConfirm_InvalidTokenIs401(t *testing.T) {
	svc := &fakeService{
		confirmFn: func(string, string, []services.Claim) (*services.ConfirmVerdict, error) {
			return nil, common.ErrInvalidBatchToken
		},
	}
	s := newTestServer(t, svc)

	w := doJSON(t, s, http.MethodPost, "/api/v1/collections/c1/confirm", confirmRequest{},
		map[string]string{common.BatchTokenHeaderName: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestManifest_OK(t *testing.T) {
	svc := &fakeService{
		manifestFn: func(collectionID string) ([]services.ManifestEntry, error) {
			return []services.ManifestEntry{
				{Filename: "a.jpg", Key: "collections/c1/k0", Size: 10, URL: "http://get"},
			}, nil
		},
	}
	s := newTestServer(t, svc)

	w := doJSON(t, s, http.MethodGet, "/api/v1/collections/c1/manifest", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a.jpg")
}
