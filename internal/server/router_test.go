package server

import (
	"context"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payloadcrypt/internal/core/domain"
	"payloadcrypt/internal/encryption/service"
	"payloadcrypt/internal/pkg/crypto/aes"
	"payloadcrypt/internal/source/httpsource"
)

const testKeyHex = "5486abfd96080e09e82bb2ab93258bde19d069185366b5aa8d38467835f2e7aa"

func setup(t *testing.T) (*httptest.Server, service.Service) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.json"), []byte(`{"name":"StandarReader"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("plain text body"), 0o644))

	key, err := hex.DecodeString(testKeyHex)
	require.NoError(t, err)
	svc := service.NewService(aes.NewCBCEncryptor(domain.KeySize), key)

	srv := httptest.NewServer(New(svc, dir).Router())
	t.Cleanup(srv.Close)
	return srv, svc
}

func TestServer_EndToEnd(t *testing.T) {
	srv, svc := setup(t)
	client := httpsource.NewClient(srv.URL, 0)
	ctx := context.Background()

	tests := []struct {
		name          string
		path          string
		wantEncrypted bool
		wantWrapped   bool
		wantText      string
	}{
		{name: "Sealed payload", path: "/api/payloads/app.json", wantEncrypted: true, wantText: `{"name":"StandarReader"}`},
		{name: "Wrapped payload", path: "/api/client/app.json", wantEncrypted: true, wantWrapped: true, wantText: `{"name":"StandarReader"}`},
		{name: "Raw passthrough", path: "/api/raw/notes.txt", wantText: "plain text body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := client.Fetch(ctx, tt.path)
			require.NoError(t, err)

			res, err := svc.Route(ctx, body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEncrypted, res.Encrypted)
			assert.Equal(t, tt.wantWrapped, res.Wrapped)
			assert.Equal(t, tt.wantText, res.Text())
		})
	}
}

func TestServer_NotFound(t *testing.T) {
	srv, _ := setup(t)

	for _, path := range []string{"/api/payloads/missing.json", "/api/raw/..", "/api/raw/%2e%2e%2fetc"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		})
	}
}

func TestServer_Health(t *testing.T) {
	srv, _ := setup(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", contentType("a.json"))
	assert.Equal(t, "application/x-plist", contentType("a.plist"))
	assert.Equal(t, "text/plain; charset=utf-8", contentType("a"))
}
