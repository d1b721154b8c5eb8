package config

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withAPIBase(t *testing.T, base *string, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	old := *base
	*base = srv.URL
	t.Cleanup(func() { *base = old })
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestValidateTelegramToken(t *testing.T) {
	withAPIBase(t, &telegramAPIBase, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bot123:good/getMe" {
			writeJSON(w, http.StatusOK, `{"ok":true,"result":{"id":1}}`)
			return
		}
		writeJSON(w, http.StatusUnauthorized, `{"ok":false,"description":"Unauthorized"}`)
	})

	assert.NoError(t, validateTelegramToken("123:good"))
	assert.EqualError(t, validateTelegramToken("123:bad"), "Unauthorized")
}

func TestValidateGeminiKey(t *testing.T) {
	withAPIBase(t, &geminiAPIBase, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("key") {
		case "good":
			writeJSON(w, http.StatusOK, `{"models":[]}`)
		case "broken":
			writeJSON(w, http.StatusInternalServerError, `{}`)
		default:
			writeJSON(w, http.StatusBadRequest, `{"error":{"message":"API key not valid"}}`)
		}
	})

	assert.NoError(t, validateGeminiKey("good"))
	assert.EqualError(t, validateGeminiKey("bad"), "API key not valid")
	assert.EqualError(t, validateGeminiKey("broken"), "unexpected response (HTTP 500)")
}

func TestWriteEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), EnvFileName)

	require.NoError(t, writeEnvFile(path, map[string]string{
		"BOT_TOKEN":       `123:a"b`,
		"SESSION_BACKEND": SessionBackendSQLite,
	}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	values, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, `123:a"b`, values["BOT_TOKEN"])
	assert.Equal(t, SessionBackendSQLite, values["SESSION_BACKEND"])
}

func TestMissingRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	assert.Equal(t, []string{"BOT_TOKEN"}, MissingRequired())

	t.Setenv("BOT_TOKEN", "token")
	assert.Empty(t, MissingRequired())
}
