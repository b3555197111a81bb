package transport

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compressed(t *testing.T, encoding, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch encoding {
	case "gzip":
		w := gzip.NewWriter(&buf)
		_, err := w.Write([]byte(body))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	case "br":
		w := brotli.NewWriter(&buf)
		_, err := w.Write([]byte(body))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	default:
		buf.WriteString(body)
	}
	return buf.Bytes()
}

func TestGetDecodesContentEncoding(t *testing.T) {
	for _, encoding := range []string{"gzip", "br", ""} {
		t.Run("encoding "+encoding, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "token", r.Header.Get("X-Auth-Token"))
				assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
				if encoding != "" {
					w.Header().Set("Content-Encoding", encoding)
				}
				w.Write(compressed(t, encoding, `{"matches":[]}`))
			}))
			defer srv.Close()

			c := NewClient(5*time.Second, nil)
			body, err := c.Get(context.Background(), srv.URL, map[string]string{"X-Auth-Token": "token"})
			require.NoError(t, err)
			assert.Equal(t, `{"matches":[]}`, string(body))
		})
	}
}

func TestGetReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(5*time.Second, nil).Get(context.Background(), srv.URL, nil)
	var status *StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, http.StatusTooManyRequests, status.Code)
	assert.Contains(t, err.Error(), "429")
}

func TestGetHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewClient(5*time.Second, nil).Get(ctx, srv.URL, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
