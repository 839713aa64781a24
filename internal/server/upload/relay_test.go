package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/stream"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeStore struct {
	mu          sync.Mutex
	err         error
	key         string
	contentType string
	data        []byte
	ctxErr      error
}

func (s *fakeStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64, progress func(int64)) error {
	buf := make([]byte, 0, size)
	chunk := make([]byte, 1024)
	var done int64
	for {
		n, err := body.Read(chunk)
		buf = append(buf, chunk[:n]...)
		done += int64(n)
		if n > 0 {
			progress(done)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.key, s.contentType, s.data, s.ctxErr = key, contentType, buf, ctx.Err()
	return s.err
}

func (s *fakeStore) PublicURL(key string) string {
	return "https://cdn.example.com/portfolio/" + key
}

func newHandler(store Store) *Handler {
	h := NewHandler(store, logging.Discard())
	h.now = func() time.Time { return time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC) }
	return h
}

func multipartBody(t *testing.T, field, filename string, content []byte, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range extra {
		require.NoError(t, mw.WriteField(k, v))
	}
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func post(h http.Handler, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func readEvents(t *testing.T, body io.Reader) []stream.Event {
	t.Helper()
	r := stream.NewReader(body)
	var events []stream.Event
	for {
		payload, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		require.NoError(t, err)
		ev, err := stream.Decode(payload)
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func progressOf(events []stream.Event, typ stream.EventType) []int {
	var out []int
	for _, ev := range events {
		if ev.Type == typ {
			out = append(out, ev.Progress)
		}
	}
	return out
}

func assertIncreasing(t *testing.T, values []int) {
	t.Helper()
	for i := 1; i < len(values); i++ {
		assert.Greater(t, values[i], values[i-1], "progress must grow: %v", values)
	}
}

func TestRelay_Success(t *testing.T) {
	store := &fakeStore{}
	h := newHandler(store)

	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0x42}, 300_000)...)
	body, ct := multipartBody(t, "file", "shot.png", content, map[string]string{"note": "ignored"})

	before := testutil.ToFloat64(uploadsTotal.WithLabelValues("complete"))
	rec := post(h, body, ct)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := readEvents(t, rec.Body)
	require.NotEmpty(t, events)

	files := progressOf(events, stream.TypeFileUpload)
	require.NotEmpty(t, files)
	assert.Equal(t, 100, files[len(files)-1])
	assertIncreasing(t, files)

	storage := progressOf(events, stream.TypeStorageUpload)
	require.NotEmpty(t, storage)
	assert.Equal(t, 100, storage[len(storage)-1])
	assertIncreasing(t, storage)

	last := events[len(events)-1]
	require.Equal(t, stream.TypeComplete, last.Type)
	assert.Regexp(t, regexp.MustCompile(`^https://cdn\.example\.com/portfolio/uploads/2024/05/06/[0-9a-f-]{36}\.png$`), last.URL)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, "image/png", store.contentType)
	assert.Equal(t, content, store.data)
	assert.Equal(t, "https://cdn.example.com/portfolio/"+store.key, last.URL)

	assert.Equal(t, before+1, testutil.ToFloat64(uploadsTotal.WithLabelValues("complete")))

	// every file progress record precedes every storage record
	seenStorage := false
	for _, ev := range events {
		if ev.Type == stream.TypeStorageUpload {
			seenStorage = true
		}
		if ev.Type == stream.TypeFileUpload {
			assert.False(t, seenStorage, "file progress after storage progress")
		}
	}
}

func TestRelay_MethodNotAllowed(t *testing.T) {
	h := newHandler(&fakeStore{})
	for _, m := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(m, "/api/admin/uploads", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, m)
		assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
	}
}

func TestRelay_NotMultipart(t *testing.T) {
	h := newHandler(&fakeStore{})
	rec := post(h, bytes.NewBufferString(`{"file":"x"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRelay_ErrorEvents(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		content  []byte
		maxBytes int64
		storeErr error
		want     string
	}{
		{name: "missing field", field: "", want: "No file provided"},
		{name: "wrong field", field: "image", content: pngHeader, want: "No file provided"},
		{name: "empty file", field: "file", content: nil, want: "No file provided"},
		{name: "unsupported type", field: "file", content: []byte("just some text"), want: "Unsupported file type. Allowed: JPEG, PNG, GIF, WebP, PDF"},
		{name: "too large", field: "file", content: append(append([]byte{}, pngHeader...), make([]byte, 4096)...), maxBytes: 1024, want: "File too large. Maximum size is 1.0 KiB"},
		{name: "storage failure", field: "file", content: pngHeader, storeErr: errors.New("s3 down"), want: "Failed to store file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{err: tt.storeErr}
			h := newHandler(store)
			if tt.maxBytes > 0 {
				h.maxBytes = tt.maxBytes
			}

			body, ct := multipartBody(t, tt.field, "f.bin", tt.content, nil)
			rec := post(h, body, ct)
			require.Equal(t, http.StatusOK, rec.Code)

			events := readEvents(t, rec.Body)
			require.NotEmpty(t, events)
			last := events[len(events)-1]
			assert.Equal(t, stream.TypeError, last.Type)
			assert.Equal(t, tt.want, last.Message)

			for _, ev := range events[:len(events)-1] {
				assert.False(t, ev.Terminal(), "only the last record is terminal")
			}
		})
	}
}

func TestRelay_AcceptedTypes(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		ext     string
	}{
		{name: "jpeg", content: []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"), ext: ".jpg"},
		{name: "gif", content: []byte("GIF89a\x01\x00\x01\x00"), ext: ".gif"},
		{name: "webp", content: []byte("RIFF\x24\x00\x00\x00WEBPVP8 "), ext: ".webp"},
		{name: "pdf", content: []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"), ext: ".pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(&fakeStore{})
			body, ct := multipartBody(t, "file", "x", tt.content, nil)
			events := readEvents(t, post(h, body, ct).Body)

			require.NotEmpty(t, events)
			last := events[len(events)-1]
			require.Equal(t, stream.TypeComplete, last.Type, last.Message)
			assert.Contains(t, last.URL, tt.ext)
		})
	}
}

func TestRelay_StorageWriteOutlivesRequest(t *testing.T) {
	store := &fakeStore{}
	h := newHandler(store)

	body, ct := multipartBody(t, "file", "x.png", pngHeader, nil)
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads", body).WithContext(ctx)
	req.Header.Set("Content-Type", ct)
	cancel()

	h.ServeHTTP(httptest.NewRecorder(), req)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.NotEmpty(t, store.key, "object written despite canceled request")
	assert.NoError(t, store.ctxErr)
}

func TestMessage(t *testing.T) {
	h := newHandler(&fakeStore{})
	assert.Equal(t, "File too large. Maximum size is 10 MiB", h.message(fmt.Errorf("relay: %w", common.ErrFileTooLarge)))
	assert.Equal(t, "Upload interrupted", h.message(fmt.Errorf("%w: connection reset", common.ErrUploadInterrupted)))
	assert.Equal(t, "Failed to store file", h.message(errors.New("boom")))
}
