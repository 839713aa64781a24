// Package upload implements the upload relay: it accepts one file per
// multipart request, writes it to object storage and streams progress
// records back on the same response.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/server/httpx"
	"github.com/dmitrijs2005/portfolio/internal/server/storage"
	"github.com/dmitrijs2005/portfolio/internal/stream"
)

// formOverhead is the room left in the request body for multipart headers
// and boundaries on top of the file itself.
const formOverhead = 64 << 10

// Store is the object storage the relay writes to.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64, progress func(done int64)) error
	PublicURL(key string) string
}

type Handler struct {
	store        Store
	logger       logging.Logger
	maxBytes     int64
	storeTimeout time.Duration
	tempDir      string
	now          func() time.Time
}

func NewHandler(store Store, logger logging.Logger) *Handler {
	return &Handler{
		store:        store,
		logger:       logger.With("module", "upload"),
		maxBytes:     common.MaxUploadBytes,
		storeTimeout: 2 * time.Minute,
		now:          time.Now,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w, http.MethodPost)
		return
	}

	body := &meter{ReadCloser: http.MaxBytesReader(w, r.Body, h.maxBytes+formOverhead)}
	r.Body = body

	mr, err := r.MultipartReader()
	if err != nil {
		uploadsTotal.WithLabelValues("rejected").Inc()
		httpx.Error(w, http.StatusBadRequest, "Expected a multipart form")
		return
	}

	out, err := stream.NewResponseWriter(w)
	if err != nil {
		h.logger.Error(r.Context(), "cannot stream response", "error", err)
		return
	}

	rl := &relay{Handler: h, ctx: r.Context(), out: out}
	url, err := rl.run(mr, body, r.ContentLength)
	if err != nil {
		uploadsTotal.WithLabelValues("error").Inc()
		h.logger.Warn(r.Context(), "upload failed", "error", err)
		rl.send(stream.Failure(h.message(err)))
		return
	}

	uploadsTotal.WithLabelValues("complete").Inc()
	rl.send(stream.Complete(url))
}

// message maps a relay error onto the text shown to the uploader.
func (h *Handler) message(err error) string {
	switch {
	case errors.Is(err, common.ErrFileTooLarge):
		return fmt.Sprintf("File too large. Maximum size is %s", common.FormatSize(h.maxBytes))
	case errors.Is(err, common.ErrUnsupportedFile):
		return "Unsupported file type. Allowed: JPEG, PNG, GIF, WebP, PDF"
	case errors.Is(err, common.ErrMissingUploadField):
		return "No file provided"
	case errors.Is(err, common.ErrUploadInterrupted):
		return "Upload interrupted"
	default:
		return "Failed to store file"
	}
}

// relay is the state of one upload request.
type relay struct {
	*Handler
	ctx context.Context
	out *stream.Writer

	mu     sync.Mutex
	closed bool
	gone   bool
}

// send delivers ev unless the response has been finalised. A failed write
// means the client left; the upload itself carries on.
func (rl *relay) send(ev stream.Event) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.closed || rl.gone {
		return
	}
	if err := rl.out.Send(ev); err != nil {
		rl.gone = true
		rl.logger.Debug(rl.ctx, "client stopped reading progress", "error", err)
	}
	if ev.Terminal() {
		rl.closed = true
	}
}

// progress returns a callback that sends mk(percent) whenever the integer
// percentage of total grows.
func (rl *relay) progress(total int64, mk func(int) stream.Event) func(int64) {
	last := -1
	return func(done int64) {
		pct := stream.Percent(done, total)
		if pct <= last {
			return
		}
		last = pct
		rl.send(mk(pct))
	}
}

func (rl *relay) run(mr *multipart.Reader, body *meter, contentLength int64) (string, error) {
	part, err := filePart(mr)
	if err != nil {
		return "", err
	}
	defer part.Close()

	tmp, err := os.CreateTemp(rl.tempDir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	fileProgress := rl.progress(contentLength, stream.FileUpload)
	body.setOnRead(func(done int64) {
		if done < contentLength {
			fileProgress(done)
		}
	})

	n, err := io.Copy(tmp, io.LimitReader(part, rl.maxBytes+1))
	body.setOnRead(nil)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", common.ErrFileTooLarge
		}
		return "", fmt.Errorf("%w: %v", common.ErrUploadInterrupted, err)
	}
	if n > rl.maxBytes {
		return "", common.ErrFileTooLarge
	}
	if n == 0 {
		return "", common.ErrMissingUploadField
	}
	rl.send(stream.FileUpload(100))

	contentType, ext, err := sniff(tmp)
	if err != nil {
		return "", err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	key := storage.NewKey(rl.now(), ext)

	// The write outlives the request: a client that navigates away does not
	// abort it. It is still bounded by storeTimeout.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(rl.ctx), rl.storeTimeout)
	defer cancel()

	started := time.Now()
	err = rl.store.Put(ctx, key, contentType, tmp, n, rl.progress(n, stream.StorageUpload))
	storeDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	uploadBytes.Observe(float64(n))

	rl.logger.Info(rl.ctx, "upload stored", "key", key, "bytes", n, "content_type", contentType)
	return rl.store.PublicURL(key), nil
}

// filePart advances mr to the file field, skipping any other fields.
func filePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, common.ErrMissingUploadField
		}
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				return nil, common.ErrFileTooLarge
			}
			return nil, fmt.Errorf("%w: %v", common.ErrUploadInterrupted, err)
		}
		if part.FormName() == common.UploadFieldName && part.FileName() != "" {
			return part, nil
		}
		part.Close()
	}
}

// sniff detects the content type from the first bytes of f and returns it
// with the matching file extension.
func sniff(f io.ReadSeeker) (string, string, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", "", err
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", "", err
	}

	contentType, _, _ := strings.Cut(http.DetectContentType(head[:n]), ";")
	ext, ok := common.AcceptedUploadTypes[contentType]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", common.ErrUnsupportedFile, contentType)
	}
	return contentType, ext, nil
}

// meter counts bytes read from the request body.
type meter struct {
	io.ReadCloser
	mu     sync.Mutex
	n      int64
	onRead func(int64)
}

func (m *meter) setOnRead(fn func(int64)) {
	m.mu.Lock()
	m.onRead = fn
	m.mu.Unlock()
}

func (m *meter) Read(p []byte) (int, error) {
	n, err := m.ReadCloser.Read(p)

	m.mu.Lock()
	m.n += int64(n)
	done, fn := m.n, m.onRead
	m.mu.Unlock()

	if n > 0 && fn != nil {
		fn(done)
	}
	return n, err
}
