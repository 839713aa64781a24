package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/stream"
)

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("uploader closed")

// Uploader sends files to the relay for one form. At most one transfer is
// in flight: starting another cancels the previous request and waits for
// its reader to exit first.
type Uploader struct {
	client   *http.Client
	endpoint string
	session  *Session
	logger   logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

// NewUploader posts to endpoint, the absolute URL of the relay, using
// client (which carries the session cookie).
func NewUploader(client *http.Client, endpoint string, session *Session, logger logging.Logger) *Uploader {
	return &Uploader{
		client:   noRedirects(client),
		endpoint: endpoint,
		session:  session,
		logger:   logger.With("module", "uploader"),
	}
}

func (u *Uploader) Session() *Session {
	return u.session
}

// Start validates the file and begins sending it. Validation failures are
// returned and recorded in the session; nothing is sent for them.
func (u *Uploader) Start(ctx context.Context, name string, data []byte) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return ErrClosed
	}
	u.stopLocked()

	if err := Validate(data); err != nil {
		u.session.Reject(name, int64(len(data)), err)
		return err
	}

	u.session.Begin(name, int64(len(data)), NewPreview(data))

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	u.cancel, u.done = cancel, done

	go func() {
		defer close(done)
		defer cancel()
		u.transfer(ctx, name, data)
	}()
	return nil
}

// Wait blocks until the current transfer, if any, has finished.
func (u *Uploader) Wait() {
	u.mu.Lock()
	done := u.done
	u.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Abort cancels the transfer in flight. The session returns to idle.
func (u *Uploader) Abort() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.stopLocked()
	u.session.Abort()
}

// Close aborts any transfer and releases the session's preview. The
// uploader cannot be used afterwards.
func (u *Uploader) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.stopLocked()
	u.session.Abort()
	u.session.Close()
	u.closed = true
}

// stopLocked cancels the current transfer and waits for its goroutine.
func (u *Uploader) stopLocked() {
	if u.cancel == nil {
		return
	}
	u.cancel()
	<-u.done
	u.cancel, u.done = nil, nil
}

func (u *Uploader) transfer(ctx context.Context, name string, data []byte) {
	req, err := newUploadRequest(ctx, u.endpoint, name, data)
	if err != nil {
		u.session.Fail("Upload failed")
		u.logger.Error(ctx, "cannot build upload request", "error", err)
		return
	}

	resp, err := u.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		u.logger.Warn(ctx, "upload request failed", "error", err)
		u.session.Fail("Upload failed: server unreachable")
		return
	}
	defer resp.Body.Close()

	if signedOut(resp.StatusCode) {
		u.session.Fail("Upload failed: not signed in")
		return
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		u.session.Fail(fmt.Sprintf("Upload failed with status %d", resp.StatusCode))
		return
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		u.session.Fail("Upload failed: empty response")
		return
	}

	r := stream.NewReader(resp.Body)
	for {
		payload, err := r.Next()
		if errors.Is(err, stream.ErrMalformedEvent) {
			u.logger.Warn(ctx, "skipping malformed progress record", "error", err)
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !errors.Is(err, io.EOF) {
				u.logger.Warn(ctx, "progress stream broken", "error", err)
			}
			u.session.Closed()
			return
		}

		ev, err := stream.Decode(payload)
		if err != nil {
			u.logger.Warn(ctx, "skipping malformed progress record", "payload", string(payload), "error", err)
			continue
		}
		u.logger.Debug(ctx, "progress record", "type", ev.Type, "progress", ev.Progress)

		u.session.Apply(ev)
		if ev.Terminal() {
			return
		}
	}
}

// noRedirects returns a copy of client that does not follow redirects. An
// expired session is redirected to the login page; that answer is reported.
func noRedirects(client *http.Client) *http.Client {
	c := *client
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &c
}

func signedOut(status int) bool {
	switch status {
	case http.StatusFound, http.StatusSeeOther, http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}

// newUploadRequest frames data as a one-field multipart form. The body is
// assembled from the form header, the file and the trailer so its length is
// known up front; the relay measures ingestion against it.
func newUploadRequest(ctx context.Context, endpoint, name string, data []byte) (*http.Request, error) {
	var frame bytes.Buffer
	mw := multipart.NewWriter(&frame)
	if _, err := mw.CreateFormFile(common.UploadFieldName, name); err != nil {
		return nil, err
	}
	headerLen := frame.Len()
	if err := mw.Close(); err != nil {
		return nil, err
	}
	raw := frame.Bytes()

	body := io.MultiReader(
		bytes.NewReader(raw[:headerLen]),
		bytes.NewReader(data),
		bytes.NewReader(raw[headerLen:]),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.ContentLength = int64(len(raw) + len(data))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "text/event-stream")
	return req, nil
}
