// Package upload is the client side of the upload relay. Session is the
// state of one upload form; Uploader sends files to the relay and feeds the
// streamed progress records into the session.
package upload

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/portfolio/internal/logging"
	"github.com/dmitrijs2005/portfolio/internal/stream"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusUploading Status = "uploading"
	StatusComplete  Status = "complete"
	StatusError     Status = "error"
)

// DefaultResetDelay is how long a finished upload stays on display.
const DefaultResetDelay = 2 * time.Second

// Snapshot is a copy of the session state for rendering.
type Snapshot struct {
	FileName               string
	FileSizeBytes          int64
	FileProgressPercent    int
	StorageProgressPercent int
	Status                 Status
	ResultURL              string
	ErrorMessage           string
}

// Destination receives the public URL of a stored file, e.g. the thumbnail
// field of a project form. SetURL runs with the session locked and must not
// call back into it.
type Destination interface {
	SetURL(url string)
}

type DestinationFunc func(url string)

func (f DestinationFunc) SetURL(url string) { f(url) }

// Preview holds the raw bytes of the selected file until the server URL
// exists. After Release, Bytes returns nil.
type Preview struct {
	mu   sync.Mutex
	data []byte
}

func NewPreview(data []byte) *Preview {
	return &Preview{data: data}
}

func (p *Preview) Bytes() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data
}

func (p *Preview) Release() {
	p.mu.Lock()
	p.data = nil
	p.mu.Unlock()
}

func (p *Preview) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data == nil
}

// Session is the upload state machine
//
//	idle -> uploading -> complete | error -> idle
//
// driven by discrete events: Begin (file selected), Apply (record
// received), Closed (stream ended), Fail (transport failure), Abort,
// the display delay elapsing and Reset. It is safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	snap       Snapshot
	preview    *Preview
	dest       Destination
	resetDelay time.Duration
	timer      *time.Timer
	gen        uint64
	onChange   func(Snapshot)
	logger     logging.Logger
}

func NewSession(dest Destination, resetDelay time.Duration, logger logging.Logger) *Session {
	return &Session{
		snap:       Snapshot{Status: StatusIdle},
		dest:       dest,
		resetDelay: resetDelay,
		logger:     logger.With("module", "upload_session"),
	}
}

// OnChange registers fn to be called with every new snapshot. fn runs with
// the session unlocked and must not block for long.
func (s *Session) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Preview returns the local preview of the file in flight, or nil.
func (s *Session) Preview() *Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// update runs fn under the lock and publishes the resulting snapshot.
func (s *Session) update(fn func() bool) {
	s.mu.Lock()
	changed := fn()
	snap, cb := s.snap, s.onChange
	s.mu.Unlock()

	if changed && cb != nil {
		cb(snap)
	}
}

// Begin starts tracking a new file, replacing whatever was shown before.
func (s *Session) Begin(name string, size int64, preview *Preview) {
	s.update(func() bool {
		s.clearLocked()
		s.preview = preview
		s.snap = Snapshot{FileName: name, FileSizeBytes: size, Status: StatusUploading}
		return true
	})
}

// Reject records a file refused by local validation.
func (s *Session) Reject(name string, size int64, err error) {
	s.update(func() bool {
		s.clearLocked()
		s.snap = Snapshot{FileName: name, FileSizeBytes: size, Status: StatusError, ErrorMessage: message(err)}
		return true
	})
}

// Apply moves the session forward by one streamed record. Records arriving
// outside an upload are ignored.
func (s *Session) Apply(ev stream.Event) {
	s.update(func() bool {
		if s.snap.Status != StatusUploading {
			return false
		}
		switch ev.Type {
		case stream.TypeFileUpload:
			if ev.Progress <= s.snap.FileProgressPercent {
				return false
			}
			s.snap.FileProgressPercent = ev.Progress
		case stream.TypeStorageUpload:
			if ev.Progress <= s.snap.StorageProgressPercent {
				return false
			}
			s.snap.StorageProgressPercent = ev.Progress
		case stream.TypeComplete:
			s.completeLocked(ev.URL)
		case stream.TypeError:
			s.failLocked(ev.Message)
		default:
			return false
		}
		return true
	})
}

// Closed reports that the stream ended. Without a terminal record first
// this is an error.
func (s *Session) Closed() {
	s.update(func() bool {
		if s.snap.Status != StatusUploading {
			return false
		}
		s.failLocked("Upload ended before the server confirmed it")
		return true
	})
}

// Fail reports a transport failure.
func (s *Session) Fail(msg string) {
	s.update(func() bool {
		if s.snap.Status != StatusUploading {
			return false
		}
		s.failLocked(msg)
		return true
	})
}

// Abort drops the upload in progress without reporting an error.
func (s *Session) Abort() {
	s.update(func() bool {
		if s.snap.Status != StatusUploading {
			return false
		}
		s.clearLocked()
		s.snap = Snapshot{Status: StatusIdle}
		return true
	})
}

// Reset returns to idle from any state.
func (s *Session) Reset() {
	s.update(func() bool {
		if s.snap.Status == StatusIdle {
			return false
		}
		s.clearLocked()
		s.snap = Snapshot{Status: StatusIdle}
		return true
	})
}

// Close releases the preview and stops the display timer.
func (s *Session) Close() {
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()
}

func (s *Session) completeLocked(url string) {
	s.snap.Status = StatusComplete
	s.snap.ResultURL = url
	s.snap.FileProgressPercent = 100
	s.snap.StorageProgressPercent = 100
	s.releaseLocked()
	if s.dest != nil {
		s.dest.SetURL(url)
	}

	gen := s.gen
	s.timer = time.AfterFunc(s.resetDelay, func() { s.resetAfterDelay(gen) })
}

func (s *Session) failLocked(msg string) {
	s.snap.Status = StatusError
	s.snap.ErrorMessage = msg
	s.releaseLocked()
	s.logger.Warn(context.Background(), "upload failed", "file", s.snap.FileName, "message", msg)
}

// resetAfterDelay is the display delay elapsing. A timer that belongs to
// an earlier upload does nothing.
func (s *Session) resetAfterDelay(gen uint64) {
	s.update(func() bool {
		if gen != s.gen || s.snap.Status != StatusComplete {
			return false
		}
		s.timer = nil
		s.snap = Snapshot{Status: StatusIdle}
		return true
	})
}

func (s *Session) releaseLocked() {
	if s.preview != nil {
		s.preview.Release()
		s.preview = nil
	}
}

// clearLocked ends everything tied to the current upload.
func (s *Session) clearLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.releaseLocked()
}
