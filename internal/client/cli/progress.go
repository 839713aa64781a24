package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/dmitrijs2005/portfolio/internal/client/upload"
	"github.com/dmitrijs2005/portfolio/internal/common"
)

// terminalSize is a test seam for term.GetSize.
var terminalSize = term.GetSize

const (
	defaultWidth = 80
	minBar       = 10
	maxBar       = 30
)

func terminalWidth() int {
	w, _, err := terminalSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// progress draws both upload phases on one line, redrawing it with '\r'.
type progress struct {
	mu       sync.Mutex
	w        io.Writer
	barWidth int
	last     string
	done     bool
	result   upload.Snapshot
}

func newProgress(w io.Writer, width int) *progress {
	// two bars share what is left after labels and percentages
	bw := (width - 40) / 2
	bw = max(minBar, min(maxBar, bw))
	return &progress{w: w, barWidth: bw}
}

func (p *progress) render(s upload.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done || s.Status == upload.StatusIdle {
		return
	}

	line := p.line(s)
	if line != p.last {
		fmt.Fprint(p.w, "\r"+line)
		p.last = line
	}

	if s.Status == upload.StatusComplete || s.Status == upload.StatusError {
		fmt.Fprintln(p.w)
		p.done = true
		p.result = s
	}
}

func (p *progress) line(s upload.Snapshot) string {
	if s.Status == upload.StatusError {
		return fmt.Sprintf("%s: %s", s.FileName, s.ErrorMessage)
	}
	return fmt.Sprintf("%s (%s) upload %s %3d%% storage %s %3d%%",
		s.FileName, common.FormatSize(s.FileSizeBytes),
		p.bar(s.FileProgressPercent), s.FileProgressPercent,
		p.bar(s.StorageProgressPercent), s.StorageProgressPercent)
}

func (p *progress) bar(percent int) string {
	filled := p.barWidth * percent / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", p.barWidth-filled) + "]"
}

// final reports the terminal snapshot, if the upload reached one.
func (p *progress) final() (upload.Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result, p.done
}
