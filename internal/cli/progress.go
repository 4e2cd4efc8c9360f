package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
)

// ProgressBar draws an ingestion progress bar on a single terminal line.
// Its Update method matches indexer.ProgressFunc.
type ProgressBar struct {
	mu   sync.Mutex
	w    io.Writer
	bar  progress.Model
	last int
}

// NewProgressBar returns a bar that writes to w (usually stderr).
func NewProgressBar(w io.Writer) *ProgressBar {
	return &ProgressBar{
		w: w,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
		),
		last: -1,
	}
}

// Update redraws the bar for done of total rows. Redraws happen only when the
// whole percentage changes; the final row ends the line.
func (p *ProgressBar) Update(done, total int) {
	if total <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	pct := float64(done) / float64(total)
	whole := int(pct * 100)
	if whole == p.last && done != total {
		return
	}
	p.last = whole
	fmt.Fprintf(p.w, "\r%s %d/%d records", p.bar.ViewAs(pct), done, total)
	if done >= total {
		fmt.Fprintln(p.w)
	}
}
