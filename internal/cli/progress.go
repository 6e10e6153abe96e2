package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Veraticus/statement-flow/internal/statement"
	"github.com/schollz/progressbar/v3"
)

// FetchProgress draws a progress bar for the paginated fetch loop.
type FetchProgress struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
	mu     sync.Mutex
	last   int
}

// NewFetchProgress creates a bar sized to the target number of transactions.
func NewFetchProgress(w io.Writer, limit int, description string) *FetchProgress {
	if limit <= 0 {
		limit = -1
	}
	fp := &FetchProgress{writer: w}
	fp.bar = progressbar.NewOptions(limit,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return fp
}

// Observe is a statement.ProgressFunc.
func (p *FetchProgress) Observe(pp statement.PageProgress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pp.Accumulated > p.last {
		if err := p.bar.Add(pp.Accumulated - p.last); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
		p.last = pp.Accumulated
	}
	p.bar.Describe(fmt.Sprintf("[cyan][bold]Page %d[reset] (%d received, %d kept)", pp.Call, pp.Received, pp.Kept))
}

// Accumulated returns the count last reported to the bar.
func (p *FetchProgress) Accumulated() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Finish completes the bar.
func (p *FetchProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
}
