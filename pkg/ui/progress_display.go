package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProgressDisplay prints a one-line progress bar per category
type ProgressDisplay struct {
	mu  sync.Mutex
	out io.Writer

	category      string
	categoryTotal int
	categoryDone  int
	categoryFails int
	currentItem   string

	categories      int
	itemsWritten    int
	itemsFailed     int
	bytesDownloaded int64
	startTime       time.Time
}

// NewProgressDisplay creates a progress display writing to out
func NewProgressDisplay(out io.Writer) *ProgressDisplay {
	return &ProgressDisplay{
		out:       out,
		startTime: time.Now(),
	}
}

// StartCategory begins a new progress line
func (p *ProgressDisplay) StartCategory(category string, items int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.category = category
	p.categoryTotal = items
	p.categoryDone = 0
	p.categoryFails = 0
	p.currentItem = ""
	p.printProgress()
}

// AddItems grows the expected row count of the current category, for items
// that turn out to list several variants
func (p *ProgressDisplay) AddItems(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.categoryTotal += n
	p.printProgress()
}

// CompleteItem counts a written row
func (p *ProgressDisplay) CompleteItem(item string, size int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.categoryDone++
	p.itemsWritten++
	p.bytesDownloaded += size
	p.currentItem = item
	p.printProgress()
}

// FailItem counts a skipped row
func (p *ProgressDisplay) FailItem(item string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.categoryDone++
	p.categoryFails++
	p.itemsFailed++
	p.currentItem = item
	p.printProgress()
}

// CompleteCategory ends the current progress line
func (p *ProgressDisplay) CompleteCategory(category string, written int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.categories++
	mark := Green("✓")
	if written == 0 {
		mark = Red("✗")
	}
	fmt.Fprintf(p.out, "\r%s\r%s %s %d/%d rows", strings.Repeat(" ", 100), mark, Cyan(category), written, p.categoryTotal)
	if p.categoryFails > 0 {
		fmt.Fprintf(p.out, " • %s", Red(fmt.Sprintf("%d skipped", p.categoryFails)))
	}
	fmt.Fprintln(p.out)
}

// printProgress prints the progress line of the current category
func (p *ProgressDisplay) printProgress() {
	progress := 0.0
	if p.categoryTotal > 0 {
		progress = float64(p.categoryDone) / float64(p.categoryTotal)
	}
	if progress > 1 {
		progress = 1
	}
	barWidth := 20
	filled := int(progress * float64(barWidth))
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	line := fmt.Sprintf("%s [%s] %d/%d • %s",
		Cyan(p.category),
		bar,
		p.categoryDone,
		p.categoryTotal,
		formatBytes(p.bytesDownloaded),
	)
	if p.currentItem != "" {
		line += fmt.Sprintf(" • %s", truncate(p.currentItem, 30))
	}
	if p.categoryFails > 0 {
		line += fmt.Sprintf(" • %s", Red(fmt.Sprintf("%d errors", p.categoryFails)))
	}

	fmt.Fprintf(p.out, "\r%s\r%s", strings.Repeat(" ", 100), line)
}

// Complete prints the run summary
func (p *ProgressDisplay) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.startTime)
	fmt.Fprintf(p.out, "\n%s %d rows from %d categories\n", Green("✓"), p.itemsWritten, p.categories)
	fmt.Fprintf(p.out, "  %s %s in %s\n", Dim("•"), formatBytes(p.bytesDownloaded), formatDuration(elapsed))
	if p.itemsFailed > 0 {
		fmt.Fprintf(p.out, "  %s %d items skipped, see the log for details\n", Dim("•"), p.itemsFailed)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

// formatBytes formats bytes in a human-readable way
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
