package ingest

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Bar draws a terminal progress bar on w while rows are inserted.
func Bar(w io.Writer) ProgressFunc {
	return func(total int) func(n int) {
		bar := progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("gravando linhas"),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(w, "\n") }),
		)
		return func(n int) {
			_ = bar.Set(n)
		}
	}
}
