package report

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/sells-group/geo-cli/internal/fetcher"
)

// Progress returns a fetcher.ProgressFunc that draws a byte progress bar on w.
// Unknown sizes render as a spinner.
func Progress(w io.Writer) fetcher.ProgressFunc {
	return func(name string, total int64) io.WriteCloser {
		return progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(name),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionShowCount(),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(w, "\n") }),
			progressbar.OptionSetRenderBlankState(true),
		)
	}
}
