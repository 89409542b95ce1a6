package progress

import (
	"fmt"
	"log/slog"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
)

// Bar renders one terminal progress bar per track using progressbar/v3.
type Bar struct {
	totalTracks int
	current     *progressbar.ProgressBar
}

// NewBar returns a terminal progress Reporter.
func NewBar() *Bar {
	return &Bar{}
}

func (b *Bar) StartFile(path string, tracks int) {
	b.totalTracks = tracks
	slog.Info("Processing", "file", path, "tracks", tracks)
}

func (b *Bar) StartTrack(number int, title string, duration float64) {
	b.current = progressbar.NewOptions64(
		int64(duration*1000),
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetDescription(
			fmt.Sprintf("[cyan][%d/%d][reset] %s", number, b.totalTracks, title)),
	)
}

func (b *Bar) TrackProgress(seconds float64) {
	if b.current != nil {
		_ = b.current.Set64(int64(seconds * 1000))
	}
}

func (b *Bar) EndTrack(err error) {
	if b.current == nil {
		return
	}
	if err == nil {
		_ = b.current.Finish()
	}
	_ = b.current.Close()
	fmt.Println()
	b.current = nil
}

func (b *Bar) EndFile(err error) {
	if err != nil {
		slog.Error("File failed", "error", err)
		return
	}
	slog.Info("Done")
}
