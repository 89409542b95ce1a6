// Package progress defines how the batch orchestrator reports work to
// the user. The core is agnostic to the concrete meter; the CLI installs
// a terminal progress bar, library users may install anything.
package progress

// Reporter receives batch progress events. Implementations must be safe
// to call from a single goroutine in file/track order.
type Reporter interface {
	// StartFile announces a CUE file about to be processed.
	StartFile(path string, tracks int)
	// StartTrack announces a track extraction; duration is the expected
	// output length in seconds.
	StartTrack(number int, title string, duration float64)
	// TrackProgress reports seconds of output produced for the current track.
	TrackProgress(seconds float64)
	// EndTrack completes the current track, err non-nil on failure.
	EndTrack(err error)
	// EndFile completes the current file, err non-nil when it was skipped
	// or aborted.
	EndFile(err error)
}

// Noop is a Reporter that discards all events.
type Noop struct{}

func (Noop) StartFile(string, int)              {}
func (Noop) StartTrack(int, string, float64)    {}
func (Noop) TrackProgress(float64)              {}
func (Noop) EndTrack(error)                     {}
func (Noop) EndFile(error)                      {}
