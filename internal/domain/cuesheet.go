// Package domain defines the data model shared by the CUE parser,
// the command builder and the batch orchestrator.
package domain

// FramesPerSecond is the CD frame rate used by CUE INDEX timestamps.
const FramesPerSecond = 75

// IndexTime is a frame-accurate CUE timestamp (INDEX 01 mm:ss:ff).
type IndexTime struct {
	Minutes int
	Seconds int
	Frames  int
}

// ToSeconds converts the timestamp to seconds.
func (it IndexTime) ToSeconds() float64 {
	return float64(it.Minutes)*60 + float64(it.Seconds) + float64(it.Frames)/FramesPerSecond
}

// Track represents an individual track described by a CUE sheet.
type Track struct {
	Number    int
	Title     string
	Performer string
	Index     IndexTime

	// StartSec and DurationSec are filled in by the timeline resolver.
	// DurationSec of the last track requires the probed media duration.
	StartSec    float64
	DurationSec float64
}

// CueSheet represents a parsed CUE sheet: disc-level metadata plus the
// ordered tracks it describes. It is immutable after parsing.
type CueSheet struct {
	Album      string
	Performer  string
	Genre      string
	Date       string
	Comment    string
	DiscID     string
	DiscNumber string

	// SourceFile is the absolute path of the audio file referenced by the
	// FILE directive, resolved relative to the CUE sheet's directory.
	SourceFile string
	FileType   string

	// CuePath is the absolute path of the CUE sheet itself.
	CuePath string

	Tracks []*Track
}
