// Package timeline computes per-track start offsets and durations from
// CUE index timestamps and the probed duration of the source audio file.
package timeline

import (
	"fmt"
	"log/slog"

	"cuesplit/internal/domain"
)

// Resolve fills in StartSec and DurationSec for every track of the sheet.
// The duration of each track is the gap to the next track's start; the
// last track runs to totalDuration, the probed length of the source file
// in seconds. Two tracks sharing an index timestamp yield a zero-length
// track and a warning.
func Resolve(sheet *domain.CueSheet, totalDuration float64) error {
	if len(sheet.Tracks) == 0 {
		return fmt.Errorf("no tracks to resolve")
	}

	for i, track := range sheet.Tracks {
		track.StartSec = track.Index.ToSeconds()

		if i < len(sheet.Tracks)-1 {
			next := sheet.Tracks[i+1].Index.ToSeconds()
			track.DurationSec = next - track.StartSec
			if track.DurationSec == 0 {
				slog.Warn("Zero-length track, identical index timestamps",
					"track", track.Number, "start", track.StartSec)
			}
			continue
		}

		track.DurationSec = totalDuration - track.StartSec
		if track.DurationSec < 0 {
			return fmt.Errorf("track %d starts at %.3fs but source is only %.3fs long",
				track.Number, track.StartSec, totalDuration)
		}
	}

	return nil
}
