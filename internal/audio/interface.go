package audio

import (
	"context"
)

// Prober reports the duration and container format of an audio file.
type Prober interface {
	Probe(ctx context.Context, path string) (ProbeResult, error)
}

// Runner executes a single built ffmpeg invocation, blocking until the
// subprocess exits. onProgress, when non-nil, receives the number of
// seconds of output produced so far.
type Runner interface {
	Run(ctx context.Context, spec CommandSpec, onProgress func(seconds float64)) error
}
