package cue

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/ianaindex"
)

// decodeText decodes raw CUE sheet bytes into a string. When charset is
// empty or "auto" the character set is detected with chardet; otherwise
// the given IANA charset name is used as-is. A leading BOM is stripped
// from the decoded text.
func decodeText(data []byte, charset string) (string, error) {
	detected := charset == "" || charset == "auto"
	if detected {
		best, err := chardet.NewTextDetector().DetectBest(data)
		if err != nil {
			slog.Warn("Charset detection inconclusive, assuming UTF-8", "error", err)
			charset = "UTF-8"
		} else {
			slog.Debug("Detected characters encoding",
				"charset", best.Charset,
				"confidence", best.Confidence)
			charset = best.Charset
		}
	}
	return decodeWith(data, charset, detected)
}

// decodeWith decodes data as the named IANA charset. A charset the user
// asked for but that has no decoder is an error; a detected one falls
// back to UTF-8 with a warning, since detection is best-effort.
func decodeWith(data []byte, charset string, detected bool) (string, error) {
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		if !detected {
			return "", fmt.Errorf("%w: unsupported characters encoding %q", ErrParse, charset)
		}
		slog.Warn("No decoder for detected encoding, assuming UTF-8", "charset", charset)
		return stripBOM(string(data)), nil
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: decoding as %s: %v", ErrParse, charset, err)
	}

	return stripBOM(string(decoded)), nil
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}
