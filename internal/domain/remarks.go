package domain

import "strings"

// SetRemark stores a REM directive's key/value pair in the matching
// disc-level metadata field. Unrecognized keys are ignored.
func (s *CueSheet) SetRemark(key, val string) {
	switch strings.ToUpper(key) {
	case "GENRE":
		s.Genre = val
	case "DATE":
		s.Date = val
	case "COMMENT":
		s.Comment = val
	case "DISCID":
		s.DiscID = val
	case "DISCNUMBER":
		s.DiscNumber = val
	}
}
