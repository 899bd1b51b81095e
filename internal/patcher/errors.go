package patcher

import (
	"errors"
	"fmt"

	"github.com/sokinpui/blocktoggle/model"
)

// ErrUnknownKind is returned when the target kind is not one of the profile's kinds.
var ErrUnknownKind = errors.New("unknown kind")

// MalformedRegionError reports a region whose opening delimiter never
// balances before the end of the document.
type MalformedRegionError struct {
	Identifier string
	// Line is the 1-based line number of the region start.
	Line  int
	Depth int
}

func (e *MalformedRegionError) Error() string {
	return fmt.Sprintf("region %s starting at line %d is never closed (depth %d at end of file)", e.Identifier, e.Line, e.Depth)
}

// NoMatchWarning signals that the target kind had no sub-block anywhere in
// the document. It is reported, never returned as an error.
type NoMatchWarning struct {
	Kind    model.Kind
	Regions int
}

func (w NoMatchWarning) String() string {
	if w.Regions == 0 {
		return fmt.Sprintf("no regions were found, so no %s sub-blocks were switched; the file may be damaged or formatted unexpectedly", w.Kind)
	}
	return fmt.Sprintf("no %s sub-blocks were detected in %d region(s); the file may be damaged or formatted unexpectedly", w.Kind, w.Regions)
}
