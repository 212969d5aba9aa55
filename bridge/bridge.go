// Package bridge issues presentation commands to the surface that renders the
// book's text: highlighting fragments, turning pages, reporting which
// fragments are visible and mirroring the playback state.
package bridge

// Direction hints which way the surface should move when a fragment is off
// the current page.
type Direction string

const (
	Forward  Direction = "next"
	Backward Direction = "previous"
)

// Position is where a fragment sits among the fragments visible on the
// active page. Index is -1 when the fragment itself is not visible.
type Position struct {
	Index int `json:"index"`
	Count int `json:"count"`
}

// Visible reports whether the fragment is on the active page.
func (p Position) Visible() bool {
	return p.Index >= 0 && p.Index < p.Count
}

// Last reports whether the fragment is the last visible one on the page.
func (p Position) Last() bool {
	return p.Visible() && p.Index == p.Count-1
}

// State mirrors the playback state for the surface's controls.
type State struct {
	Enabled      bool    `json:"enabled"`
	Playing      bool    `json:"playing"`
	SegmentIndex int     `json:"segmentIndex"`
	SegmentCount int     `json:"segmentCount"`
	ChapterTitle string  `json:"chapterTitle"`
	Duration     float64 `json:"durationSeconds"`
	Position     float64 `json:"positionSeconds"`
}

// Bridge is what the playback engine needs from a rendering surface.
// Implementations never fail: errors are logged and treated as no
// information.
type Bridge interface {
	Highlight(fragmentID, activeClass, playingClass string)
	ClearHighlight(activeClass, playingClass string)
	EnsureVisible(fragmentID string, direction Direction)
	// VisiblePosition locates fragmentID among the fragments of all that are
	// visible on the active page. ok is false when the surface gave no answer.
	VisiblePosition(fragmentID string, all []string) (position Position, ok bool)
	NextPage()
	PushState(state State)
}
