package tui

import (
	"encoding/json"
	"fmt"

	"github.com/readalong-cli/readalong/bridge"
	"github.com/readalong-cli/readalong/util"
	"github.com/samber/lo"
)

// Evaluate executes a bridge command against the laid out chapter. It is
// called by the engine on the event loop.
func (r *Reader) Evaluate(script string) (string, error) {
	cmd, err := bridge.DecodeCommand(script)
	if err != nil {
		return "", err
	}

	switch cmd.Op {
	case bridge.OpHighlight:
		var args bridge.HighlightArgs
		if err := cmd.Decode(&args); err != nil {
			return "", err
		}
		r.active = args.Fragment
	case bridge.OpClearHighlight:
		r.active = ""
	case bridge.OpEnsureVisible:
		var args bridge.EnsureVisibleArgs
		if err := cmd.Decode(&args); err != nil {
			return "", err
		}
		r.ensureVisible(args.Fragment, args.Direction)
	case bridge.OpQueryPosition:
		var args bridge.QueryPositionArgs
		if err := cmd.Decode(&args); err != nil {
			return "", err
		}
		reply, err := json.Marshal(r.visiblePosition(args.Fragment))
		return string(reply), err
	case bridge.OpNextPage:
		r.turnPage(1)
	case bridge.OpUpdateState:
		if err := cmd.Decode(&r.status); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unknown op %q", cmd.Op)
	}

	return "", nil
}

// visibleCount is the number of fragments on the current page.
func (r *Reader) visibleCount() int {
	return util.Clamp(len(r.fragments)-r.top, 0, r.options.PageSize)
}

func (r *Reader) visiblePosition(fragment string) bridge.Position {
	count := r.visibleCount()
	index := lo.IndexOf(r.fragments, fragment) - r.top
	if index < 0 || index >= count {
		index = -1
	}
	return bridge.Position{Index: index, Count: count}
}

// ensureVisible scrolls so that fragment is on the page. Moving forward puts
// it at the top of the page, moving backward at the bottom.
func (r *Reader) ensureVisible(fragment string, direction bridge.Direction) {
	i := lo.IndexOf(r.fragments, fragment)
	if i < 0 || r.visiblePosition(fragment).Visible() {
		return
	}

	if direction == bridge.Backward {
		r.top = util.Max(0, i-r.options.PageSize+1)
	} else {
		r.top = i
	}
}

// turnPage moves by n pages, staying within the chapter.
func (r *Reader) turnPage(n int) {
	top := r.top + n*r.options.PageSize
	if top >= len(r.fragments) {
		return
	}
	r.top = util.Max(0, top)
}
