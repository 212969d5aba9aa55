package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/readalong-cli/readalong/log"
)

// Operation names understood by a Surface.
const (
	OpHighlight      = "highlight"
	OpClearHighlight = "clearHighlight"
	OpEnsureVisible  = "ensureVisible"
	OpQueryPosition  = "querySegmentPosition"
	OpNextPage       = "nextPage"
	OpUpdateState    = "updateState"
)

// ErrNoReply is returned by ParseReply for an empty reply.
var ErrNoReply = errors.New("empty reply")

// Surface evaluates a serialized command and returns its reply, which is
// empty for commands that produce none.
type Surface interface {
	Evaluate(script string) (string, error)
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(script string) (string, error)

func (f SurfaceFunc) Evaluate(script string) (string, error) {
	return f(script)
}

// Command is the serialized form of a bridge call.
type Command struct {
	Op   string          `json:"op"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Decode unmarshals the command arguments into v.
func (c Command) Decode(v any) error {
	if len(c.Args) == 0 {
		return nil
	}
	return json.Unmarshal(c.Args, v)
}

// DecodeCommand parses a serialized command.
func DecodeCommand(script string) (Command, error) {
	var cmd Command
	if err := json.Unmarshal([]byte(script), &cmd); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	if cmd.Op == "" {
		return Command{}, errors.New("decode command: missing op")
	}
	return cmd, nil
}

// Argument shapes of each operation.
type (
	HighlightArgs struct {
		Fragment     string `json:"fragmentId"`
		ActiveClass  string `json:"activeClass"`
		PlayingClass string `json:"playingClass"`
	}

	ClearArgs struct {
		ActiveClass  string `json:"activeClass"`
		PlayingClass string `json:"playingClass"`
	}

	EnsureVisibleArgs struct {
		Fragment  string    `json:"fragmentId"`
		Direction Direction `json:"direction"`
	}

	QueryPositionArgs struct {
		Fragment string   `json:"fragmentId"`
		All      []string `json:"fragmentIds"`
	}
)

// Scripted is a Bridge that serializes every call to JSON and hands it to a
// Surface.
type Scripted struct {
	surface Surface
}

// NewScripted creates a bridge over surface.
func NewScripted(surface Surface) *Scripted {
	return &Scripted{surface: surface}
}

func (s *Scripted) Highlight(fragmentID, activeClass, playingClass string) {
	s.send(OpHighlight, HighlightArgs{Fragment: fragmentID, ActiveClass: activeClass, PlayingClass: playingClass})
}

func (s *Scripted) ClearHighlight(activeClass, playingClass string) {
	s.send(OpClearHighlight, ClearArgs{ActiveClass: activeClass, PlayingClass: playingClass})
}

func (s *Scripted) EnsureVisible(fragmentID string, direction Direction) {
	s.send(OpEnsureVisible, EnsureVisibleArgs{Fragment: fragmentID, Direction: direction})
}

func (s *Scripted) VisiblePosition(fragmentID string, all []string) (Position, bool) {
	reply, ok := s.send(OpQueryPosition, QueryPositionArgs{Fragment: fragmentID, All: all})
	if !ok {
		return Position{}, false
	}

	position, err := ParseReply(reply)
	if err != nil {
		log.With(log.Fields{"op": OpQueryPosition}).Warnf("unusable reply %q: %v", reply, err)
		return Position{}, false
	}
	return position, true
}

func (s *Scripted) NextPage() {
	s.send(OpNextPage, nil)
}

func (s *Scripted) PushState(state State) {
	s.send(OpUpdateState, state)
}

func (s *Scripted) send(op string, args any) (string, bool) {
	script, err := Encode(op, args)
	if err != nil {
		log.With(log.Fields{"op": op}).Errorf("encode command: %v", err)
		return "", false
	}

	reply, err := s.surface.Evaluate(script)
	if err != nil {
		log.With(log.Fields{"op": op}).Warnf("surface failed: %v", err)
		return "", false
	}
	return reply, true
}

// Encode serializes a command.
func Encode(op string, args any) (string, error) {
	cmd := Command{Op: op}
	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return "", err
		}
		cmd.Args = raw
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseReply decodes a querySegmentPosition reply. Surfaces that evaluate
// scripts in a browser often return the JSON doubly encoded as a string, so
// one level of quoting is accepted.
func ParseReply(reply string) (Position, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" || reply == "null" {
		return Position{}, ErrNoReply
	}

	if strings.HasPrefix(reply, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(reply), &inner); err != nil {
			return Position{}, err
		}
		return ParseReply(inner)
	}

	var raw struct {
		Index *int `json:"index"`
		Count *int `json:"count"`
	}
	if err := json.Unmarshal([]byte(reply), &raw); err != nil {
		return Position{}, err
	}
	if raw.Index == nil || raw.Count == nil {
		return Position{}, errors.New("missing index or count")
	}
	if *raw.Count < 0 {
		return Position{}, fmt.Errorf("negative count %d", *raw.Count)
	}

	return Position{Index: *raw.Index, Count: *raw.Count}, nil
}
