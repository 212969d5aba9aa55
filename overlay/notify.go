package overlay

import (
	"errors"
	"fmt"

	"github.com/readalong-cli/readalong/log"
)

var (
	ErrUnsupported     = errors.New("book has no narration")
	ErrNoSegments      = errors.New("chapter has no narration")
	ErrResourceMissing = errors.New("audio resource not found")
	ErrBackend         = errors.New("audio could not be opened")
	ErrFirstSegment    = errors.New("already at first segment")
	ErrEndOfContent    = errors.New("end of narrated content reached")
)

// Kind is the severity of a Notification.
type Kind int

const (
	Info Kind = iota
	Warning
	Error
)

func (k Kind) String() string {
	switch k {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notification is a user-facing event raised by the engine. Err is one of
// the package sentinels.
type Notification struct {
	Kind    Kind
	Message string
	Err     error
}

func (n Notification) Error() string {
	return n.Message
}

func (n Notification) Unwrap() error {
	return n.Err
}

// OnNotify registers fn to receive notifications on the owner context.
func (e *Engine) OnNotify(fn func(Notification)) {
	e.notifyListeners = append(e.notifyListeners, fn)
}

func (e *Engine) notify(kind Kind, err error, format string, args ...any) {
	message := err.Error()
	if format != "" {
		message = fmt.Sprintf(format, args...)
	}

	entry := log.With(log.Fields{"book": e.book.ID, "chapter": e.chapter, "segment": e.index})
	switch kind {
	case Error:
		entry.Errorf("%s", message)
	case Warning:
		entry.Warnf("%s", message)
	default:
		entry.Infof("%s", message)
	}

	n := Notification{Kind: kind, Message: message, Err: err}
	for _, fn := range e.notifyListeners {
		fn(n)
	}
}
