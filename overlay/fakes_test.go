package overlay

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/readalong-cli/readalong/audio"
	"github.com/readalong-cli/readalong/bridge"
	"github.com/readalong-cli/readalong/smil"
	"github.com/samber/lo"
)

// clip describes one par element of a generated overlay.
type clip struct {
	fragment string
	chapter  string
	src      string
	begin    string
	end      string
}

func overlayXML(clips []clip) string {
	var b strings.Builder
	b.WriteString(`<smil xmlns="http://www.w3.org/ns/SMIL" version="3.0"><body>`)
	for i, c := range clips {
		fmt.Fprintf(&b, `<par id="par%d"><text src="%s#%s"/><audio src="%s"`, i+1, c.chapter, c.fragment, c.src)
		if c.begin != "" {
			fmt.Fprintf(&b, ` clipBegin="%s"`, c.begin)
		}
		if c.end != "" {
			fmt.Fprintf(&b, ` clipEnd="%s"`, c.end)
		}
		b.WriteString(`/></par>`)
	}
	b.WriteString(`</body></smil>`)
	return b.String()
}

// newBook builds a book whose overlay narrates the chapters named by the
// clips. Resources are created for every listed audio path.
func newBook(clips []clip, chapters []string, resources ...string) *Book {
	doc, err := smil.Parse("mo1", "OEBPS/overlay.smil", []byte(overlayXML(clips)))
	if err != nil {
		panic(err)
	}
	for _, ch := range chapters {
		doc.Associate("OEBPS/" + ch)
	}

	return &Book{
		ID:        "test-book",
		Title:     "Test Book",
		Documents: []*smil.Document{doc},
		Resources: audio.NewLibrary(lo.Map(resources, func(p string, _ int) audio.Resource {
			return audio.Resource{Path: "OEBPS/" + p, Data: []byte(p)}
		})),
		Chapters: lo.Map(chapters, func(ch string, i int) Chapter {
			return Chapter{Index: i, Href: "OEBPS/" + ch, Title: fmt.Sprintf("Chapter %d", i+1)}
		}),
	}
}

// threeSegments is a chapter of [0,5), [5,12) and [12,20) on one resource.
func threeSegments() *Book {
	return newBook([]clip{
		{fragment: "p1", chapter: "ch1.xhtml", src: "audio/a.mp3", begin: "0s", end: "5s"},
		{fragment: "p2", chapter: "ch1.xhtml", src: "audio/a.mp3", begin: "5s", end: "12s"},
		{fragment: "p3", chapter: "ch1.xhtml", src: "audio/a.mp3", begin: "12s", end: "20s"},
	}, []string{"ch1.xhtml"}, "audio/a.mp3")
}

type fakeStream struct {
	backend  *fakeBackend
	id       string
	position float64
	playing  bool
	closed   bool
	ended    func()
}

func (s *fakeStream) Play() error {
	s.playing = true
	s.backend.log("play " + s.id)
	return nil
}

func (s *fakeStream) Pause() error {
	s.playing = false
	s.backend.log("pause " + s.id)
	return nil
}

func (s *fakeStream) Seek(seconds float64) error {
	s.position = seconds
	s.backend.log(fmt.Sprintf("seek %s %g", s.id, seconds))
	return nil
}

func (s *fakeStream) Position() (float64, error) {
	return s.position, nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	s.backend.log("close " + s.id)
	return nil
}

type fakeBackend struct {
	streams []*fakeStream
	events  []string
	failing map[string]bool
	closed  bool
}

func (b *fakeBackend) log(event string) {
	b.events = append(b.events, event)
}

func (b *fakeBackend) Open(id string, _ []byte, ended func()) (audio.Stream, error) {
	if b.failing[id] {
		return nil, errors.New("unsupported codec")
	}
	b.log("open " + id)
	stream := &fakeStream{backend: b, id: id, ended: ended}
	b.streams = append(b.streams, stream)
	return stream, nil
}

func (b *fakeBackend) Close() error {
	b.closed = true
	return nil
}

func (b *fakeBackend) current() *fakeStream {
	if len(b.streams) == 0 {
		return nil
	}
	return b.streams[len(b.streams)-1]
}

func (b *fakeBackend) count(prefix string) int {
	return lo.CountBy(b.events, func(e string) bool { return strings.HasPrefix(e, prefix) })
}

// fakeBridge records every command as a short string and answers
// visibility queries from the visible set. A nil visible set gives no
// answer.
type fakeBridge struct {
	calls   []string
	states  []bridge.State
	visible map[string]bool
}

func (b *fakeBridge) Highlight(fragmentID, activeClass, playingClass string) {
	b.calls = append(b.calls, "highlight "+fragmentID)
}

func (b *fakeBridge) ClearHighlight(activeClass, playingClass string) {
	b.calls = append(b.calls, "clear")
}

func (b *fakeBridge) EnsureVisible(fragmentID string, direction bridge.Direction) {
	b.calls = append(b.calls, fmt.Sprintf("ensure %s %s", fragmentID, direction))
}

func (b *fakeBridge) VisiblePosition(fragmentID string, all []string) (bridge.Position, bool) {
	if b.visible == nil {
		return bridge.Position{}, false
	}
	onPage := lo.Filter(all, func(f string, _ int) bool { return b.visible[f] })
	return bridge.Position{Index: lo.IndexOf(onPage, fragmentID), Count: len(onPage)}, true
}

func (b *fakeBridge) NextPage() {
	b.calls = append(b.calls, "nextPage")
}

func (b *fakeBridge) PushState(state bridge.State) {
	b.states = append(b.states, state)
}

func (b *fakeBridge) count(call string) int {
	return lo.Count(b.calls, call)
}

func (b *fakeBridge) highlights() []string {
	return lo.FilterMap(b.calls, func(c string, _ int) (string, bool) {
		return strings.CutPrefix(c, "highlight ")
	})
}

func (b *fakeBridge) lastState() bridge.State {
	return b.states[len(b.states)-1]
}

func (b *fakeBridge) reset() {
	b.calls = nil
	b.states = nil
}

// manualScheduler runs posted functions inline and fires timers on demand.
type manualScheduler struct {
	timers map[int]func()
	nextID int
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{timers: make(map[int]func())}
}

func (s *manualScheduler) Post(fn func()) {
	fn()
}

func (s *manualScheduler) Every(_ time.Duration, fn func()) func() {
	id := s.nextID
	s.nextID++
	s.timers[id] = fn
	return func() { delete(s.timers, id) }
}

func (s *manualScheduler) tick() {
	for _, fn := range lo.Values(s.timers) {
		fn()
	}
}

func (s *manualScheduler) active() int {
	return len(s.timers)
}

// harness wires an engine to fakes.
type harness struct {
	engine        *Engine
	backend       *fakeBackend
	bridge        *fakeBridge
	scheduler     *manualScheduler
	notifications []Notification
	progress      []Progress
}

func newHarness(book *Book) *harness {
	h := &harness{
		backend:   &fakeBackend{failing: map[string]bool{}},
		bridge:    &fakeBridge{},
		scheduler: newManualScheduler(),
	}

	h.engine = New(book, audio.NewService(h.backend), h.bridge, h.scheduler, Options{})
	h.engine.OnNotify(func(n Notification) { h.notifications = append(h.notifications, n) })
	h.engine.OnProgress(func(p Progress) { h.progress = append(h.progress, p) })
	h.engine.SurfaceReady(true)
	return h
}

// advanceTo moves the open stream to position and runs one timer tick.
func (h *harness) advanceTo(position float64) {
	h.backend.current().position = position
	h.scheduler.tick()
}

func (h *harness) notified(err error) int {
	return lo.CountBy(h.notifications, func(n Notification) bool { return errors.Is(n, err) })
}
