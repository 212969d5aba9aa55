package audio

import "errors"

type fakeStream struct {
	id       string
	playing  bool
	position float64
	closed   bool
	failPos  bool
}

func (s *fakeStream) Play() error  { s.playing = true; return nil }
func (s *fakeStream) Pause() error { s.playing = false; return nil }
func (s *fakeStream) Seek(seconds float64) error {
	s.position = seconds
	return nil
}

func (s *fakeStream) Position() (float64, error) {
	if s.failPos {
		return 0, errors.New("position unavailable")
	}
	return s.position, nil
}

func (s *fakeStream) Close() error { s.closed = true; return nil }

type fakeBackend struct {
	streams []*fakeStream
	ended   []func()
	fail    bool
	closed  bool
}

func (b *fakeBackend) Open(id string, _ []byte, ended func()) (Stream, error) {
	if b.fail {
		return nil, errors.New("cannot decode")
	}
	stream := &fakeStream{id: id}
	b.streams = append(b.streams, stream)
	b.ended = append(b.ended, ended)
	return stream, nil
}

func (b *fakeBackend) Close() error {
	b.closed = true
	return nil
}
