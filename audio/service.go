package audio

import (
	"io"
	"math"
	"sync/atomic"

	"github.com/readalong-cli/readalong/log"
)

// Service holds at most one open stream. Transport calls without an open
// stream are no-ops, and backend failures are logged rather than returned.
//
// Service is not safe for concurrent use except for ended notifications,
// which may arrive from any goroutine.
type Service struct {
	backend Backend
	stream  Stream
	id      string
	playing bool

	generation atomic.Uint64
	onEnded    []func(generation uint64)
}

// NewService creates a service playing through backend.
func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// OnEnded registers fn to be called when the open stream plays to its end.
// fn receives the generation of that stream and may be called from a
// goroutine other than the owner's.
func (s *Service) OnEnded(fn func(generation uint64)) {
	s.onEnded = append(s.onEnded, fn)
}

// Open disposes the current stream and opens data as id. It reports false
// when the backend fails, leaving no stream open.
func (s *Service) Open(id string, data []byte) bool {
	s.Close()

	gen := s.generation.Add(1)
	stream, err := s.backend.Open(id, data, func() { s.ended(gen) })
	if err != nil {
		log.With(log.Fields{"resource": id}).Errorf("open audio: %v", err)
		return false
	}

	s.stream = stream
	s.id = id
	log.With(log.Fields{"resource": id}).Debugf("audio session opened (%d bytes)", len(data))
	return true
}

func (s *Service) ended(gen uint64) {
	if s.generation.Load() != gen {
		return
	}
	for _, fn := range s.onEnded {
		fn(gen)
	}
}

// Generation identifies the current stream. It changes whenever a stream is
// opened or closed and may be read from any goroutine.
func (s *Service) Generation() uint64 {
	return s.generation.Load()
}

// IsOpen reports whether a stream is open.
func (s *Service) IsOpen() bool {
	return s.stream != nil
}

// ID returns the id of the open stream, or "" without one.
func (s *Service) ID() string {
	return s.id
}

// IsPlaying reports whether the open stream was last told to play.
func (s *Service) IsPlaying() bool {
	return s.stream != nil && s.playing
}

// Play resumes the open stream.
func (s *Service) Play() {
	if s.stream == nil {
		return
	}
	if err := s.stream.Play(); err != nil {
		log.With(log.Fields{"resource": s.id}).Warnf("play: %v", err)
		return
	}
	s.playing = true
}

func (s *Service) Pause() {
	if s.stream == nil {
		return
	}
	if err := s.stream.Pause(); err != nil {
		log.With(log.Fields{"resource": s.id}).Warnf("pause: %v", err)
	}
	s.playing = false
}

// Stop pauses and rewinds the open stream without closing it.
func (s *Service) Stop() {
	if s.stream == nil {
		return
	}
	s.Pause()
	s.Seek(0)
}

// Seek moves the open stream to an absolute position in seconds.
func (s *Service) Seek(seconds float64) {
	if s.stream == nil {
		return
	}
	if err := s.stream.Seek(seconds); err != nil {
		log.With(log.Fields{"resource": s.id}).Warnf("seek to %.3f: %v", seconds, err)
	}
}

// Position returns the playback position in seconds, or NaN when no stream
// is open or the backend cannot tell.
func (s *Service) Position() float64 {
	if s.stream == nil {
		return math.NaN()
	}
	pos, err := s.stream.Position()
	if err != nil {
		log.With(log.Fields{"resource": s.id}).Debugf("position: %v", err)
		return math.NaN()
	}
	return pos
}

// Close disposes the open stream, if any.
func (s *Service) Close() {
	if s.stream == nil {
		return
	}

	s.generation.Add(1)
	if err := s.stream.Close(); err != nil {
		log.With(log.Fields{"resource": s.id}).Warnf("close audio: %v", err)
	}
	s.stream = nil
	s.id = ""
	s.playing = false
}

// Dispose closes the open stream and releases the backend when it holds
// resources of its own.
func (s *Service) Dispose() {
	s.Close()
	if closer, ok := s.backend.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Warnf("close audio backend: %v", err)
		}
	}
}
