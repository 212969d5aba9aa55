package audio

// Backend opens audio data for playback. Implementations decode and output
// the audio; the engine only controls transport.
type Backend interface {
	// Open prepares data for playback, paused at its start. ended is called,
	// possibly from another goroutine, when playback reaches the end of data.
	Open(id string, data []byte, ended func()) (Stream, error)
}

// Stream is a single opened audio resource.
type Stream interface {
	Play() error
	Pause() error
	Seek(seconds float64) error
	// Position reports the playback position in seconds.
	Position() (float64, error)
	Close() error
}
