package audio

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/readalong-cli/readalong/filesystem"
	"github.com/readalong-cli/readalong/log"
	"github.com/readalong-cli/readalong/util"
	"github.com/readalong-cli/readalong/where"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	loadWaitRetries   = 40
	loadWaitDelay     = 50 * time.Millisecond
)

// MPV is a Backend that plays audio through an mpv process driven over its
// JSON IPC socket. The process is started on first use and reused for every
// stream; each Open replaces the loaded file.
type MPV struct {
	binary     string
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	events     *eventListener
	mu         sync.Mutex // serializes socket round trips

	endedMu sync.Mutex
	ended   func()
}

// NewMPV creates a backend launching binary (usually "mpv").
func NewMPV(binary string) *MPV {
	if binary == "" {
		binary = "mpv"
	}
	return &MPV{binary: binary}
}

// Open stages data in the temp directory, loads it paused and waits until
// mpv reports a position so that an immediate seek is honoured.
func (m *MPV) Open(id string, data []byte, ended func()) (Stream, error) {
	if err := m.ensureRunning(); err != nil {
		return nil, err
	}

	staged := filepath.Join(where.Temp(), util.SanitizeFilename(id))
	if err := filesystem.API().WriteFile(staged, data, 0644); err != nil {
		return nil, fmt.Errorf("stage %s: %w", id, err)
	}

	m.setEnded(nil)
	if _, err := m.sendCommand("loadfile", staged, "replace"); err != nil {
		_ = util.Delete(staged)
		return nil, fmt.Errorf("load %s: %w", id, err)
	}

	if err := m.waitForLoad(); err != nil {
		_ = util.Delete(staged)
		return nil, err
	}

	m.setEnded(ended)
	return &mpvStream{mpv: m, staged: staged}, nil
}

func (m *MPV) setEnded(fn func()) {
	m.endedMu.Lock()
	defer m.endedMu.Unlock()
	m.ended = fn
}

func (m *MPV) onEOF() {
	m.endedMu.Lock()
	fn := m.ended
	m.endedMu.Unlock()

	if fn != nil {
		fn()
	}
}

func (m *MPV) running() bool {
	if m.cmd == nil {
		return false
	}
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

func (m *MPV) ensureRunning() error {
	if m.running() {
		return nil
	}

	if m.socketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("generate socket name: %w", err)
		}
		m.socketPath = filepath.Join(os.TempDir(), fmt.Sprintf("readalong-%x.sock", randomBytes))
	}

	m.cmd = exec.Command(m.binary,
		"--no-terminal",
		"--really-quiet",
		"--no-video",
		"--idle=yes",
		"--pause=yes",
		"--keep-open=yes",
		"--force-window=no",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
	)
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	exited := make(chan struct{})
	m.exited = exited
	cmd := m.cmd
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	if err := m.waitForSocket(); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.events = newEventListener(m.socketPath, m.onEOF)
	if err := m.events.Start(); err != nil {
		return err
	}

	log.Infof("mpv started (pid %d) on %s", m.cmd.Process.Pid, m.socketPath)
	return nil
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return errors.New("mpv exited before socket was ready")
		default:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

// waitForLoad polls time-pos, which becomes available once the file is loaded.
func (m *MPV) waitForLoad() error {
	for i := 0; i < loadWaitRetries; i++ {
		if _, err := m.getFloatProperty("time-pos"); err == nil {
			return nil
		}
		time.Sleep(loadWaitDelay)
	}
	return errors.New("mpv did not load the file in time")
}

func (m *MPV) getFloatProperty(name string) (float64, error) {
	data, err := m.sendCommand("get_property", name)
	if err != nil {
		return 0, err
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}
	return val, nil
}

// Close shuts down the mpv process and removes its socket.
func (m *MPV) Close() error {
	if m.events != nil {
		m.events.Stop()
	}

	if !m.running() {
		return nil
	}

	_, _ = m.sendCommand("quit")

	select {
	case <-m.exited:
	case <-time.After(3 * time.Second):
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	return nil
}

type mpvStream struct {
	mpv    *MPV
	staged string
}

func (s *mpvStream) Play() error {
	_, err := s.mpv.sendCommand("set_property", "pause", false)
	return err
}

func (s *mpvStream) Pause() error {
	_, err := s.mpv.sendCommand("set_property", "pause", true)
	return err
}

func (s *mpvStream) Seek(seconds float64) error {
	_, err := s.mpv.sendCommand("seek", seconds, "absolute+exact")
	return err
}

func (s *mpvStream) Position() (float64, error) {
	return s.mpv.getFloatProperty("time-pos")
}

// Close unloads the file and removes its staged copy.
func (s *mpvStream) Close() error {
	s.mpv.setEnded(nil)

	var err error
	if s.mpv.running() {
		if _, stopErr := s.mpv.sendCommand("stop"); stopErr != nil && !strings.Contains(stopErr.Error(), "connect") {
			err = stopErr
		}
	}

	if rmErr := util.Delete(s.staged); rmErr != nil && !os.IsNotExist(rmErr) {
		err = errors.Join(err, rmErr)
	}
	return err
}
