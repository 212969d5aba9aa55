package audio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/readalong-cli/readalong/log"
)

// eofObserverID tags the eof-reached observation on the event connection.
const eofObserverID = 1

// eventListener keeps a persistent IPC connection open and reports when the
// loaded file reaches its end. Property observations belong to the
// connection that registered them, so they are issued on this one.
type eventListener struct {
	socketPath string
	onEOF      func()

	mu   sync.Mutex
	conn net.Conn
}

func newEventListener(socketPath string, onEOF func()) *eventListener {
	return &eventListener{socketPath: socketPath, onEOF: onEOF}
}

// Start connects, subscribes to eof-reached and begins the read loop.
func (el *eventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.conn != nil {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	payload, err := json.Marshal(ipcCommand{Command: []interface{}{"observe_property", eofObserverID, "eof-reached"}})
	if err != nil {
		conn.Close()
		return fmt.Errorf("marshal observe: %w", err)
	}
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		conn.Close()
		return fmt.Errorf("observe eof-reached: %w", err)
	}

	el.conn = conn
	go el.readLoop(conn)

	log.Debugf("mpv event listener started on %s", el.socketPath)
	return nil
}

// Stop closes the connection, which also ends the read loop.
func (el *eventListener) Stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.conn != nil {
		_ = el.conn.Close()
		el.conn = nil
	}
}

func (el *eventListener) readLoop(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}

		if msg.Event == "property-change" && msg.Name == "eof-reached" {
			if reached, _ := msg.Data.(bool); reached && el.onEOF != nil {
				el.onEOF()
			}
		}
	}

	if err := scanner.Err(); err != nil {
		log.Debugf("mpv event listener stopped: %v", err)
	}
}
