package audio

import (
	"bufio"
	"encoding/json"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// serveOnce reads one command from conn and answers with the given lines,
// replacing {id} with the command's request id.
func serveOnce(conn net.Conn, lines ...string) <-chan ipcCommand {
	received := make(chan ipcCommand, 1)
	go func() {
		defer conn.Close()

		reader := bufio.NewReader(conn)
		line, err := reader.ReadBytes('\n')
		if err != nil {
			close(received)
			return
		}

		var cmd ipcCommand
		_ = json.Unmarshal(line, &cmd)
		received <- cmd

		for _, l := range lines {
			reply := strings.ReplaceAll(l, "{id}", strconv.FormatInt(cmd.RequestID, 10))
			if _, err := io.WriteString(conn, reply+"\n"); err != nil {
				return
			}
		}
	}()
	return received
}

func TestRoundTrip(t *testing.T) {
	Convey("Given an mpv-like peer", t, func() {
		client, server := net.Pipe()
		defer client.Close()

		Convey("The reply matching the request id is returned after skipping events", func() {
			received := serveOnce(server,
				`{"event":"playback-restart"}`,
				`not json`,
				`{"data":12.5,"error":"success","request_id":{id}}`,
			)

			data, err := roundTrip(client, []interface{}{"get_property", "time-pos"})
			So(err, ShouldBeNil)
			So(data, ShouldEqual, 12.5)

			cmd := <-received
			So(cmd.Command, ShouldResemble, []interface{}{"get_property", "time-pos"})
		})

		Convey("An mpv error is reported as mpvError", func() {
			serveOnce(server, `{"error":"property unavailable","request_id":{id}}`)

			_, err := roundTrip(client, []interface{}{"get_property", "time-pos"})
			So(err, ShouldHaveSameTypeAs, mpvError(""))
			So(err.Error(), ShouldContainSubstring, "property unavailable")
		})

		Convey("A closed connection without a reply is an error", func() {
			serveOnce(server)

			_, err := roundTrip(client, []interface{}{"stop"})
			So(err, ShouldNotBeNil)
		})
	})
}
