package cmd

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRecordSchema(t *testing.T) {
	Convey("Given the history record schema", t, func() {
		data, err := json.Marshal(recordSchema())
		So(err, ShouldBeNil)

		var schema map[string]any
		So(json.Unmarshal(data, &schema), ShouldBeNil)

		Convey("It describes the record fields", func() {
			properties, ok := schema["properties"].(map[string]any)
			So(ok, ShouldBeTrue)
			So(properties, ShouldContainKey, "book_id")
			So(properties, ShouldContainKey, "progress")
			So(properties, ShouldContainKey, "updated_at")
		})

		Convey("Optional progress values are nullable", func() {
			So(string(data), ShouldContainSubstring, `"positionSeconds":{"anyOf":[{"type":"number"},{"type":"null"}]}`)
			So(string(data), ShouldContainSubstring, `"fragmentId":{"anyOf":[{"type":"string"},{"type":"null"}]}`)
		})
	})
}
