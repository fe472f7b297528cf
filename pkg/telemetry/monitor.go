package telemetry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang/protobuf/proto"

	tmsgs "github.com/robotalks/serialproto/pkg/telemetry/msgs"
)

// Record is a decoded telemetry message.
type Record struct {
	DeviceID string
	Kind     string
	// Meta is set for meta records. It is nil when the device went away.
	Meta    *tmsgs.Meta
	Message proto.Message
}

// ParseRecord decodes payload received on a topic relative to the
// queue prefix.
func ParseRecord(topic string, payload []byte) (Record, error) {
	items := strings.Split(topic, "/")
	if len(items) < 2 {
		return Record{}, fmt.Errorf("invalid telemetry topic %q", topic)
	}
	rec := Record{
		DeviceID: items[len(items)-2],
		Kind:     items[len(items)-1],
	}
	if rec.Kind == tmsgs.TopicMeta {
		if len(payload) == 0 {
			return rec, nil
		}
		rec.Meta = &tmsgs.Meta{}
		if err := json.Unmarshal(payload, rec.Meta); err != nil {
			return rec, fmt.Errorf("decode %s: %w", topic, err)
		}
		return rec, nil
	}
	msg, err := tmsgs.Decode(topic, payload)
	if err != nil {
		return rec, err
	}
	rec.Message = msg
	return rec, nil
}

// Watch subscribes to telemetry of deviceID, or of all devices when
// deviceID is empty. Undecodable payloads are passed to handler with
// the error.
func Watch(q *Queue, deviceID string, handler func(Record, error)) *Subscription {
	if deviceID == "" {
		deviceID = "+"
	}
	return q.Sub(deviceID+"/+", func(topic string, payload []byte) {
		handler(ParseRecord(topic, payload))
	})
}
