// Package msgs defines the telemetry payloads published by the device
// emulator. Payloads are protobuf encoded.
package msgs

import (
	"fmt"
	"strings"

	"github.com/golang/protobuf/proto"
)

// Topic suffixes under <prefix><device-id>/.
const (
	TopicMeta     = "meta"
	TopicStatus   = "status"
	TopicExchange = "exchange"
	TopicFired    = "fired"
)

// Meta is the retained JSON document announcing a device.
type Meta struct {
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
	Recover     bool   `json:"recover,omitempty"`
	StartedAt   int64  `json:"started_at,omitempty"`
}

// DeviceStatus is a snapshot of the device state and pipeline counters.
type DeviceStatus struct {
	DeviceId         string   `protobuf:"bytes,1,opt,name=device_id,json=deviceId,proto3" json:"device_id,omitempty"`
	Timestamp        int64    `protobuf:"varint,2,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Counter          uint64   `protobuf:"varint,3,opt,name=counter,proto3" json:"counter,omitempty"`
	BlinkIntervalMs  uint64   `protobuf:"varint,4,opt,name=blink_interval_ms,json=blinkIntervalMs,proto3" json:"blink_interval_ms,omitempty"`
	RgbEnabled       bool     `protobuf:"varint,5,opt,name=rgb_enabled,json=rgbEnabled,proto3" json:"rgb_enabled,omitempty"`
	ReferenceTime    string   `protobuf:"bytes,6,opt,name=reference_time,json=referenceTime,proto3" json:"reference_time,omitempty"`
	Schedule         []string `protobuf:"bytes,7,rep,name=schedule,proto3" json:"schedule,omitempty"`
	CommandsReceived uint64   `protobuf:"varint,8,opt,name=commands_received,json=commandsReceived,proto3" json:"commands_received,omitempty"`
	FramesRejected   uint64   `protobuf:"varint,9,opt,name=frames_rejected,json=framesRejected,proto3" json:"frames_rejected,omitempty"`
	CommandsDropped  uint64   `protobuf:"varint,10,opt,name=commands_dropped,json=commandsDropped,proto3" json:"commands_dropped,omitempty"`
	ResponsesSent    uint64   `protobuf:"varint,11,opt,name=responses_sent,json=responsesSent,proto3" json:"responses_sent,omitempty"`
	TxErrors         uint64   `protobuf:"varint,12,opt,name=tx_errors,json=txErrors,proto3" json:"tx_errors,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *DeviceStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *DeviceStatus) Reset() { *m = DeviceStatus{} }

// String implements proto.Message.
func (m *DeviceStatus) String() string { return proto.CompactTextString(m) }

// ExchangeRecord logs one command and the response it got.
type ExchangeRecord struct {
	Timestamp int64  `protobuf:"varint,1,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Command   string `protobuf:"bytes,2,opt,name=command,proto3" json:"command,omitempty"`
	Response  string `protobuf:"bytes,3,opt,name=response,proto3" json:"response,omitempty"`
	Ok        bool   `protobuf:"varint,4,opt,name=ok,proto3" json:"ok,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *ExchangeRecord) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ExchangeRecord) Reset() { *m = ExchangeRecord{} }

// String implements proto.Message.
func (m *ExchangeRecord) String() string { return proto.CompactTextString(m) }

// FiredRecord logs scheduled functions executed in one scheduler tick.
type FiredRecord struct {
	Timestamp int64    `protobuf:"varint,1,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Functions []string `protobuf:"bytes,2,rep,name=functions,proto3" json:"functions,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *FiredRecord) ProtoMessage() {}

// Reset implements proto.Message.
func (m *FiredRecord) Reset() { *m = FiredRecord{} }

// String implements proto.Message.
func (m *FiredRecord) String() string { return proto.CompactTextString(m) }

// NewMessageForTopic creates an empty message for the kind encoded in
// the last topic segment.
func NewMessageForTopic(topic string) (proto.Message, error) {
	kind := topic
	if pos := strings.LastIndex(topic, "/"); pos >= 0 {
		kind = topic[pos+1:]
	}
	switch kind {
	case TopicStatus:
		return &DeviceStatus{}, nil
	case TopicExchange:
		return &ExchangeRecord{}, nil
	case TopicFired:
		return &FiredRecord{}, nil
	}
	return nil, fmt.Errorf("unknown telemetry topic %q", topic)
}

// Decode decodes payload received on topic.
func Decode(topic string, payload []byte) (proto.Message, error) {
	msg, err := NewMessageForTopic(topic)
	if err != nil {
		return nil, err
	}
	if err := proto.Unmarshal(payload, msg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", topic, err)
	}
	return msg, nil
}
