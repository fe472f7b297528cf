package msgs

import "fmt"

// ResponseTag is the wire tag of a Response variant.
type ResponseTag uint32

// Response tags. The values are part of the ABI.
const (
	TagOK ResponseTag = iota
	TagRejected
	TagOKRecovered
)

// Response is returned by the device for every Command it receives.
// Exactly one of OK, Rejected, OKRecovered.
type Response interface {
	ResponseTag() ResponseTag
}

// OK means the command was accepted and processed as received.
// Payload is nil when the command has no return value.
type OK struct {
	Payload Payload
}

// ResponseTag implements Response.
func (OK) ResponseTag() ResponseTag { return TagOK }

func (r OK) String() string {
	if r.Payload == nil {
		return "Ok(None)"
	}
	return fmt.Sprintf("Ok(%v)", r.Payload)
}

// Rejected means the command was not processed.
type Rejected struct {
	Reason RejectReason
}

// ResponseTag implements Response.
func (Rejected) ResponseTag() ResponseTag { return TagRejected }

func (r Rejected) String() string { return fmt.Sprintf("Rejected(%s)", r.Reason) }

// OKRecovered means the frame was corrupted but Command was recovered from it
// and processed.
type OKRecovered struct {
	Payload Payload
	Command Command
}

// ResponseTag implements Response.
func (OKRecovered) ResponseTag() ResponseTag { return TagOKRecovered }

func (r OKRecovered) String() string {
	if r.Payload == nil {
		return fmt.Sprintf("OkRecovered(None, %v)", r.Command)
	}
	return fmt.Sprintf("OkRecovered(%v, %v)", r.Payload, r.Command)
}

// IsOK tells whether the response is a positive one.
func IsOK(r Response) bool {
	switch r.(type) {
	case OK, OKRecovered:
		return true
	}
	return false
}

// PayloadOf returns the payload of a positive response, nil otherwise.
func PayloadOf(r Response) Payload {
	switch resp := r.(type) {
	case OK:
		return resp.Payload
	case OKRecovered:
		return resp.Payload
	}
	return nil
}

// PayloadTag is the wire tag of a Payload variant.
type PayloadTag uint32

// Payload tags. The values are part of the ABI.
const (
	TagCounterValue PayloadTag = iota
)

// Payload is a command-specific return value.
type Payload interface {
	PayloadTag() PayloadTag
}

// CounterValue carries the device-internal counter.
type CounterValue struct {
	Value uint64
}

// PayloadTag implements Payload.
func (CounterValue) PayloadTag() PayloadTag { return TagCounterValue }

func (p CounterValue) String() string { return fmt.Sprintf("Counter(%d)", p.Value) }

// RejectReason tells why a command was rejected.
type RejectReason uint32

// Reject reasons. The values are part of the ABI.
const (
	// CorruptedFrame: the received frame was invalid.
	CorruptedFrame RejectReason = iota
	// IllegalCommand: the command is not allowed in the current device state.
	IllegalCommand
	// NotImplemented: the command is not implemented by the device.
	NotImplemented
	// InternalError: unspecified device-side fault. Prefer a specific reason.
	InternalError

	numRejectReasons
)

var rejectReasonNames = [...]string{
	CorruptedFrame: "CorruptedFrame",
	IllegalCommand: "IllegalCommand",
	NotImplemented: "NotImplemented",
	InternalError:  "InternalError",
}

// IsValid checks the reason is one of the known values.
func (r RejectReason) IsValid() bool {
	return r < numRejectReasons
}

func (r RejectReason) String() string {
	if r.IsValid() {
		return rejectReasonNames[r]
	}
	return fmt.Sprintf("RejectReason(%d)", uint32(r))
}
