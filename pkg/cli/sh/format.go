package sh

import (
	"encoding/json"
	"fmt"

	"github.com/robotalks/serialproto/pkg/msgs"
)

// ResponseJSON is the JSON form of a response.
type ResponseJSON struct {
	Status  string  `json:"status"`
	Counter *uint64 `json:"counter,omitempty"`
	Reason  string  `json:"reason,omitempty"`
	Command string  `json:"command,omitempty"`
}

// FormatJSON encodes resp as JSON.
func FormatJSON(resp msgs.Response) ([]byte, error) {
	var out ResponseJSON
	switch r := resp.(type) {
	case msgs.OK:
		out.Status = "ok"
	case msgs.OKRecovered:
		out.Status = "ok_recovered"
		out.Command = fmt.Sprint(r.Command)
	case msgs.Rejected:
		out.Status = "rejected"
		out.Reason = r.Reason.String()
	default:
		return nil, fmt.Errorf("unknown response %v", resp)
	}
	if counter, ok := msgs.PayloadOf(resp).(msgs.CounterValue); ok {
		out.Counter = &counter.Value
	}
	return json.Marshal(&out)
}

// FormatResponse formats resp for display.
func FormatResponse(resp msgs.Response) string {
	if ok, isOK := resp.(msgs.OK); isOK && ok.Payload == nil {
		return "OK"
	}
	return fmt.Sprint(resp)
}
