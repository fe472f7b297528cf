package msgs

// Fixed-width layout sizes in bytes. Every enum is a 4-byte tag followed by
// the fields of its largest variant, an optional value is a 1-byte tag
// followed by the value.
const (
	TagSize       = 4
	OptionTagSize = 1

	DateTimeSize = 4 * 7
	// FunctionSize is bounded by EnableBlink.
	FunctionSize = TagSize + 8
	// CommandSize is bounded by Schedule.
	CommandSize = TagSize + FunctionSize + DateTimeSize
	// PayloadSize is bounded by CounterValue.
	PayloadSize      = TagSize + 8
	RejectReasonSize = TagSize
	// ResponseSize is bounded by OKRecovered.
	ResponseSize = TagSize + OptionTagSize + PayloadSize + CommandSize
)
