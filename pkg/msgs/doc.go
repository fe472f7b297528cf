// Package msgs defines the messages exchanged between host and device.
package msgs

// The shapes in this package are a frozen ABI: host and device builds must
// agree on every variant tag and every field width. Adding a variant changes
// the layout sizes below and therefore the maximum frame length, so new
// variants must fit within the reserved slack of the wire codec.
//
// Producer: host (Command), device (Response)
// Consumer: device (Command), host (Response)
