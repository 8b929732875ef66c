package models

// WakeStatus reports how a wake request ended.
type WakeStatus string

const (
	// WakeStatusSent means the magic packet was handed to the socket layer.
	WakeStatusSent WakeStatus = "sent"
	// WakeStatusFailed means the socket could not be opened or the write failed.
	WakeStatusFailed WakeStatus = "failed"
)

// WakeRequest holds the parameters of a single Wake-on-LAN send.
type WakeRequest struct {
	MACAddress string // colon-separated or bare, required
	Address    string // destination IP literal, empty for broadcast
	Port       string // decimal UDP port, empty for the default
	OnComplete func(WakeResult)
	Extra      map[string]any // returned unchanged in the result
}

// WakeResult is delivered to WakeRequest.OnComplete exactly once.
type WakeResult struct {
	MACAddress string // colon-stripped form used for the packet
	Address    string
	Port       int
	Status     WakeStatus
	Err        error
	Extra      map[string]any
	Host       string // configured host name, set by the runner; never taken from Extra
}

// Fields flattens the result into a single map. Extra values never replace
// the built-in keys.
func (r WakeResult) Fields() map[string]any {
	fields := make(map[string]any, len(r.Extra)+5)
	for k, v := range r.Extra {
		fields[k] = v
	}
	fields["macAddress"] = r.MACAddress
	fields["address"] = r.Address
	fields["port"] = r.Port
	fields["status"] = string(r.Status)
	if r.Err != nil {
		fields["error"] = r.Err.Error()
	}
	return fields
}
