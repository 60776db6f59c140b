package models

// ConnectionUnknown is reported when the client exposes no connection type.
const ConnectionUnknown = "unknown"

// NetworkSignal is what a browser reports about its connection
// (navigator.connection or the ECT / Save-Data client hints).
type NetworkSignal struct {
	EffectiveType string `json:"effectiveType"`
	SaveData      bool   `json:"saveData"`
}

// NetworkAdvice is the derived connection quality.
type NetworkAdvice struct {
	IsSlowConnection bool   `json:"isSlowConnection"`
	ConnectionType   string `json:"connectionType"`
	DataSaverMode    bool   `json:"dataSaverMode"`
}

// FallbackAdvice is used when no signal is available.
func FallbackAdvice() NetworkAdvice {
	return NetworkAdvice{ConnectionType: ConnectionUnknown}
}

// ReduceMotion reports whether animations should be skipped.
func (a NetworkAdvice) ReduceMotion() bool {
	return a.IsSlowConnection || a.DataSaverMode
}
