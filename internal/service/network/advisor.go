package network

import (
	"net/http"
	"strings"
	"sync"

	"PortfolioAssist/internal/domain/models"
)

// Client Hint headers carrying the browser's connection quality.
const (
	HeaderECT      = "ECT"
	HeaderSaveData = "Save-Data"
	HeaderAcceptCH = "Accept-CH"

	// AcceptCHValue asks browsers to send the hints above on later requests.
	AcceptCHValue = HeaderECT + ", " + HeaderSaveData
)

// DefaultSlowTypes are the effective connection types treated as slow.
var DefaultSlowTypes = []string{"slow-2g", "2g"}

// Advisor derives NetworkAdvice from connection signals and keeps the latest one.
type Advisor struct {
	slow map[string]struct{}

	mu      sync.Mutex
	current models.NetworkAdvice
}

// Option configures Advisor.
type Option func(*Advisor)

// WithSlowTypes replaces the set of slow effective types. An empty list keeps the defaults.
func WithSlowTypes(types ...string) Option {
	return func(a *Advisor) {
		if len(types) == 0 {
			return
		}
		a.slow = make(map[string]struct{}, len(types))
		for _, t := range types {
			a.slow[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
		}
	}
}

func NewAdvisor(opts ...Option) *Advisor {
	a := &Advisor{current: models.FallbackAdvice()}
	WithSlowTypes(DefaultSlowTypes...)(a)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Advise maps a signal to advice. A nil signal yields the fallback.
func (a *Advisor) Advise(sig *models.NetworkSignal) models.NetworkAdvice {
	if sig == nil {
		return models.FallbackAdvice()
	}
	effective := strings.ToLower(strings.TrimSpace(sig.EffectiveType))
	_, slow := a.slow[effective]

	advice := models.NetworkAdvice{
		IsSlowConnection: slow || sig.SaveData,
		ConnectionType:   effective,
		DataSaverMode:    sig.SaveData,
	}
	if advice.ConnectionType == "" {
		advice.ConnectionType = models.ConnectionUnknown
	}
	return advice
}

// Observe recomputes the advice for sig and reports whether it differs from the previous one.
func (a *Advisor) Observe(sig *models.NetworkSignal) (models.NetworkAdvice, bool) {
	advice := a.Advise(sig)

	a.mu.Lock()
	defer a.mu.Unlock()
	changed := advice != a.current
	a.current = advice
	return advice, changed
}

// Current returns the latest observed advice.
func (a *Advisor) Current() models.NetworkAdvice {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// SignalFromHeaders reads the ECT and Save-Data client hints. It returns nil when neither is present.
func SignalFromHeaders(h http.Header) *models.NetworkSignal {
	ect := strings.TrimSpace(h.Get(HeaderECT))
	saveData := strings.TrimSpace(h.Get(HeaderSaveData))
	if ect == "" && saveData == "" {
		return nil
	}
	return &models.NetworkSignal{
		EffectiveType: ect,
		SaveData:      strings.EqualFold(saveData, "on"),
	}
}
