package models

import "time"

// SyncReport is one background sync computation.
type SyncReport struct {
	ViewID  string    `json:"viewId"`
	At      time.Time `json:"at"`
	Total   float64   `json:"total"`
	Count   int       `json:"count"`
	Average float64   `json:"average"`
}

// Websocket message types.
const (
	MessageSnapshot = "snapshot"
	MessageFrame    = "frame"
	MessageNetwork  = "network"
	MessageSync     = "sync"
)

// ViewMessage is the envelope exchanged with a browser view.
type ViewMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Frame is one rendered chart image.
type Frame struct {
	Progress float64 `json:"progress"`
	SVG      string  `json:"svg"`
}

// InboundMessage is what a view sends to the server.
type InboundMessage struct {
	Type          string `json:"type"`
	EffectiveType string `json:"effectiveType"`
	SaveData      bool   `json:"saveData"`
}
