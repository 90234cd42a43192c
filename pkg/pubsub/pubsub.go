package pubsub

import (
	"context"
	"encoding/json"
)

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic (e.g., "build_status", "frames")
	Type    string          `json:"type"`    // Event type (e.g., "scanning", "building", "frame")
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// BuildStatus reports graph build progress to the frontend
type BuildStatus struct {
	State      string `json:"state"`      // scanning, fetching, building, ready, error
	Message    string `json:"message"`    // Human-readable status message
	Generation uint64 `json:"generation"` // Build generation this status belongs to
	Step       int    `json:"step"`       // Current step number (1-based)
	Total      int    `json:"total"`      // Total number of steps
}

// GraphSummary is the lightweight build-completion payload
type GraphSummary struct {
	Generation uint64 `json:"generation"`
	NodeCount  int    `json:"node_count"`
	EdgeCount  int    `json:"edge_count"`
	CycleCount int    `json:"cycle_count"`
	Complete   bool   `json:"complete"`
}

// FrameNode is one node's render state within a frame event
type FrameNode struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Radius  float64 `json:"radius"`
	Opacity float64 `json:"opacity"`
	Links   int     `json:"links"`
}

// FrameEdge is one edge's render state within a frame event. Edges whose
// endpoints are not both revealed carry opacity 0 and are omitted.
type FrameEdge struct {
	Source  string  `json:"source"`
	Target  string  `json:"target"`
	Opacity float64 `json:"opacity"`
}

// FrameCamera is the view transform state included in a frame event. The
// frontend renders node positions through it so the drawn view tracks
// server-side pan and zoom.
type FrameCamera struct {
	PanX    float64 `json:"pan_x"`
	PanY    float64 `json:"pan_y"`
	Zoom    float64 `json:"zoom"`
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
}

// FrameData is the per-frame snapshot published on the frames topic.
// Hovered names the node under the pointer ("" when none) and Highlight its
// edge-connected neighbors; together they drive highlight/dim rendering.
type FrameData struct {
	Generation    uint64      `json:"generation"`
	RevealedCount int         `json:"revealed_count"`
	Settled       bool        `json:"settled"`
	Camera        FrameCamera `json:"camera"`
	Hovered       string      `json:"hovered"`
	Highlight     []string    `json:"highlight"`
	Nodes         []FrameNode `json:"nodes"`
	Edges         []FrameEdge `json:"edges"`
}
