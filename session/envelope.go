// Package session adapts one viewer's duplex connection to the capture
// engine: it turns emitted frames into outbound envelopes and dispatches
// inbound envelopes to the appropriate port.
package session

import "encoding/json"

// InboundKind discriminates the sum type parsed from a viewer's inbound
// message.
type InboundKind int

const (
	InboundCommandOrUpload InboundKind = iota
	InboundMouseEvent
	InboundKeyboardEvent
	InboundQualityUpdate
	InboundChat
)

// Dimensions is the width/height pair carried in outbound screen-update
// envelopes.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MouseEvent is a remote pointer action reported in the viewer's own
// coordinate space (ScreenWidth/ScreenHeight), to be remapped onto the
// real display before injection.
type MouseEvent struct {
	X, Y                      int
	EventType                 string
	ScreenWidth, ScreenHeight int
}

// KeyboardEvent is a single remote key press.
type KeyboardEvent struct {
	Key      string
	Modifier string
}

// QualityUpdate is a viewer-requested change to one or more quality knobs.
// A nil field means "leave this one alone."
type QualityUpdate struct {
	Width       *int
	JPEGQuality *int
	FPS         *int
}

// Inbound is the parsed sum type over every shape a viewer's message can
// take. Exactly the field matching Kind is populated.
type Inbound struct {
	Kind     InboundKind
	Mouse    MouseEvent
	Keyboard KeyboardEvent
	Quality  QualityUpdate
	Text     string
	Raw      []byte
}

type rawEnvelope struct {
	Type         string `json:"type"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	EventType    string `json:"eventType"`
	ScreenWidth  int    `json:"screenWidth"`
	ScreenHeight int    `json:"screenHeight"`
	Key          string `json:"key"`
	Modifier     string `json:"modifier"`
	Width        *int   `json:"width"`
	JPEGQuality  *int   `json:"jpegQuality"`
	FPS          *int   `json:"fps"`
}

// ParseBinary dispatches a binary inbound message. A recognized `type`
// field produces the matching Inbound kind. Deliberately, an unparseable
// payload and a parseable-but-unrecognized `type` are treated identically:
// both fall through to the command-or-upload branch, which itself decides
// (via SupportsCommand) whether the payload is editor-command text or an
// opaque upload. This mirrors the wire protocol's own dynamic dispatch,
// where "not a known envelope" and "not JSON at all" are the same case.
func ParseBinary(data []byte) Inbound {
	var env rawEnvelope
	if err := json.Unmarshal(data, &env); err == nil {
		switch env.Type {
		case "mouse-event":
			return Inbound{Kind: InboundMouseEvent, Mouse: MouseEvent{
				X: env.X, Y: env.Y, EventType: env.EventType,
				ScreenWidth: env.ScreenWidth, ScreenHeight: env.ScreenHeight,
			}}
		case "keyboard-event":
			return Inbound{Kind: InboundKeyboardEvent, Keyboard: KeyboardEvent{Key: env.Key, Modifier: env.Modifier}}
		case "quality-update":
			return Inbound{Kind: InboundQualityUpdate, Quality: QualityUpdate{Width: env.Width, JPEGQuality: env.JPEGQuality, FPS: env.FPS}}
		}
	}
	return Inbound{Kind: InboundCommandOrUpload, Text: string(data), Raw: data}
}

// ParseText dispatches a text inbound message: a parseable quality-update
// envelope takes that branch; everything else is treated as chat text.
func ParseText(text string) Inbound {
	var env rawEnvelope
	if err := json.Unmarshal([]byte(text), &env); err == nil && env.Type == "quality-update" {
		return Inbound{Kind: InboundQualityUpdate, Quality: QualityUpdate{Width: env.Width, JPEGQuality: env.JPEGQuality, FPS: env.FPS}}
	}
	return Inbound{Kind: InboundChat, Text: text}
}

// ScreenUpdateEnvelope is the outbound envelope for a frame small enough
// to deliver whole.
type ScreenUpdateEnvelope struct {
	Type       string     `json:"type"`
	Image      string     `json:"image"`
	Dimensions Dimensions `json:"dimensions"`
}

// ScreenUpdateChunkEnvelope is one piece of a frame too large to deliver
// whole.
type ScreenUpdateChunkEnvelope struct {
	Type        string     `json:"type"`
	Chunk       string     `json:"chunk"`
	ChunkIndex  int        `json:"chunkIndex"`
	TotalChunks int        `json:"totalChunks"`
	Dimensions  Dimensions `json:"dimensions"`
	IsLastChunk bool       `json:"isLastChunk"`
}

// ErrorEnvelope reports a processing failure back to the viewer.
type ErrorEnvelope struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
