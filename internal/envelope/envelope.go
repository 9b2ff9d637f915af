// Package envelope defines the self-describing message shape carried over
// the broker: command, telemetry, and response payloads wrapped in a single
// tagged envelope, plus the generator that stamps source/version/timestamp.
package envelope

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// MessageType identifies the three message shapes the mesh exchanges.
type MessageType string

const (
	MessageTypeCommand   MessageType = "command"
	MessageTypeTelemetry MessageType = "telemetry"
	MessageTypeResponse  MessageType = "response"
	// MessageTypeAll is never put on the wire; it is a handler-registration
	// sentinel meaning "invoke this handler for every message type".
	MessageTypeAll MessageType = "*"
)

// Envelope is the on-wire unit published and consumed across the mesh.
type Envelope struct {
	MessageType   MessageType
	Timestamp     time.Time
	Source        string
	Version       string
	Kind          string // commandType | telemetryType | responseType
	Payload       *structpb.Struct
	CorrelationID string
}

const protocolVersion = "1.0"

// Generator stamps source/version/timestamp on every envelope a service
// produces, mirroring hamilton's MessageGenerator.
type Generator struct {
	source string
}

func NewGenerator(source string) *Generator {
	return &Generator{source: source}
}

func (g *Generator) Command(kind string, parameters *structpb.Struct) *Envelope {
	return g.build(MessageTypeCommand, kind, parameters, "")
}

func (g *Generator) Telemetry(kind string, data *structpb.Struct, corrID string) *Envelope {
	return g.build(MessageTypeTelemetry, kind, data, corrID)
}

func (g *Generator) Response(kind string, data *structpb.Struct, corrID string) *Envelope {
	return g.build(MessageTypeResponse, kind, data, corrID)
}

func (g *Generator) build(mt MessageType, kind string, payload *structpb.Struct, corrID string) *Envelope {
	if payload == nil {
		payload = &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}
	return &Envelope{
		MessageType:   mt,
		Timestamp:     time.Now().UTC(),
		Source:        g.source,
		Version:       protocolVersion,
		Kind:          kind,
		Payload:       payload,
		CorrelationID: corrID,
	}
}

// ToProto folds the envelope into a single structpb.Struct, the wire type
// this mesh exchanges over gRPC. structpb.Struct is itself a ready-built
// proto.Message shipped by google.golang.org/protobuf, so envelopes need no
// protoc-generated type of their own: the envelope fields live alongside the
// payload bag, one level up, under a "payload" key.
func (e *Envelope) ToProto() *structpb.Struct {
	s, _ := structpb.NewStruct(map[string]any{
		"message_type":   string(e.MessageType),
		"timestamp":      e.Timestamp.Format(time.RFC3339Nano),
		"source":         e.Source,
		"version":        e.Version,
		"kind":           e.Kind,
		"correlation_id": e.CorrelationID,
	})
	s.Fields["payload"] = structpb.NewStructValue(e.Payload)
	return s
}

// FromProto reconstructs an Envelope from its wire representation.
func FromProto(s *structpb.Struct) *Envelope {
	if s == nil {
		return nil
	}
	get := func(key string) string { return s.Fields[key].GetStringValue() }
	ts, _ := time.Parse(time.RFC3339Nano, get("timestamp"))
	return &Envelope{
		MessageType:   MessageType(get("message_type")),
		Timestamp:     ts,
		Source:        get("source"),
		Version:       get("version"),
		Kind:          get("kind"),
		Payload:       s.Fields["payload"].GetStructValue(),
		CorrelationID: get("correlation_id"),
	}
}
