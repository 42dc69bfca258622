// Package grpctransport implements a session.Transport over a gRPC
// bidirectional stream: intents are marshaled as a JSON payload wrapped in
// a protobuf BytesValue and sent to whichever capability-runtime process
// is attached to the other end of the stream, and completion events
// arrive back over the same stream in the opposite direction.
package grpctransport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/agentkernel/agentkernel/agent/ids"
	"github.com/agentkernel/agentkernel/agent/kernel"
)

// serviceName is the fully qualified gRPC service name exposed by Server
// and dialed by Client.
const serviceName = "agentkernel.IntentTransport"

// intentTransportStreamDesc describes the single bidirectional-streaming
// method ("Carry") the service exposes: a stream of BytesValue frames in
// each direction carrying JSON-encoded WireMessage envelopes.
var intentTransportStreamDesc = grpc.StreamDesc{
	StreamName:    "Carry",
	ServerStreams: true,
	ClientStreams: true,
}

// ServiceDesc is the grpc.ServiceDesc a server registers the handler
// under.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*streamHandler)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Carry",
			Handler:       carryHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "agentkernel/transport.proto",
}

// streamHandler is implemented by Server.
type streamHandler interface {
	Carry(grpc.BidiStreamingServer[wrapperspb.BytesValue, wrapperspb.BytesValue]) error
}

func carryHandler(srv any, stream grpc.ServerStream) error {
	return srv.(streamHandler).Carry(&genericBidiStream{stream})
}

// genericBidiStream adapts grpc.ServerStream to the typed
// grpc.BidiStreamingServer interface without requiring generated code.
type genericBidiStream struct {
	grpc.ServerStream
}

func (s *genericBidiStream) Send(m *wrapperspb.BytesValue) error { return s.ServerStream.SendMsg(m) }
func (s *genericBidiStream) Recv() (*wrapperspb.BytesValue, error) {
	m := new(wrapperspb.BytesValue)
	if err := s.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// WireMessage is the JSON envelope carried inside each BytesValue frame.
// Exactly one of Intent or Event is set.
type WireMessage struct {
	IntentID string          `json:"intent_id,omitempty"`
	Intent   json.RawMessage `json:"intent,omitempty"`
	Event    json.RawMessage `json:"event,omitempty"`
}

func encode(v any) (*wrapperspb.BytesValue, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return wrapperspb.Bytes(data), nil
}

// Client dispatches intents to a remote capability runtime over one
// long-lived gRPC stream, implementing session.Transport.
type Client struct {
	mu     sync.Mutex
	stream grpc.ClientStream
}

// NewClient opens a Carry stream on conn.
func NewClient(ctx context.Context, conn *grpc.ClientConn) (*Client, error) {
	stream, err := conn.NewStream(ctx, &intentTransportStreamDesc, "/"+serviceName+"/Carry")
	if err != nil {
		return nil, fmt.Errorf("grpctransport: opening stream: %w", err)
	}
	return &Client{stream: stream}, nil
}

// Dispatch sends intent, tagged with id, as a WireMessage frame.
func (c *Client) Dispatch(ctx context.Context, id ids.IntentId, intent kernel.Intent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("grpctransport: marshaling intent %s: %w", id, err)
	}
	frame, err := encode(WireMessage{IntentID: id.String(), Intent: payload})
	if err != nil {
		return fmt.Errorf("grpctransport: encoding frame for %s: %w", id, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream.SendMsg(frame)
}

// RecvEvent blocks for the next event frame sent back by the remote
// capability runtime, returning io.EOF when the stream closes.
func (c *Client) RecvEvent() (WireMessage, error) {
	frame := new(wrapperspb.BytesValue)
	if err := c.stream.RecvMsg(frame); err != nil {
		if err == io.EOF {
			return WireMessage{}, io.EOF
		}
		return WireMessage{}, fmt.Errorf("grpctransport: receiving event: %w", err)
	}
	var msg WireMessage
	if err := json.Unmarshal(frame.GetValue(), &msg); err != nil {
		return WireMessage{}, fmt.Errorf("grpctransport: decoding event frame: %w", err)
	}
	return msg, nil
}
