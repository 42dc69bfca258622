package grpctransport

import (
	"encoding/json"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/agentkernel/agentkernel/agent/kernel"
)

// Server implements the IntentTransport gRPC service, handing each
// received intent to Handle and writing back whatever KernelEvent Handle
// produces.
type Server struct {
	// Handle executes one intent and returns the event it produced.
	Handle func(intentID string, intent json.RawMessage) (kernel.KernelEvent, error)
}

// Carry implements streamHandler, driving one client's Carry stream until
// it closes.
func (s *Server) Carry(stream grpc.BidiStreamingServer[wrapperspb.BytesValue, wrapperspb.BytesValue]) error {
	for {
		frame, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("grpctransport: server receiving frame: %w", err)
		}

		var msg WireMessage
		if err := json.Unmarshal(frame.GetValue(), &msg); err != nil {
			return fmt.Errorf("grpctransport: server decoding frame: %w", err)
		}

		event, err := s.Handle(msg.IntentID, msg.Intent)
		if err != nil {
			return fmt.Errorf("grpctransport: handling intent %s: %w", msg.IntentID, err)
		}
		eventPayload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("grpctransport: marshaling event for %s: %w", msg.IntentID, err)
		}
		reply, err := encode(WireMessage{IntentID: msg.IntentID, Event: eventPayload})
		if err != nil {
			return fmt.Errorf("grpctransport: encoding reply for %s: %w", msg.IntentID, err)
		}
		if err := stream.Send(reply); err != nil {
			return fmt.Errorf("grpctransport: sending reply for %s: %w", msg.IntentID, err)
		}
	}
}
