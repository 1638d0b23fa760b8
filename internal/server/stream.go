package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/zafrem/data-detector/detect"
	"github.com/zafrem/data-detector/internal/otel"
)

const maxFrameBytes = 1 << 20

// streamFrame is one websocket message: the scan outcome for the Index-th
// text frame the client sent. Results may arrive out of order.
type streamFrame struct {
	Index     int                     `json:"index"`
	Result    *detect.FindResult      `json:"result,omitempty"`
	Redaction *detect.RedactionResult `json:"redaction,omitempty"`
	Error     string                  `json:"error,omitempty"`
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range s.corsOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// handleStream upgrades to a websocket and scans every incoming text frame,
// answering with one JSON frame per input.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.scanner == nil {
		writeError(w, http.StatusServiceUnavailable, "disabled", "streaming requires a configured scanner")
		return
	}
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		log.Warn().Err(err).Msg("stream_upgrade_failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameBytes)

	session := uuid.NewString()
	streamSessions.Add(r.Context(), 1)
	trace.SpanFromContext(r.Context()).SetAttributes(otel.StreamAttributes(session)...)
	log.Info().Str("session", session).Str("remote", r.RemoteAddr).Msg("stream_opened")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	in := make(chan string)
	out := s.scanner.Stream(ctx, in)

	// Single writer: the scanner emits from several workers but the
	// connection tolerates only one concurrent writer.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		frames := 0
		for item := range out {
			frame := streamFrame{Index: item.Index, Result: item.Result, Redaction: item.Redaction}
			if item.Err != nil {
				frame.Error = item.Err.Error()
			}
			if err := conn.WriteJSON(frame); err != nil {
				cancel()
				conn.Close()
				for range out {
				}
				break
			}
			frames++
		}
		log.Info().Str("session", session).Int("frames", frames).Msg("stream_closed")
	}()

readLoop:
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if kind != websocket.TextMessage {
			continue
		}
		select {
		case in <- string(data):
		case <-ctx.Done():
			break readLoop
		}
	}
	close(in)
	<-writerDone
}
