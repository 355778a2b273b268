package server

import (
	"io"
	"strconv"

	"golang.org/x/net/websocket"

	"github.com/Iron-Ham/council/internal/event"
	"github.com/Iron-Ham/council/internal/transcript"
)

// handleStream sends transcript events as JSON frames: first the backlog
// after ?since=, then live appends. ?conversation_id= restricts the stream
// to one conversation. Client frames are ignored; the stream ends when the
// client closes or falls streamBuffer events behind.
func (s *Server) handleStream(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	req := conn.Request()
	conversationID := req.URL.Query().Get("conversation_id")
	since, _ := strconv.ParseInt(req.URL.Query().Get("since"), 10, 64)
	logger := s.logger.With("stream_conversation", conversationID)

	live := make(chan transcript.Event, streamBuffer)
	overflow := make(chan struct{})
	subID := s.bus.Subscribe(event.TypeTranscriptAppended, func(e event.Event) {
		appended, ok := e.(event.TranscriptAppendedEvent)
		if !ok {
			return
		}
		if conversationID != "" && appended.ConversationID != conversationID {
			return
		}
		ev := transcript.Event{
			ID:             appended.EntryID,
			ConversationID: appended.ConversationID,
			Author:         appended.Author,
			Text:           appended.Text,
			Timestamp:      appended.At,
			Lane:           appended.Lane,
		}
		select {
		case live <- ev:
		default:
			select {
			case <-overflow:
			default:
				close(overflow)
			}
		}
	})
	defer s.bus.Unsubscribe(subID)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		_, _ = io.Copy(io.Discard, conn)
	}()

	var backlog []transcript.Event
	if conversationID != "" {
		events, err := s.engine.Events(conversationID, since)
		if err != nil {
			_ = websocket.JSON.Send(conn, map[string]string{"error": err.Error()})
			return
		}
		backlog = events
	} else {
		backlog = s.engine.Feed(since)
	}

	// Live events up to the backlog's last id were already sent.
	sent := since
	for _, ev := range backlog {
		if err := websocket.JSON.Send(conn, ev); err != nil {
			return
		}
		sent = ev.ID
	}
	logger.Debug("stream attached", "backlog", len(backlog))

	for {
		select {
		case <-closed:
			logger.Debug("stream closed by client")
			return
		case <-overflow:
			logger.Warn("stream client too slow, closing")
			return
		case ev := <-live:
			if ev.ID <= sent {
				continue
			}
			if err := websocket.JSON.Send(conn, ev); err != nil {
				return
			}
		}
	}
}
