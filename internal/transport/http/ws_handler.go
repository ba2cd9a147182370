package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler runs the quiz flow over a websocket for clients that prefer one
// long-lived connection to a request per step. It shares the session cookie
// and the QuizService with the JSON API.
type WSHandler struct {
	auth     *app.AuthService
	quiz     *app.QuizService
	cookie   string
	upgrader websocket.Upgrader
}

func NewWSHandler(auth *app.AuthService, quiz *app.QuizService, cookieName, allowedOrigin string) *WSHandler {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &WSHandler{
		auth:   auth,
		quiz:   quiz,
		cookie: cookieName,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

var errUnsupportedMessage = errors.New("unsupported message type")

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type endPayload struct {
	Message string `json:"message"`
}

type weekPayload struct {
	Week int `json:"week"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := ""
	if c, err := r.Cookie(h.cookie); err == nil {
		token = c.Value
	}
	if _, err := h.auth.Authenticate(r.Context(), token); err != nil {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// Single writer; gorilla connections do not support concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		out, err := h.dispatch(r.Context(), token, inbound)
		if err != nil {
			out = outboundMessage[any]{Type: "error", Payload: errorPayload{Message: wsErrorMessage(err)}}
		}
		select {
		case send <- out:
		case <-writerDone:
		}
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, token string, in inboundMessage) (outboundMessage[any], error) {
	switch in.Type {
	case "week":
		var p struct {
			Week *flexInt `json:"week"`
		}
		if err := unmarshalPayload(in.Payload, &p); err != nil {
			return outboundMessage[any]{}, err
		}
		if p.Week == nil {
			return outboundMessage[any]{}, fmt.Errorf("%w: week is required", domain.ErrInvalidInput)
		}
		week, err := h.quiz.SetWeek(ctx, token, int(*p.Week))
		if err != nil {
			return outboundMessage[any]{}, err
		}
		return outboundMessage[any]{Type: "week", Payload: weekPayload{Week: week}}, nil

	case "start":
		var p struct {
			Topics     string  `json:"topics"`
			Difficulty flexInt `json:"difficulty"`
		}
		if err := unmarshalPayload(in.Payload, &p); err != nil {
			return outboundMessage[any]{}, err
		}
		view, err := h.quiz.Start(ctx, token, p.Topics, int(p.Difficulty))
		if errors.Is(err, domain.ErrNoCandidates) {
			return outboundMessage[any]{Type: "end", Payload: endPayload{Message: err.Error()}}, nil
		}
		if err != nil {
			return outboundMessage[any]{}, err
		}
		return outboundMessage[any]{Type: "question", Payload: view}, nil

	case "question":
		view, err := h.quiz.Current(ctx, token)
		if err != nil {
			return outboundMessage[any]{}, err
		}
		return outboundMessage[any]{Type: "question", Payload: view}, nil

	case "answer":
		var p answerRequest
		if err := unmarshalPayload(in.Payload, &p); err != nil {
			return outboundMessage[any]{}, err
		}
		res, err := h.quiz.Answer(ctx, token, p.Answer)
		if err != nil {
			return outboundMessage[any]{}, err
		}
		return outboundMessage[any]{Type: "answerResult", Payload: res}, nil

	case "next":
		var p nextRequest
		if err := unmarshalPayload(in.Payload, &p); err != nil {
			return outboundMessage[any]{}, err
		}
		res, err := h.quiz.Next(ctx, token, p.Continue)
		if err != nil {
			return outboundMessage[any]{}, err
		}
		if res.End {
			return outboundMessage[any]{Type: "end", Payload: endPayload{Message: res.Message}}, nil
		}
		return outboundMessage[any]{Type: "question", Payload: res.Question}, nil
	}
	return outboundMessage[any]{}, errUnsupportedMessage
}

func unmarshalPayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	return nil
}

func wsErrorMessage(err error) string {
	if errors.Is(err, errUnsupportedMessage) {
		return err.Error()
	}
	if statusFor(err) == http.StatusInternalServerError {
		log.Printf("ws request failed: %v", err)
		return "internal error"
	}
	return err.Error()
}
