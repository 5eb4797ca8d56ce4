// Package wsplayer carries internal/player's Notify/Decide protocol over a
// websocket connection, so a live counterpart (cmd/play's console client)
// can sit on the other end of the wire rather than in-process.
//
// Grounded in pokerforbots's sdk/ws_client.go WSClient: the same
// mutex-guarded connected flag, stopChan-driven reader goroutine, and
// envelope-plus-dispatch shape, narrowed to the core's Notify/Decide
// vocabulary instead of the teacher's table-lobby message set.
package wsplayer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lox/holdem-cfr/internal/card"
	"github.com/lox/holdem-cfr/internal/game"
	"github.com/lox/holdem-cfr/internal/player"
)

// MessageType tags a wire envelope's payload, mirroring sdk/protocol.go's
// MessageType string-enum convention.
type MessageType string

const (
	MsgNotify         MessageType = "notify"
	MsgDecideRequest  MessageType = "decide_request"
	MsgDecideResponse MessageType = "decide_response"
)

// Message is the wire envelope, shaped like sdk/protocol.go's Message.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

// wireEvent and wirePartialRecall are the JSON-safe projections of
// player.Event/PartialRecall: card types marshal through their String()
// form since the wire's counterpart (a human console client) never needs
// the packed bit representation, only text it can print.
type wireEvent struct {
	Kind   string      `json:"kind"`
	Seat   int         `json:"seat"`
	Hole   string      `json:"hole,omitempty"`
	Board  string      `json:"board,omitempty"`
	Street string      `json:"street,omitempty"`
	Action string      `json:"action,omitempty"`
	Payout int         `json:"payout,omitempty"`
}

type wirePartialRecall struct {
	Seat   int      `json:"seat"`
	Hole   string   `json:"hole"`
	Board  string   `json:"board"`
	Street string   `json:"street"`
	Pot    int      `json:"pot"`
	Legal  []string `json:"legal"`
}

type wireAction struct {
	Kind   string `json:"kind"`
	Amount int    `json:"amount"`
}

// Player implements internal/player.Player over a websocket connection:
// Notify sends a fire-and-forget event, Decide sends a decide_request and
// blocks (honoring ctx) on the matching decide_response.
type Player struct {
	conn *websocket.Conn

	mu        sync.Mutex
	connected bool
	stopChan  chan struct{}

	responses chan game.Action
}

// Wrap adapts an already-established websocket connection (either side: a
// server that accepted one, or a client that dialed one) into a Player.
func Wrap(conn *websocket.Conn) *Player {
	p := &Player{conn: conn, connected: true, stopChan: make(chan struct{}), responses: make(chan game.Action, 1)}
	go p.readLoop()
	return p
}

// Dial connects to a server URL and wraps the resulting connection.
func Dial(url string) (*Player, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("wsplayer: dial %s: %w", url, err)
	}
	return Wrap(conn), nil
}

// Close shuts down the connection and its reader goroutine.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected {
		return nil
	}
	p.connected = false
	close(p.stopChan)
	_ = p.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return p.conn.Close()
}

func (p *Player) readLoop() {
	defer func() {
		p.mu.Lock()
		p.connected = false
		p.mu.Unlock()
	}()
	for {
		select {
		case <-p.stopChan:
			return
		default:
		}
		var msg Message
		if err := p.conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type != MsgDecideResponse {
			continue // Notify has no reply; any other type is this side's to emit, not receive
		}
		var wa wireAction
		if err := json.Unmarshal(msg.Data, &wa); err != nil {
			continue
		}
		select {
		case p.responses <- wireToAction(wa):
		default:
		}
	}
}

// Notify implements player.Player: sends the event over the wire and
// returns immediately (no reply expected).
func (p *Player) Notify(e player.Event) {
	data, err := json.Marshal(eventToWire(e))
	if err != nil {
		return
	}
	p.send(MsgNotify, data)
}

// Decide implements player.Player: sends a decide_request carrying recall
// and waits for the matching decide_response, honoring ctx cancellation.
func (p *Player) Decide(ctx context.Context, recall player.PartialRecall) (game.Action, error) {
	data, err := json.Marshal(recallToWire(recall))
	if err != nil {
		return game.Action{}, err
	}
	if err := p.send(MsgDecideRequest, data); err != nil {
		return game.Action{}, err
	}
	select {
	case a := <-p.responses:
		return a, nil
	case <-ctx.Done():
		return game.Action{}, ctx.Err()
	}
}

// RespondDecision is called by the counterpart side (cmd/play's console
// client) after prompting its operator, sending the chosen action back as a
// decide_response.
func (p *Player) RespondDecision(a game.Action) error {
	data, err := json.Marshal(actionToWire(a))
	if err != nil {
		return err
	}
	return p.send(MsgDecideResponse, data)
}

// NextEvent blocks until a notify or decide_request message arrives,
// decoding it back into the typed form cmd/play's console loop renders.
func (p *Player) NextEvent() (MessageType, player.Event, player.PartialRecall, error) {
	var msg Message
	if err := p.conn.ReadJSON(&msg); err != nil {
		return "", player.Event{}, player.PartialRecall{}, err
	}
	switch msg.Type {
	case MsgNotify:
		var we wireEvent
		if err := json.Unmarshal(msg.Data, &we); err != nil {
			return "", player.Event{}, player.PartialRecall{}, err
		}
		return MsgNotify, wireToEvent(we), player.PartialRecall{}, nil
	case MsgDecideRequest:
		var wr wirePartialRecall
		if err := json.Unmarshal(msg.Data, &wr); err != nil {
			return "", player.Event{}, player.PartialRecall{}, err
		}
		return MsgDecideRequest, player.Event{}, wireToRecall(wr), nil
	default:
		return msg.Type, player.Event{}, player.PartialRecall{}, nil
	}
}

func (p *Player) send(t MessageType, data json.RawMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected {
		return fmt.Errorf("wsplayer: not connected")
	}
	return p.conn.WriteJSON(Message{Type: t, Data: data, Timestamp: time.Now().UTC()})
}

func eventToWire(e player.Event) wireEvent {
	return wireEvent{
		Kind:   e.Kind.String(),
		Seat:   e.Seat,
		Hole:   e.Hole.String(),
		Board:  e.Board.String(),
		Street: e.Street.String(),
		Action: e.Action.String(),
		Payout: e.Payout,
	}
}

func wireToEvent(w wireEvent) player.Event {
	e := player.Event{Seat: w.Seat, Payout: w.Payout}
	for k := player.HandStart; k <= player.Disconnect; k++ {
		if k.String() == w.Kind {
			e.Kind = k
			break
		}
	}
	if h, err := card.ParseHand(w.Hole); err == nil && h.Count() == 2 {
		cards := h.Cards()
		e.Hole = card.NewHole(cards[0], cards[1])
	}
	if h, err := card.ParseHand(w.Board); err == nil {
		if b, err := card.NewBoard(h.Cards()...); err == nil {
			e.Board = b
		}
	}
	if len(w.Street) == 1 {
		if s, err := card.ParseStreet(w.Street[0]); err == nil {
			e.Street = s
		}
	}
	if a, err := game.ParseAction(w.Action); err == nil {
		e.Action = a
	}
	return e
}

func recallToWire(r player.PartialRecall) wirePartialRecall {
	legal := make([]string, len(r.Legal))
	for i, a := range r.Legal {
		legal[i] = a.String()
	}
	return wirePartialRecall{
		Seat:   r.Seat,
		Hole:   r.Hole.String(),
		Board:  r.Board.String(),
		Street: r.Street.String(),
		Pot:    r.Pot,
		Legal:  legal,
	}
}

func wireToRecall(w wirePartialRecall) player.PartialRecall {
	r := player.PartialRecall{Seat: w.Seat, Pot: w.Pot}
	if h, err := card.ParseHand(w.Hole); err == nil && h.Count() == 2 {
		cards := h.Cards()
		r.Hole = card.NewHole(cards[0], cards[1])
	}
	if h, err := card.ParseHand(w.Board); err == nil {
		if b, err := card.NewBoard(h.Cards()...); err == nil {
			r.Board = b
		}
	}
	if len(w.Street) == 1 {
		if s, err := card.ParseStreet(w.Street[0]); err == nil {
			r.Street = s
		}
	}
	for _, s := range w.Legal {
		if a, err := game.ParseAction(s); err == nil {
			r.Legal = append(r.Legal, a)
		}
	}
	return r
}

func actionToWire(a game.Action) wireAction {
	return wireAction{Kind: a.Kind.String(), Amount: a.Amount}
}

func wireToAction(w wireAction) game.Action {
	switch w.Kind {
	case "fold":
		return game.Action{Kind: game.Fold}
	case "check":
		return game.Action{Kind: game.Check}
	case "call":
		return game.Action{Kind: game.Call, Amount: w.Amount}
	case "raise":
		return game.Action{Kind: game.Raise, Amount: w.Amount}
	case "shove":
		return game.Action{Kind: game.Shove, Amount: w.Amount}
	default:
		return game.Action{Kind: game.Fold}
	}
}
