// Package session delivers packets to a player's game connection.
//
// The game gateway owns the client sockets; this service reaches a player
// by publishing a PacketBatch on the player's outbound NATS subject.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/example/game-platform/services/achievement/internal/wire"
)

// Headers set on every outbound batch.
const (
	HeaderPacketCount = "Packet-Count"
	HeaderOpcodes     = "Packet-Opcodes"
)

// flushTimeout bounds the server round trip when ctx has no deadline.
const flushTimeout = 2 * time.Second

// ErrUnavailable is matched by TransportError when the connection is down.
var ErrUnavailable = errors.New("session transport unavailable")

// ErrInvalidPlayer is returned for player ids that cannot form a subject
// token. Retrying never helps.
var ErrInvalidPlayer = errors.New("invalid player id")

// Session is one player's outbound packet stream.
type Session interface {
	// Send delivers msgs in order as one unit: either all are handed to the
	// transport or Send fails and none are.
	Send(ctx context.Context, msgs ...wire.Message) error
}

// Directory resolves a player to their session.
type Directory interface {
	Session(playerID string) (Session, error)
}

// TransportError wraps a failed delivery. It is not retried here; NATS
// reconnect policy is configured in natsconn.
type TransportError struct {
	PlayerID string
	Subject  string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("send to player %s via %s: %v", e.PlayerID, e.Subject, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Conn is the subset of *nats.Conn used for delivery.
type Conn interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	IsConnected() bool
}

// NATSDirectory maps players to "<prefix>.<player_id>.outbound" subjects.
type NATSDirectory struct {
	conn   Conn
	prefix string
}

func NewNATSDirectory(conn Conn, prefix string) *NATSDirectory {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = "session"
	}
	return &NATSDirectory{conn: conn, prefix: prefix}
}

// Subject returns the outbound subject for playerID.
func (d *NATSDirectory) Subject(playerID string) string {
	return d.prefix + "." + playerID + ".outbound"
}

func (d *NATSDirectory) Session(playerID string) (Session, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" || strings.ContainsAny(playerID, ".*> \t") {
		return nil, fmt.Errorf("%w %q", ErrInvalidPlayer, playerID)
	}
	return &natsSession{conn: d.conn, playerID: playerID, subject: d.Subject(playerID)}, nil
}

type natsSession struct {
	conn     Conn
	playerID string
	subject  string
}

func (s *natsSession) Send(ctx context.Context, msgs ...wire.Message) error {
	if s.conn == nil || !s.conn.IsConnected() {
		return s.fail(ErrUnavailable)
	}
	opcodes := make([]string, len(msgs))
	for i, m := range msgs {
		opcodes[i] = strconv.Itoa(int(m.Opcode()))
	}
	msg := nats.NewMsg(s.subject)
	msg.Data = wire.EncodeBatch(msgs...)
	msg.Header.Set(HeaderPacketCount, strconv.Itoa(len(msgs)))
	msg.Header.Set(HeaderOpcodes, strings.Join(opcodes, ","))

	if err := s.conn.PublishMsg(msg); err != nil {
		return s.fail(err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}
	if err := s.conn.FlushWithContext(ctx); err != nil {
		return s.fail(err)
	}
	return nil
}

func (s *natsSession) fail(err error) error {
	return &TransportError{PlayerID: s.playerID, Subject: s.subject, Err: err}
}
