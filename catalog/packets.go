// Copyright (C) 2024 Michael J. Fromberger. All Rights Reserved.

package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/creachadair/mcwire"
	"github.com/creachadair/mcwire/packet"
)

// Packet IDs, by state and direction.
const (
	idHandshake = 0x00

	idStatusRequest  = 0x00
	idPingRequest    = 0x01
	idStatusResponse = 0x00
	idPongResponse   = 0x01

	idLoginStart      = 0x00
	idLoginDisconnect = 0x00
	idLoginSuccess    = 0x02

	idChatMessage       = 0x05
	idKeepAliveResponse = 0x12
	idDisconnect        = 0x1a
	idKeepAlive         = 0x23
	idSystemChat        = 0x64
)

// UUID is a 128-bit identifier, encoded as two big-endian 64-bit halves.
type UUID [16]byte

func (u UUID) String() string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", u[0:4], u[4:6], u[6:8], u[8:10], u[10:16])
}

func getUUID(s *packet.Scanner) (u UUID, err error) {
	b, err := packet.Get[[]byte](s, len(u))
	if err != nil {
		return u, err
	}
	copy(u[:], b)
	return u, nil
}

// Handshake is the first packet sent by a client. It selects the state the
// connection moves to next.
type Handshake struct {
	Protocol int32
	Address  string
	Port     uint16
	Next     int32 // 1: Status, 2: Login
}

// NextState implements the [mcwire.StateRequest] interface.
func (h *Handshake) NextState() int32 { return h.Next }

func (*Handshake) PacketID() int32 { return idHandshake }

func (*Handshake) MaxSize() int {
	return packet.MaxVarIntLen + stringSize(maxAddress) + 2 + packet.MaxVarIntLen
}

func (h *Handshake) Encode(b *packet.Builder) {
	b.VarInt(h.Protocol)
	b.VPutString(h.Address)
	b.Uint16(h.Port)
	b.VarInt(h.Next)
}

func (h *Handshake) Decode(s *packet.Scanner) (err error) {
	if h.Protocol, err = s.VarInt(); err != nil {
		return fmt.Errorf("protocol: %w", err)
	}
	if h.Address, err = getString(s, maxAddress); err != nil {
		return fmt.Errorf("address: %w", err)
	}
	if h.Port, err = s.Uint16(); err != nil {
		return fmt.Errorf("port: %w", err)
	}
	if h.Next, err = s.VarInt(); err != nil {
		return fmt.Errorf("next state: %w", err)
	}
	return nil
}

// StatusRequest asks the server for its status. It has no payload.
type StatusRequest struct{}

func (StatusRequest) PacketID() int32                 { return idStatusRequest }
func (StatusRequest) MaxSize() int                    { return 0 }
func (StatusRequest) Encode(*packet.Builder)          {}
func (*StatusRequest) Decode(s *packet.Scanner) error { return nil }

// StatusResponse carries the server status as a JSON document.
type StatusResponse struct {
	JSON string
}

func (*StatusResponse) PacketID() int32            { return idStatusResponse }
func (*StatusResponse) MaxSize() int               { return stringSize(maxStatus) }
func (r *StatusResponse) Encode(b *packet.Builder) { b.VPutString(r.JSON) }

func (r *StatusResponse) Decode(s *packet.Scanner) (err error) {
	r.JSON, err = getString(s, maxStatus)
	return err
}

// Status decodes the JSON document of r.
func (r *StatusResponse) Status() (*ServerStatus, error) {
	var st ServerStatus
	if err := json.Unmarshal([]byte(r.JSON), &st); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &st, nil
}

// ServerStatus is the content of a [StatusResponse].
type ServerStatus struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int32  `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int `json:"max"`
		Online int `json:"online"`
	} `json:"players"`
	Description struct {
		Text string `json:"text"`
	} `json:"description"`
}

// NewStatusResponse encodes st as a [StatusResponse].
func NewStatusResponse(st *ServerStatus) (*StatusResponse, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}
	return &StatusResponse{JSON: string(data)}, nil
}

// PingRequest carries an opaque value that the server echoes in a
// [PongResponse].
type PingRequest struct {
	Payload int64
}

func (*PingRequest) PacketID() int32            { return idPingRequest }
func (*PingRequest) MaxSize() int               { return 8 }
func (p *PingRequest) Encode(b *packet.Builder) { b.Int64(p.Payload) }

func (p *PingRequest) Decode(s *packet.Scanner) (err error) {
	p.Payload, err = s.Int64()
	return err
}

// PongResponse echoes the payload of a [PingRequest].
type PongResponse struct {
	Payload int64
}

func (*PongResponse) PacketID() int32            { return idPongResponse }
func (*PongResponse) MaxSize() int               { return 8 }
func (p *PongResponse) Encode(b *packet.Builder) { b.Int64(p.Payload) }

func (p *PongResponse) Decode(s *packet.Scanner) (err error) {
	p.Payload, err = s.Int64()
	return err
}

// LoginStart begins the login sequence.
type LoginStart struct {
	Name    string
	HasUUID bool
	UUID    UUID
}

func (*LoginStart) PacketID() int32 { return idLoginStart }
func (*LoginStart) MaxSize() int    { return stringSize(maxUsername) + 1 + len(UUID{}) }

func (p *LoginStart) Encode(b *packet.Builder) {
	b.VPutString(p.Name)
	b.Bool(p.HasUUID)
	if p.HasUUID {
		b.Put(p.UUID[:]...)
	}
}

func (p *LoginStart) Decode(s *packet.Scanner) (err error) {
	if p.Name, err = getString(s, maxUsername); err != nil {
		return fmt.Errorf("name: %w", err)
	}
	if p.HasUUID, err = s.Bool(); err != nil {
		return fmt.Errorf("has uuid: %w", err)
	}
	if p.HasUUID {
		if p.UUID, err = getUUID(s); err != nil {
			return fmt.Errorf("uuid: %w", err)
		}
	}
	return nil
}

// LoginDisconnect rejects a login. The reason is a JSON chat component.
type LoginDisconnect struct {
	Reason string
}

func (*LoginDisconnect) PacketID() int32            { return idLoginDisconnect }
func (*LoginDisconnect) MaxSize() int               { return stringSize(maxJSON) }
func (p *LoginDisconnect) Encode(b *packet.Builder) { b.VPutString(p.Reason) }

func (p *LoginDisconnect) Decode(s *packet.Scanner) (err error) {
	p.Reason, err = getString(s, maxJSON)
	return err
}

// A Property is a signed profile property sent with [LoginSuccess].
type Property struct {
	Name      string
	Value     string
	Signature string // empty if unsigned
}

// LoginSuccess completes the login sequence. On receipt of this packet both
// sides move to the Play state.
type LoginSuccess struct {
	UUID       UUID
	Name       string
	Properties []Property
}

func (*LoginSuccess) PacketID() int32 { return idLoginSuccess }
func (*LoginSuccess) MaxSize() int    { return 0 }

func (p *LoginSuccess) Encode(b *packet.Builder) {
	b.Put(p.UUID[:]...)
	b.VPutString(p.Name)
	b.VarInt(int32(len(p.Properties)))
	for _, prop := range p.Properties {
		b.VPutString(prop.Name)
		b.VPutString(prop.Value)
		b.Bool(prop.Signature != "")
		if prop.Signature != "" {
			b.VPutString(prop.Signature)
		}
	}
}

func (p *LoginSuccess) Decode(s *packet.Scanner) (err error) {
	if p.UUID, err = getUUID(s); err != nil {
		return fmt.Errorf("uuid: %w", err)
	}
	if p.Name, err = getString(s, maxUsername); err != nil {
		return fmt.Errorf("name: %w", err)
	}
	n, err := s.VarInt()
	if err != nil {
		return fmt.Errorf("property count: %w", err)
	} else if n < 0 || int(n) > s.Len() {
		return fmt.Errorf("invalid property count %d", n)
	}
	p.Properties = nil
	for i := range int(n) {
		var prop Property
		if prop.Name, err = getString(s, maxStatus); err != nil {
			return fmt.Errorf("property %d name: %w", i, err)
		}
		if prop.Value, err = getString(s, maxStatus); err != nil {
			return fmt.Errorf("property %d value: %w", i, err)
		}
		signed, err := s.Bool()
		if err != nil {
			return fmt.Errorf("property %d: %w", i, err)
		}
		if signed {
			if prop.Signature, err = getString(s, maxStatus); err != nil {
				return fmt.Errorf("property %d signature: %w", i, err)
			}
		}
		p.Properties = append(p.Properties, prop)
	}
	return nil
}

// KeepAlive is sent periodically by the server during Play. The client must
// answer with a [KeepAliveResponse] carrying the same ID.
type KeepAlive struct {
	ID int64
}

func (*KeepAlive) PacketID() int32            { return idKeepAlive }
func (*KeepAlive) MaxSize() int               { return 8 }
func (p *KeepAlive) Encode(b *packet.Builder) { b.Int64(p.ID) }

func (p *KeepAlive) Decode(s *packet.Scanner) (err error) {
	p.ID, err = s.Int64()
	return err
}

// KeepAliveResponse answers a [KeepAlive].
type KeepAliveResponse struct {
	ID int64
}

func (*KeepAliveResponse) PacketID() int32            { return idKeepAliveResponse }
func (*KeepAliveResponse) MaxSize() int               { return 8 }
func (p *KeepAliveResponse) Encode(b *packet.Builder) { b.Int64(p.ID) }

func (p *KeepAliveResponse) Decode(s *packet.Scanner) (err error) {
	p.ID, err = s.Int64()
	return err
}

// ChatMessage is a chat line sent by a client.
type ChatMessage struct {
	Message      string
	Timestamp    int64
	Salt         int64
	Signature    []byte // 256 bytes, or nil if unsigned
	MessageCount int32
	Acknowledged [3]byte
}

const signatureLen = 256

func (*ChatMessage) PacketID() int32 { return idChatMessage }

func (*ChatMessage) MaxSize() int {
	return stringSize(maxChat) + 8 + 8 + 1 + signatureLen + packet.MaxVarIntLen + 3
}

func (p *ChatMessage) Encode(b *packet.Builder) {
	b.VPutString(p.Message)
	b.Int64(p.Timestamp)
	b.Int64(p.Salt)
	b.Bool(p.Signature != nil)
	if p.Signature != nil {
		var sig [signatureLen]byte
		copy(sig[:], p.Signature)
		b.Put(sig[:]...)
	}
	b.VarInt(p.MessageCount)
	b.Put(p.Acknowledged[:]...)
}

func (p *ChatMessage) Decode(s *packet.Scanner) (err error) {
	if p.Message, err = getString(s, maxChat); err != nil {
		return fmt.Errorf("message: %w", err)
	}
	if p.Timestamp, err = s.Int64(); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if p.Salt, err = s.Int64(); err != nil {
		return fmt.Errorf("salt: %w", err)
	}
	signed, err := s.Bool()
	if err != nil {
		return fmt.Errorf("signed: %w", err)
	}
	p.Signature = nil
	if signed {
		sig, err := packet.Get[[]byte](s, signatureLen)
		if err != nil {
			return fmt.Errorf("signature: %w", err)
		}
		p.Signature = append([]byte(nil), sig...)
	}
	if p.MessageCount, err = s.VarInt(); err != nil {
		return fmt.Errorf("message count: %w", err)
	}
	ack, err := packet.Get[[]byte](s, len(p.Acknowledged))
	if err != nil {
		return fmt.Errorf("acknowledged: %w", err)
	}
	copy(p.Acknowledged[:], ack)
	return nil
}

// Disconnect ends a session in the Play state. The reason is a JSON chat
// component.
type Disconnect struct {
	Reason string
}

func (*Disconnect) PacketID() int32            { return idDisconnect }
func (*Disconnect) MaxSize() int               { return stringSize(maxJSON) }
func (p *Disconnect) Encode(b *packet.Builder) { b.VPutString(p.Reason) }

func (p *Disconnect) Decode(s *packet.Scanner) (err error) {
	p.Reason, err = getString(s, maxJSON)
	return err
}

// SystemChat is a chat line originated by the server. The content is a JSON
// chat component. If Overlay is true, the line is shown above the hotbar.
type SystemChat struct {
	Content string
	Overlay bool
}

func (*SystemChat) PacketID() int32 { return idSystemChat }
func (*SystemChat) MaxSize() int    { return stringSize(maxJSON) + 1 }

func (p *SystemChat) Encode(b *packet.Builder) {
	b.VPutString(p.Content)
	b.Bool(p.Overlay)
}

func (p *SystemChat) Decode(s *packet.Scanner) (err error) {
	if p.Content, err = getString(s, maxJSON); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if p.Overlay, err = s.Bool(); err != nil {
		return fmt.Errorf("overlay: %w", err)
	}
	return nil
}

// Interface satisfaction checks.
var (
	_ mcwire.Sendable     = (*Handshake)(nil)
	_ mcwire.Receivable   = (*Handshake)(nil)
	_ mcwire.StateRequest = (*Handshake)(nil)
	_ mcwire.Sendable     = StatusRequest{}
	_ mcwire.Receivable   = (*StatusRequest)(nil)
	_ mcwire.Sendable     = (*LoginSuccess)(nil)
	_ mcwire.Sendable     = (*ChatMessage)(nil)
	_ mcwire.Receivable   = (*SystemChat)(nil)
)
