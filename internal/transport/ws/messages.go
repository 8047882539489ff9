package ws

import "encoding/json"

// Каталог сообщений сигналинга.
const (
	TypeJoin           = "join"             // client→server: {roomId}
	TypeRoomJoined     = "room:joined"      // server→client: ack новому участнику
	TypeUserJoined     = "user:joined"      // server→peers: новый участник
	TypeSignalOffer    = "signal:offer"     // точечный релей SDP offer
	TypeSignalAnswer   = "signal:answer"    // точечный релей SDP answer
	TypeSignalICE      = "signal:ice-candidate"
	TypeUserLeft       = "user:left"        // server→peers: участник ушёл
	TypeRoomKicked     = "room:kicked"      // server→client: выкинут по таймауту
	TypeRoomTerminated = "room:terminated"  // server→client: комната закрыта админом
	TypeAdminTerminate = "admin:terminate"  // client→server: {roomId}
	TypeAdminUpdate    = "admin:update"     // server→admins: состав комнат изменился
	TypeError          = "error"            // server→client: {message}
)

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage собирает исходящее сообщение. Все payload'ы — наши структуры,
// marshal на них не падает.
func NewMessage(typ string, payload any) Message {
	b, _ := json.Marshal(payload)
	return Message{Type: typ, Payload: b}
}

type JoinPayload struct {
	RoomID string `json:"roomId"`
}

type PeerInfo struct {
	ConnectionID string `json:"connectionId"`
	Username     string `json:"username"`
}

type RoomJoinedPayload struct {
	RoomID       string     `json:"roomId"`
	Participants []PeerInfo `json:"participants"`
}

// SignalPayload — конверт точечного релея. Offer/answer/candidate для сервера
// непрозрачны и пересылаются байт-в-байт; сервер только подменяет адресацию,
// убирая to и проставляя from отправителя.
type SignalPayload struct {
	To        string          `json:"to,omitempty"`
	From      string          `json:"from,omitempty"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

type UserLeftPayload struct {
	ConnectionID string `json:"connectionId"`
}

type KickedPayload struct {
	Reason string `json:"reason"`
}

type TerminatePayload struct {
	RoomID string `json:"roomId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
