package ws

import (
	"sync"
	"time"

	"github.com/Askiater/speak-to-me/internal/domain"

	"github.com/gorilla/websocket"
)

type wsConn struct {
	conn     *websocket.Conn
	id       string
	identity domain.Identity
	sendMu   chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

func newWsConn(c *websocket.Conn, id string, identity domain.Identity) *wsConn {
	return &wsConn{
		conn:     c,
		id:       id,
		identity: identity,
		sendMu:   make(chan struct{}, 1),
		closed:   make(chan struct{}),
	}
}

func (c *wsConn) ID() string                { return c.id }
func (c *wsConn) Identity() domain.Identity { return c.identity }

func (c *wsConn) Send(msg Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(msg)
}

// Close конкурентно-безопасен: транспорт рвут и собственная read-горутина,
// и чужие (кик, terminate), возможно одновременно.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })

	return c.conn.Close()
}
