// network/connection.go
package network

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Outbound frames queued per connection before the peer is
	// considered too slow and dropped.
	sendQueueSize = 64
)

var ErrConnectionClosed = errors.New("connection closed")

// Connection is one bidirectional frame stream to a client. Send never
// blocks on network I/O: frames are queued and drained by a writer
// goroutine owned by the connection, so per-socket delivery is FIFO.
type Connection interface {
	Send(resp *Response) error
	ReadAction() (*Action, error)
	Close() error
	RemoteAddr() net.Addr
}

type WSConnection struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	c := &WSConnection{
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
	go c.writePump()
	return c
}

// Send queues one response frame. A peer whose queue is full is
// disconnected rather than served stale views later.
func (c *WSConnection) Send(resp *Response) error {
	data, err := resp.Encode()
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrConnectionClosed
	case c.send <- data:
		return nil
	default:
		c.Close()
		return errors.New("send queue full")
	}
}

// ReadAction blocks for the next inbound frame and decodes it. Decode
// failures are reported as ErrMalformedFrame; the stream stays usable.
func (c *WSConnection) ReadAction() (*Action, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return DecodeAction(data)
}

func (c *WSConnection) writePump() {
	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *WSConnection) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
	return nil
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
