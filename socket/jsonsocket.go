// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package socket implements a websocket transport for JSON-bridged backends,
// speaking one JSON document per text frame. It satisfies the Backend
// contract of the core client and keeps itself connected across network
// failures.
package socket

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	tdLog "github.com/fernwire/tdsync/util/log"
)

// JSONSocket is a websocket connection carrying one JSON document per text
// frame. Incoming frames are pumped into the buffered Frames channel;
// Receive polls it with a timeout. A dropped connection is redialed
// automatically with capped backoff until Close is called.
type JSONSocket struct {
	parentCtx context.Context
	cancelCtx context.Context
	cancel    context.CancelFunc
	conn      *websocket.Conn
	log       tdLog.Logger
	lock      sync.Mutex
	writeLock sync.Mutex

	URL         string
	HTTPHeaders http.Header
	HTTPClient  *http.Client

	// EnableAutoReconnect controls whether a lost connection is redialed.
	// Change it before Connect.
	EnableAutoReconnect bool
	reconnectErrors     int

	Frames       chan []byte
	OnDisconnect func(remote bool)

	closed bool
}

func NewJSONSocket(url string, log tdLog.Logger) *JSONSocket {
	if log == nil {
		log = tdLog.Noop
	}
	return &JSONSocket{
		log:    log,
		URL:    url,
		Frames: make(chan []byte, frameQueueSize),

		EnableAutoReconnect: true,
	}
}

func (js *JSONSocket) IsConnected() bool {
	js.lock.Lock()
	defer js.lock.Unlock()
	return js.conn != nil
}

// Connect dials the backend. The context bounds the dial and stays the
// parent of the connection's lifetime, including reconnect attempts.
func (js *JSONSocket) Connect(ctx context.Context) error {
	js.lock.Lock()
	defer js.lock.Unlock()
	return js.connectLocked(ctx)
}

func (js *JSONSocket) connectLocked(ctx context.Context) error {
	if js.conn != nil {
		return ErrSocketAlreadyOpen
	} else if js.closed {
		return ErrSocketClosed
	}
	js.parentCtx = ctx
	js.cancelCtx, js.cancel = context.WithCancel(ctx)

	js.log.Debugf("Dialing %s", js.URL)
	conn, resp, err := websocket.Dial(ctx, js.URL, js.makeDialOptions())
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("%w (HTTP %d)", err, resp.StatusCode)
		}
		js.cancel()
		js.cancel = nil
		return fmt.Errorf("failed to dial backend websocket: %w", err)
	}
	conn.SetReadLimit(FrameMaxSize)

	js.conn = conn
	js.reconnectErrors = 0

	go js.readPump(conn, js.cancelCtx)
	return nil
}

// Send writes one JSON document as a text frame. It implements the Backend
// contract: fire-and-forget, usable from any goroutine.
func (js *JSONSocket) Send(payload []byte) error {
	js.lock.Lock()
	conn, ctx := js.conn, js.cancelCtx
	js.lock.Unlock()
	if conn == nil {
		return ErrSocketClosed
	}
	if len(payload) >= FrameMaxSize {
		return fmt.Errorf("%w (got %d bytes, max %d bytes)", ErrFrameTooLarge, len(payload), FrameMaxSize)
	}
	js.writeLock.Lock()
	defer js.writeLock.Unlock()
	return conn.Write(ctx, websocket.MessageText, payload)
}

// Receive returns the next frame, blocking up to timeout. Nil means no frame
// arrived in time. Frames survive reconnects: the channel outlives any
// single connection.
func (js *JSONSocket) Receive(timeout time.Duration) []byte {
	if timeout <= 0 {
		select {
		case frame := <-js.Frames:
			return frame
		default:
			return nil
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case frame := <-js.Frames:
		return frame
	case <-timer.C:
		return nil
	}
}

// Close performs a normal closure handshake and disables reconnection. The
// socket can't be reused afterwards.
func (js *JSONSocket) Close() error {
	js.lock.Lock()
	js.closed = true
	conn := js.conn
	js.conn = nil
	if js.cancel != nil {
		js.cancel()
		js.cancel = nil
	}
	js.lock.Unlock()
	if conn == nil {
		return nil
	}
	err := conn.Close(websocket.StatusNormalClosure, "")
	if err != nil {
		js.log.Warnf("Error sending close to websocket: %v", err)
	}
	if js.OnDisconnect != nil {
		go js.OnDisconnect(false)
	}
	return err
}

func (js *JSONSocket) readPump(conn *websocket.Conn, ctx context.Context) {
	js.log.Debugf("Websocket read pump starting %p", js)
	defer func() {
		js.log.Debugf("Websocket read pump exiting %p", js)
		go js.disconnected(conn)
	}()
	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			// Ignore the error if the context has been closed
			if !errors.Is(ctx.Err(), context.Canceled) {
				js.log.Errorf("Error reading from websocket: %v", err)
			}
			return
		} else if msgType != websocket.MessageText {
			js.log.Warnf("Got unexpected websocket message type %d", msgType)
			continue
		}
		js.Frames <- data
	}
}

// disconnected runs after the read pump exits. It tears down the dead
// connection and, unless the socket was closed locally, redials.
func (js *JSONSocket) disconnected(conn *websocket.Conn) {
	js.lock.Lock()
	if js.conn != conn {
		// Close or a parallel reconnect already replaced this connection.
		js.lock.Unlock()
		return
	}
	_ = conn.CloseNow()
	js.conn = nil
	if js.cancel != nil {
		js.cancel()
		js.cancel = nil
	}
	reconnect := js.EnableAutoReconnect && !js.closed
	parentCtx := js.parentCtx
	js.lock.Unlock()

	if js.OnDisconnect != nil {
		go js.OnDisconnect(true)
	}
	if reconnect {
		js.autoReconnect(parentCtx)
	}
}

func (js *JSONSocket) autoReconnect(ctx context.Context) {
	for {
		js.lock.Lock()
		js.reconnectErrors++
		attempt := js.reconnectErrors
		js.lock.Unlock()

		delay := ReconnectBaseDelay << min(attempt-1, 6)
		if delay > ReconnectMaxDelay {
			delay = ReconnectMaxDelay
		}
		if ReconnectJitter > 0 {
			delay += time.Duration(rand.Int63n(int64(ReconnectJitter)))
		}
		js.log.Debugf("Automatically reconnecting after %v", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}

		js.lock.Lock()
		err := js.connectLocked(ctx)
		js.lock.Unlock()
		if errors.Is(err, ErrSocketAlreadyOpen) || errors.Is(err, ErrSocketClosed) {
			return
		} else if err != nil {
			js.log.Errorf("Error reconnecting after connection loss: %v", err)
		} else {
			return
		}
	}
}
