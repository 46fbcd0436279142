// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package socket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		for {
			msgType, data, err := conn.Read(r.Context())
			if err != nil {
				return
			}
			if err = conn.Write(r.Context(), msgType, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSendReceiveRoundtrip(t *testing.T) {
	srv := echoServer(t)
	js := NewJSONSocket(wsURL(srv), nil)
	if err := js.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer js.Close()
	if !js.IsConnected() {
		t.Errorf("Expected IsConnected after Connect")
	}

	payload := `{"@type":"getOption","name":"version"}`
	if err := js.Send([]byte(payload)); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	frame := js.Receive(5 * time.Second)
	if string(frame) != payload {
		t.Errorf("Expected echoed frame %s, got %s", payload, frame)
	}
}

func TestReceiveTimeout(t *testing.T) {
	srv := echoServer(t)
	js := NewJSONSocket(wsURL(srv), nil)
	if err := js.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer js.Close()

	if frame := js.Receive(50 * time.Millisecond); frame != nil {
		t.Errorf("Expected nil on timeout, got %s", frame)
	}
	if frame := js.Receive(0); frame != nil {
		t.Errorf("Expected nil on non-blocking poll, got %s", frame)
	}
}

func TestLifecycleErrors(t *testing.T) {
	srv := echoServer(t)
	js := NewJSONSocket(wsURL(srv), nil)
	if err := js.Send([]byte("{}")); !errors.Is(err, ErrSocketClosed) {
		t.Errorf("Expected ErrSocketClosed before Connect, got %v", err)
	}
	if err := js.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if err := js.Connect(context.Background()); !errors.Is(err, ErrSocketAlreadyOpen) {
		t.Errorf("Expected ErrSocketAlreadyOpen, got %v", err)
	}
	if err := js.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := js.Connect(context.Background()); !errors.Is(err, ErrSocketClosed) {
		t.Errorf("Expected ErrSocketClosed after Close, got %v", err)
	}
}

func TestAutoReconnect(t *testing.T) {
	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		if conns.Add(1) == 1 {
			// The first connection dies immediately to force a redial.
			conn.CloseNow()
			return
		}
		defer conn.CloseNow()
		for {
			msgType, data, err := conn.Read(r.Context())
			if err != nil {
				return
			}
			if err = conn.Write(r.Context(), msgType, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	oldBase, oldJitter := ReconnectBaseDelay, ReconnectJitter
	ReconnectBaseDelay, ReconnectJitter = 10*time.Millisecond, 0
	defer func() {
		ReconnectBaseDelay, ReconnectJitter = oldBase, oldJitter
	}()

	js := NewJSONSocket(wsURL(srv), nil)
	disconnects := make(chan bool, 4)
	js.OnDisconnect = func(remote bool) {
		disconnects <- remote
	}
	if err := js.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer js.Close()

	select {
	case remote := <-disconnects:
		if !remote {
			t.Errorf("Expected a remote disconnect")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for the disconnect hook")
	}

	// The socket redials on its own; once it's back up, frames flow again.
	deadline := time.Now().Add(5 * time.Second)
	for !js.IsConnected() {
		if time.Now().After(deadline) {
			t.Fatalf("socket did not reconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
	payload := `{"@type":"ping"}`
	if err := js.Send([]byte(payload)); err != nil {
		t.Fatalf("Send after reconnect failed: %v", err)
	}
	if frame := js.Receive(5 * time.Second); string(frame) != payload {
		t.Errorf("Expected echo after reconnect, got %s", frame)
	}
	if got := conns.Load(); got < 2 {
		t.Errorf("Expected at least 2 connections, got %d", got)
	}
}
