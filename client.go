// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package tdsync implements a client-side synchronization engine for a
// TDLib-style JSON backend. It drains the backend's update stream on a
// dedicated goroutine, folds the updates into an in-memory state store and
// republishes them as typed events that any number of subscribers can consume
// without ever blocking the drain loop.
package tdsync

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/fernwire/tdsync/store"
	"github.com/fernwire/tdsync/tdjson"
	tdLog "github.com/fernwire/tdsync/util/log"
)

// EventHandler is a function that can handle events from the backend.
type EventHandler func(evt any)
type updateHandler func(update tdjson.Object)

// Backend is the transport the client drains updates from and hands requests
// to. Requests are fire and forget: the backend reports delivery problems
// through its own update stream, not through Send's return value.
//
// Receive blocks for at most the given timeout and returns nil when nothing
// arrived in time. Implementations must support Send being called from any
// goroutine; Receive is only ever called from the client's receiver loop.
type Backend interface {
	Send(payload []byte) error
	Receive(timeout time.Duration) []byte
	Close() error
}

var nextHandlerID uint32

type wrappedEventHandler struct {
	fn EventHandler
	id uint32
}

// Client contains everything necessary to mirror and interact with a backend
// instance.
type Client struct {
	Store *store.Store
	Log   tdLog.Logger

	recvLog tdLog.Logger
	sendLog tdLog.Logger

	backend Backend
	config  *Config

	updateHandlers map[string]updateHandler

	eventQueue        chan any
	eventHandlers     []wrappedEventHandler
	eventHandlersLock sync.RWMutex

	// runLock guards the lifecycle fields below, not the backend itself.
	runLock      sync.Mutex
	stopReceiver chan struct{}
	receiverDone chan struct{}
	eventsDone   chan struct{}
}

const (
	eventQueueSize = 2048

	// How long a single backend pull may block. The receiver loop notices a
	// stop request within this bound.
	receiveTimeout = 1 * time.Second

	// How long Disconnect waits for queued events to be delivered before
	// giving up on them.
	disconnectTimeout = 3 * time.Second
)

// NewClient wraps a backend in a synchronization client.
//
// The backend must be set. The config is validated here so a broken handshake
// surfaces at construction time rather than as a silent authorization stall.
//
// The logger can be nil, it will default to a no-op logger.
func NewClient(backend Backend, config *Config, log tdLog.Logger) (*Client, error) {
	if backend == nil {
		return nil, ErrNoBackend
	}
	if config == nil {
		return nil, ErrNoConfig
	}
	if log == nil {
		log = tdLog.Noop
	}
	config.applyDefaults()
	if err := config.validateConfig(); err != nil {
		return nil, err
	}
	cli := &Client{
		Store:   store.New(),
		Log:     log,
		recvLog: log.Sub("Recv"),
		sendLog: log.Sub("Send"),

		backend: backend,
		config:  config,

		eventHandlers: make([]wrappedEventHandler, 0, 1),
		eventQueue:    make(chan any, eventQueueSize),
	}
	cli.updateHandlers = map[string]updateHandler{
		"updateAuthorizationState":       cli.handleAuthorizationState,
		"updateConnectionState":          cli.handleConnectionState,
		"updateOption":                   cli.handleOption,
		"updateUser":                     cli.handleUser,
		"updateUserStatus":               cli.handleUserStatus,
		"updateNewChat":                  cli.handleNewChat,
		"updateUnreadMessageCount":       cli.handleUnreadMessageCount,
		"updateUnreadChatCount":          cli.handleUnreadChatCount,
		"updateChatLastMessage":          cli.handleChatLastMessage,
		"updateChatOrder":                cli.handleChatOrder,
		"updateChatReadInbox":            cli.handleChatReadInbox,
		"updateChatReadOutbox":           cli.handleChatReadOutbox,
		"updateChatOnlineMemberCount":    cli.handleChatOnlineMemberCount,
		"updateChatNotificationSettings": cli.handleChatNotificationSettings,
		"updateBasicGroup":               cli.handleBasicGroup,
		"updateSupergroup":               cli.handleSuperGroup,
		"updateFile":                     cli.handleFile,
		"updateNewMessage":               cli.handleNewMessage,
		"updateMessageContent":           cli.handleMessageContent,
		"updateMessageSendSucceeded":     cli.handleMessageSendSucceeded,
		"updateDeleteMessages":           cli.handleDeleteMessages,
		"updateActiveNotifications":      cli.handleActiveNotifications,
		"updateNotificationGroup":        cli.handleNotificationGroup,
		"updateNotification":             cli.handleNotification,

		"messages": cli.handleMessages,
		"message":  cli.handleMessage,
		"error":    cli.handleError,
	}
	return cli, nil
}

// Connect starts the receiver loop and the event delivery loop, then sends
// the startup requests the backend expects from a fresh client. The
// authorization handshake itself is driven reactively by the incoming
// authorization state updates.
func (cli *Client) Connect() error {
	cli.runLock.Lock()
	defer cli.runLock.Unlock()
	if cli.stopReceiver != nil {
		return ErrAlreadyConnected
	}
	cli.stopReceiver = make(chan struct{})
	cli.receiverDone = make(chan struct{})
	cli.eventsDone = make(chan struct{})
	go cli.eventQueueLoop(cli.receiverDone, cli.eventsDone)
	go cli.receiveLoop(cli.stopReceiver, cli.receiverDone)
	cli.sendStartupRequests()
	return nil
}

// IsConnected reports whether the receiver loop is running.
func (cli *Client) IsConnected() bool {
	cli.runLock.Lock()
	defer cli.runLock.Unlock()
	return cli.stopReceiver != nil
}

// Disconnect stops the receiver loop and waits for already queued events to
// be delivered, up to a bounded grace period. The backend itself stays open;
// the owner of the backend decides when to Close it.
func (cli *Client) Disconnect() {
	cli.runLock.Lock()
	defer cli.runLock.Unlock()
	if cli.stopReceiver == nil {
		return
	}
	close(cli.stopReceiver)
	select {
	case <-cli.eventsDone:
	case <-time.After(disconnectTimeout):
		cli.Log.Warnf("Timed out waiting for queued events to be delivered")
	}
	cli.stopReceiver = nil
}

// AddEventHandler registers a new function to receive all events emitted by this client.
//
// The returned integer is the event handler ID, which can be passed to RemoveEventHandler to remove it.
//
// All registered event handlers will receive all events. You should use a type switch statement to
// filter the events you want:
//
//	func myEventHandler(evt any) {
//		switch v := evt.(type) {
//		case *events.NewMessage:
//			fmt.Println("Received a message in chat", v.ChatID)
//		case *events.ChatOrder:
//			fmt.Println("Chat", v.ChatID, "moved to", v.Order)
//		}
//	}
func (cli *Client) AddEventHandler(handler EventHandler) uint32 {
	nextID := atomic.AddUint32(&nextHandlerID, 1)
	cli.eventHandlersLock.Lock()
	cli.eventHandlers = append(cli.eventHandlers, wrappedEventHandler{handler, nextID})
	cli.eventHandlersLock.Unlock()
	return nextID
}

// RemoveEventHandler removes a previously registered event handler function.
// If the function with the given ID is found, this returns true.
func (cli *Client) RemoveEventHandler(id uint32) bool {
	cli.eventHandlersLock.Lock()
	defer cli.eventHandlersLock.Unlock()
	for index := range cli.eventHandlers {
		if cli.eventHandlers[index].id == id {
			if index == 0 {
				cli.eventHandlers[0].fn = nil
				cli.eventHandlers = cli.eventHandlers[1:]
				return true
			} else if index < len(cli.eventHandlers)-1 {
				copy(cli.eventHandlers[index:], cli.eventHandlers[index+1:])
			}
			cli.eventHandlers[len(cli.eventHandlers)-1].fn = nil
			cli.eventHandlers = cli.eventHandlers[:len(cli.eventHandlers)-1]
			return true
		}
	}
	return false
}

// RemoveEventHandlers removes all event handlers that have been registered with AddEventHandler
func (cli *Client) RemoveEventHandlers() {
	cli.eventHandlersLock.Lock()
	cli.eventHandlers = make([]wrappedEventHandler, 0, 1)
	cli.eventHandlersLock.Unlock()
}

// queueEvent hands an event to the delivery loop. Dropping on overflow keeps
// the receiver loop from ever blocking on a slow subscriber; delivered events
// always stay in arrival order.
func (cli *Client) queueEvent(evt any) {
	select {
	case cli.eventQueue <- evt:
	default:
		cli.Log.Warnf("Event queue is full, dropping %T", evt)
	}
}

func (cli *Client) eventQueueLoop(receiverDone <-chan struct{}, eventsDone chan<- struct{}) {
	defer close(eventsDone)
	for {
		select {
		case evt := <-cli.eventQueue:
			cli.dispatchEvent(evt)
		case <-receiverDone:
			// The receiver has stopped queueing; deliver what is left.
			for {
				select {
				case evt := <-cli.eventQueue:
					cli.dispatchEvent(evt)
				default:
					return
				}
			}
		}
	}
}

func (cli *Client) dispatchEvent(evt any) {
	cli.eventHandlersLock.RLock()
	for _, handler := range cli.eventHandlers {
		handler.fn(evt)
	}
	cli.eventHandlersLock.RUnlock()
}
