// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package events contains all the events that tdsync.Client emits to functions registered with AddEventHandler.
//
// Events that republish a backend update carry the decoded update payload
// untouched in their Raw field: identifying keys (chat id, message id,
// ordering key) keep the exact representation the backend sent, and events
// are delivered in arrival order. Consumers that track chat-list positions
// rely on both.
package events

import (
	"github.com/fernwire/tdsync/tdjson"
	"github.com/fernwire/tdsync/types"
)

// Version is emitted once the backend has announced its version during
// startup, which doubles as the readiness signal for the event stream.
type Version struct {
	Version string
}

// AuthorizationState is emitted whenever the backend's authorization phase
// changes. The two parameter-request phases are already answered by the
// client itself before this event reaches subscribers.
type AuthorizationState struct {
	State types.AuthorizationState
	Raw   tdjson.Object // the authorization_state object
}

// ConnectionState is emitted whenever the backend's network phase changes.
type ConnectionState struct {
	State types.ConnectionState
}

// Option is emitted for every option value pushed by the backend.
type Option struct {
	Name  string
	Value tdjson.Object // the option_value object
}

// OwnUserID is emitted when the reserved my_id option reveals which user the
// client is authenticated as. Before this event, own-user lookups are absent.
type OwnUserID struct {
	UserID int64
}

// User is emitted when a full user record is pushed.
type User struct {
	UserID int64
	User   tdjson.Object
}

// UserStatus is emitted when only a user's presence changes. The store has
// already merged the status into the existing user record at this point.
type UserStatus struct {
	UserID int64
	Status tdjson.Object
}

// NewChat is emitted when a chat is first seen. Replays of the same chat are
// possible after reconnects; the stored record stays unique.
type NewChat struct {
	ChatID int64
	Chat   tdjson.Object
}

// UnreadMessageCount is emitted when the main chat list's unread message
// counters change. Counters scoped to other chat lists are dropped before
// this point.
type UnreadMessageCount struct {
	Counts tdjson.Object
}

// UnreadChatCount is emitted when the main chat list's unread chat counters
// change.
type UnreadChatCount struct {
	Counts tdjson.Object
}

// ChatLastMessage is emitted when a chat's last message summary changes.
type ChatLastMessage struct {
	ChatID int64
	Raw    tdjson.Object
}

// ChatOrder is emitted when a chat's position key changes.
type ChatOrder struct {
	ChatID int64
	Order  string
	Raw    tdjson.Object
}

// ChatReadInbox is emitted when the unread count or last-read inbound message
// of a chat changes.
type ChatReadInbox struct {
	ChatID      int64
	UnreadCount int
	Raw         tdjson.Object
}

// ChatReadOutbox is emitted when the last-read outbound message of a chat
// changes.
type ChatReadOutbox struct {
	ChatID int64
	Raw    tdjson.Object
}

// ChatOnlineMemberCount is emitted when the number of online members changes
// in a group chat.
type ChatOnlineMemberCount struct {
	ChatID            int64
	OnlineMemberCount int
	Raw               tdjson.Object
}

// ChatNotificationSettings is emitted when a chat's notification settings
// change.
type ChatNotificationSettings struct {
	ChatID int64
	Raw    tdjson.Object
}

// BasicGroup is emitted when a basic group snapshot is pushed.
type BasicGroup struct {
	GroupID int64
	Group   tdjson.Object
}

// SuperGroup is emitted when a supergroup or channel snapshot is pushed.
type SuperGroup struct {
	GroupID int64
	Group   tdjson.Object
}

// File is emitted when a file's local or remote state changes, e.g. download
// progress.
type File struct {
	FileID int64
	File   tdjson.Object
}

// NewMessage is emitted when a message arrives in any chat.
type NewMessage struct {
	ChatID  int64
	Message tdjson.Object
}

// Message is emitted when the backend answers a single-message query.
type Message struct {
	MessageID int64
	Message   tdjson.Object
}

// Messages is emitted when the backend answers a message-history query.
type Messages struct {
	TotalCount int
	Messages   []tdjson.Object
}

// MessageSendSucceeded is emitted when a sent message is acknowledged. The
// message was known under OldMessageID while in flight; consumers holding
// optimistic local state reconcile it to MessageID.
type MessageSendSucceeded struct {
	MessageID    int64
	OldMessageID int64
	Message      tdjson.Object
}

// MessageContent is emitted when an existing message's content is edited.
type MessageContent struct {
	ChatID     int64
	MessageID  int64
	NewContent tdjson.Object
}

// MessagesDeleted is emitted when messages are removed from a chat. Parent
// entities are never deleted, only message-level data.
type MessagesDeleted struct {
	ChatID     int64
	MessageIDs []int64
	Raw        tdjson.Object
}

// ActiveNotifications is emitted with the full snapshot of notification
// groups that are currently active. An empty snapshot clears everything.
type ActiveNotifications struct {
	Groups []tdjson.Object
}

// NotificationGroup is emitted when a notification group changes as a whole:
// notifications added or removed, or the group rebound to another chat.
type NotificationGroup struct {
	GroupID int64
	ChatID  int64
	Raw     tdjson.Object
}

// Notification is emitted when a single notification inside a group changes.
type Notification struct {
	GroupID      int64
	Notification tdjson.Object
}

// BackendError is emitted when the backend reports an error object on the
// event stream. Errors are informational here; request-level error handling
// is the collaborator's business.
type BackendError struct {
	Code    int
	Message string
	Raw     tdjson.Object
}
