// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package types contains the enumerations the backend models as tagged state
// objects, plus shared wire constants.
package types

// ChatListMain is the chat list scope whose unread counters are mirrored.
// Counter updates for archive or filter lists are ignored.
const ChatListMain = "chatListMain"

// AuthorizationState is the backend's authorization phase. The zero value is
// Unknown so an unseen state never reads as a real one.
type AuthorizationState int

const (
	AuthorizationStateUnknown AuthorizationState = iota
	AuthorizationStateClosed
	AuthorizationStateClosing
	AuthorizationStateLoggingOut
	AuthorizationStateReady
	AuthorizationStateWaitCode
	AuthorizationStateWaitEncryptionKey
	AuthorizationStateWaitOtherDeviceConfirmation
	AuthorizationStateWaitPassword
	AuthorizationStateWaitPhoneNumber
	AuthorizationStateWaitRegistration
	AuthorizationStateWaitTdlibParameters
)

var authorizationStateNames = map[string]AuthorizationState{
	"authorizationStateClosed":                      AuthorizationStateClosed,
	"authorizationStateClosing":                     AuthorizationStateClosing,
	"authorizationStateLoggingOut":                  AuthorizationStateLoggingOut,
	"authorizationStateReady":                       AuthorizationStateReady,
	"authorizationStateWaitCode":                    AuthorizationStateWaitCode,
	"authorizationStateWaitEncryptionKey":           AuthorizationStateWaitEncryptionKey,
	"authorizationStateWaitOtherDeviceConfirmation": AuthorizationStateWaitOtherDeviceConfirmation,
	"authorizationStateWaitPassword":                AuthorizationStateWaitPassword,
	"authorizationStateWaitPhoneNumber":             AuthorizationStateWaitPhoneNumber,
	"authorizationStateWaitRegistration":            AuthorizationStateWaitRegistration,
	"authorizationStateWaitTdlibParameters":         AuthorizationStateWaitTdlibParameters,
}

// ParseAuthorizationState maps a wire state name to the enumeration.
// Unrecognized names map to Unknown, never an error: new states the backend
// grows must not break dispatch.
func ParseAuthorizationState(name string) AuthorizationState {
	return authorizationStateNames[name]
}

func (as AuthorizationState) String() string {
	for name, val := range authorizationStateNames {
		if val == as {
			return name
		}
	}
	return "authorizationStateUnknown"
}

// ConnectionState is the backend's network phase. Transitions are republished
// as-is; reconnection is the backend's own job.
type ConnectionState int

const (
	ConnectionStateUnknown ConnectionState = iota
	ConnectionStateConnecting
	ConnectionStateConnectingToProxy
	ConnectionStateReady
	ConnectionStateUpdating
	ConnectionStateWaitingForNetwork
)

var connectionStateNames = map[string]ConnectionState{
	"connectionStateConnecting":        ConnectionStateConnecting,
	"connectionStateConnectingToProxy": ConnectionStateConnectingToProxy,
	"connectionStateReady":             ConnectionStateReady,
	"connectionStateUpdating":          ConnectionStateUpdating,
	"connectionStateWaitingForNetwork": ConnectionStateWaitingForNetwork,
}

// ParseConnectionState maps a wire state name to the enumeration, Unknown for
// unrecognized names.
func ParseConnectionState(name string) ConnectionState {
	return connectionStateNames[name]
}

func (cs ConnectionState) String() string {
	for name, val := range connectionStateNames {
		if val == cs {
			return name
		}
	}
	return "connectionStateUnknown"
}

// ChatMemberStatus is the own membership status inside a group, parsed out of
// the status sub-object of group snapshots.
type ChatMemberStatus int

const (
	ChatMemberStatusUnknown ChatMemberStatus = iota
	ChatMemberStatusCreator
	ChatMemberStatusAdministrator
	ChatMemberStatusMember
	ChatMemberStatusRestricted
	ChatMemberStatusLeft
	ChatMemberStatusBanned
)

var chatMemberStatusNames = map[string]ChatMemberStatus{
	"chatMemberStatusCreator":       ChatMemberStatusCreator,
	"chatMemberStatusAdministrator": ChatMemberStatusAdministrator,
	"chatMemberStatusMember":        ChatMemberStatusMember,
	"chatMemberStatusRestricted":    ChatMemberStatusRestricted,
	"chatMemberStatusLeft":          ChatMemberStatusLeft,
	"chatMemberStatusBanned":        ChatMemberStatusBanned,
}

// ParseChatMemberStatus maps a wire status name to the enumeration, Unknown
// for unrecognized names.
func ParseChatMemberStatus(name string) ChatMemberStatus {
	return chatMemberStatusNames[name]
}

func (cms ChatMemberStatus) String() string {
	for name, val := range chatMemberStatusNames {
		if val == cms {
			return name
		}
	}
	return "chatMemberStatusUnknown"
}
