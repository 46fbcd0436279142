// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package store keeps the authoritative in-memory mirror of the backend's
// state: chats, users, both group kinds, files, options, unread counters and
// the current authorization/connection state.
//
// All writes come from the client's dispatcher, which runs handlers
// sequentially, so there is exactly one logical writer. Readers can call any
// accessor from any goroutine. Mutations swap fully built objects under the
// write lock, so a reader observes either the previous or the new record,
// never a half-applied one - stored objects must not be modified in place.
package store

import (
	"sync"

	"go.mau.fi/util/exsync"

	"github.com/fernwire/tdsync/tdjson"
	"github.com/fernwire/tdsync/types"
)

type Store struct {
	chats     map[int64]tdjson.Object
	chatsLock sync.RWMutex

	users     map[int64]tdjson.Object
	usersLock sync.RWMutex

	// Basic and super groups have independently assigned id spaces, so they
	// stay in two maps. GroupByID encodes the only valid fallback order.
	basicGroups map[int64]tdjson.Object
	superGroups map[int64]tdjson.Object
	groupsLock  sync.RWMutex

	files     map[int64]tdjson.Object
	filesLock sync.RWMutex

	options *exsync.Map[string, any]

	stateLock           sync.RWMutex
	authorizationState  types.AuthorizationState
	connectionState     types.ConnectionState
	unreadMessageCounts tdjson.Object
	unreadChatCounts    tdjson.Object
	version             string
	ownUserID           int64
}

func New() *Store {
	return &Store{
		chats:       make(map[int64]tdjson.Object),
		users:       make(map[int64]tdjson.Object),
		basicGroups: make(map[int64]tdjson.Object),
		superGroups: make(map[int64]tdjson.Object),
		files:       make(map[int64]tdjson.Object),
		options:     exsync.NewMap[string, any](),
	}
}

// UpsertChat applies a chat discovery. The first sighting stores the record
// as-is and returns true; replays merge the payload into the existing record
// so previously applied field updates survive.
func (s *Store) UpsertChat(chatID int64, chat tdjson.Object) (created bool) {
	s.chatsLock.Lock()
	defer s.chatsLock.Unlock()
	existing, ok := s.chats[chatID]
	if !ok {
		s.chats[chatID] = chat
		return true
	}
	s.chats[chatID] = existing.Merge(chat)
	return false
}

// PatchChat merges individual fields into a chat record, creating a skeleton
// record when the chat has not been discovered yet. Values are stored exactly
// as decoded from the wire.
func (s *Store) PatchChat(chatID int64, patch tdjson.Object) {
	s.chatsLock.Lock()
	defer s.chatsLock.Unlock()
	existing, ok := s.chats[chatID]
	if !ok {
		existing = tdjson.Object{"id": chatID}
	}
	s.chats[chatID] = existing.Merge(patch)
}

// Chat returns the chat record for the given id. The returned object is
// shared and must be treated as read-only.
func (s *Store) Chat(chatID int64) (tdjson.Object, bool) {
	s.chatsLock.RLock()
	defer s.chatsLock.RUnlock()
	chat, ok := s.chats[chatID]
	return chat, ok
}

// ChatCount returns the number of known chats.
func (s *Store) ChatCount() int {
	s.chatsLock.RLock()
	defer s.chatsLock.RUnlock()
	return len(s.chats)
}

// UpsertUser merges a full user record into the user map.
func (s *Store) UpsertUser(userID int64, user tdjson.Object) {
	s.usersLock.Lock()
	defer s.usersLock.Unlock()
	s.users[userID] = s.users[userID].Merge(user)
}

// MergeUserStatus replaces only the status field of a user record, keeping
// everything else. A status for an unknown user creates a stub record so the
// status is not lost; the full record fills in when it arrives.
func (s *Store) MergeUserStatus(userID int64, status tdjson.Object) {
	s.usersLock.Lock()
	defer s.usersLock.Unlock()
	existing, ok := s.users[userID]
	if !ok {
		existing = tdjson.Object{"id": userID}
	}
	s.users[userID] = existing.With("status", status)
}

// User returns the user record for the given id.
func (s *Store) User(userID int64) (tdjson.Object, bool) {
	s.usersLock.RLock()
	defer s.usersLock.RUnlock()
	user, ok := s.users[userID]
	return user, ok
}

// OwnUser returns the record of the authenticated user. Until the my_id
// option has arrived this is absent, not an error.
func (s *Store) OwnUser() (tdjson.Object, bool) {
	ownID := s.OwnUserID()
	if ownID == 0 {
		return nil, false
	}
	return s.User(ownID)
}

// IsSelf reports whether the id refers to the authenticated user. Always
// false before the my_id option has arrived.
func (s *Store) IsSelf(userID int64) bool {
	ownID := s.OwnUserID()
	return ownID != 0 && userID == ownID
}

// UpdateBasicGroup stores a basic group snapshot, lazily creating the map
// slot. Snapshots are complete, so the previous record is replaced.
func (s *Store) UpdateBasicGroup(groupID int64, group tdjson.Object) {
	s.groupsLock.Lock()
	defer s.groupsLock.Unlock()
	s.basicGroups[groupID] = group
}

// UpdateSuperGroup stores a supergroup snapshot, replacing the previous one.
func (s *Store) UpdateSuperGroup(groupID int64, group tdjson.Object) {
	s.groupsLock.Lock()
	defer s.groupsLock.Unlock()
	s.superGroups[groupID] = group
}

// BasicGroup returns the basic group with the given id.
func (s *Store) BasicGroup(groupID int64) (tdjson.Object, bool) {
	s.groupsLock.RLock()
	defer s.groupsLock.RUnlock()
	group, ok := s.basicGroups[groupID]
	return group, ok
}

// SuperGroup returns the supergroup with the given id.
func (s *Store) SuperGroup(groupID int64) (tdjson.Object, bool) {
	s.groupsLock.RLock()
	defer s.groupsLock.RUnlock()
	group, ok := s.superGroups[groupID]
	return group, ok
}

// GroupByID looks a group up by id across both kinds, supergroups first.
// A chat that was promoted keeps its basic group record around, so the
// supergroup record has to win. Absence is a valid result.
func (s *Store) GroupByID(groupID int64) (tdjson.Object, bool) {
	s.groupsLock.RLock()
	defer s.groupsLock.RUnlock()
	if group, ok := s.superGroups[groupID]; ok {
		return group, ok
	}
	group, ok := s.basicGroups[groupID]
	return group, ok
}

// GroupMemberStatus returns the own membership status recorded in the group
// snapshot, ChatMemberStatusUnknown when the group or its status is missing.
func (s *Store) GroupMemberStatus(groupID int64) types.ChatMemberStatus {
	group, ok := s.GroupByID(groupID)
	if !ok {
		return types.ChatMemberStatusUnknown
	}
	return memberStatus(group)
}

// ChatMemberStatus resolves the own membership status for a group chat by
// following the chat's type descriptor to the matching group record. Chats
// without a group behind them have no membership, which reads as Unknown.
func (s *Store) ChatMemberStatus(chatID int64) types.ChatMemberStatus {
	chat, ok := s.Chat(chatID)
	if !ok {
		return types.ChatMemberStatusUnknown
	}
	chatType := chat.Object("type")
	switch chatType.Type() {
	case "chatTypeBasicGroup":
		if group, ok := s.BasicGroup(chatType.Int64("basic_group_id")); ok {
			return memberStatus(group)
		}
	case "chatTypeSupergroup":
		if group, ok := s.SuperGroup(chatType.Int64("supergroup_id")); ok {
			return memberStatus(group)
		}
	}
	return types.ChatMemberStatusUnknown
}

func memberStatus(group tdjson.Object) types.ChatMemberStatus {
	status := group.Object("status")
	if status == nil {
		return types.ChatMemberStatusUnknown
	}
	return types.ParseChatMemberStatus(status.Type())
}

// SetFile stores a file state snapshot.
func (s *Store) SetFile(fileID int64, file tdjson.Object) {
	s.filesLock.Lock()
	defer s.filesLock.Unlock()
	s.files[fileID] = file
}

// File returns the last known state of the given file.
func (s *Store) File(fileID int64) (tdjson.Object, bool) {
	s.filesLock.RLock()
	defer s.filesLock.RUnlock()
	file, ok := s.files[fileID]
	return file, ok
}

// SetOption stores an option scalar pushed by the backend.
func (s *Store) SetOption(name string, value any) {
	s.options.Set(name, value)
}

// Option returns the current value of a backend option.
func (s *Store) Option(name string) (any, bool) {
	return s.options.Get(name)
}

// SetUnreadMessageCounts replaces the unread message counter record. The
// dispatcher only forwards main-list counters here.
func (s *Store) SetUnreadMessageCounts(counts tdjson.Object) {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()
	s.unreadMessageCounts = counts
}

// UnreadMessageCounts returns the unread message counters of the main chat
// list, nil until the first update arrives.
func (s *Store) UnreadMessageCounts() tdjson.Object {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()
	return s.unreadMessageCounts
}

// SetUnreadChatCounts replaces the unread chat counter record.
func (s *Store) SetUnreadChatCounts(counts tdjson.Object) {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()
	s.unreadChatCounts = counts
}

// UnreadChatCounts returns the unread chat counters of the main chat list.
func (s *Store) UnreadChatCounts() tdjson.Object {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()
	return s.unreadChatCounts
}

// SetAuthorizationState records the current authorization phase.
func (s *Store) SetAuthorizationState(state types.AuthorizationState) {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()
	s.authorizationState = state
}

// AuthorizationState returns the current authorization phase.
func (s *Store) AuthorizationState() types.AuthorizationState {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()
	return s.authorizationState
}

// SetConnectionState records the current network phase.
func (s *Store) SetConnectionState(state types.ConnectionState) {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()
	s.connectionState = state
}

// ConnectionState returns the current network phase.
func (s *Store) ConnectionState() types.ConnectionState {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()
	return s.connectionState
}

// SetVersion records the backend version announced during startup.
func (s *Store) SetVersion(version string) {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()
	s.version = version
}

// Version returns the backend version, "" before startup completed.
func (s *Store) Version() string {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()
	return s.version
}

// SetOwnUserID records the authenticated user's id from the my_id option.
func (s *Store) SetOwnUserID(userID int64) {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()
	s.ownUserID = userID
}

// OwnUserID returns the authenticated user's id, 0 while unknown.
func (s *Store) OwnUserID() int64 {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()
	return s.ownUserID
}
