// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package store

import (
	"testing"

	"github.com/fernwire/tdsync/tdjson"
	"github.com/fernwire/tdsync/types"
)

func TestUserMergeSequence(t *testing.T) {
	s := New()

	s.UpsertUser(1001, tdjson.Object{
		"@type":      "user",
		"id":         int64(1001),
		"first_name": "A",
		"username":   "a_user",
	})
	s.MergeUserStatus(1001, tdjson.Object{"@type": "userStatusOnline", "expires": int64(300)})

	user, ok := s.User(1001)
	if !ok {
		t.Fatalf("user 1001 not found after upsert")
	}
	if user.String("first_name") != "A" {
		t.Errorf("Expected first_name 'A', got '%s'", user.String("first_name"))
	}
	status := user.Object("status")
	if status == nil || status.Type() != "userStatusOnline" {
		t.Errorf("Expected status userStatusOnline, got %v", status)
	}

	// A later full user update must not wipe the merged status either.
	s.UpsertUser(1001, tdjson.Object{
		"@type":      "user",
		"id":         int64(1001),
		"first_name": "Alice",
	})
	user, _ = s.User(1001)
	if user.String("first_name") != "Alice" {
		t.Errorf("Expected first_name 'Alice', got '%s'", user.String("first_name"))
	}
	if user.String("username") != "a_user" {
		t.Errorf("Expected username to survive partial update, got '%s'", user.String("username"))
	}
	status = user.Object("status")
	if status == nil || status.Type() != "userStatusOnline" {
		t.Errorf("Expected status to survive full user update, got %v", status)
	}
}

func TestUserStatusBeforeUser(t *testing.T) {
	s := New()

	s.MergeUserStatus(42, tdjson.Object{"@type": "userStatusRecently"})
	user, ok := s.User(42)
	if !ok {
		t.Fatalf("status update should create a stub user record")
	}
	if user.Int64("id") != 42 {
		t.Errorf("Expected stub id 42, got %d", user.Int64("id"))
	}

	s.UpsertUser(42, tdjson.Object{"@type": "user", "id": int64(42), "first_name": "B"})
	user, _ = s.User(42)
	if user.String("first_name") != "B" {
		t.Errorf("Expected first_name 'B', got '%s'", user.String("first_name"))
	}
	if status := user.Object("status"); status == nil || status.Type() != "userStatusRecently" {
		t.Errorf("Expected early status to survive, got %v", status)
	}
}

func TestOwnUser(t *testing.T) {
	s := New()

	if _, ok := s.OwnUser(); ok {
		t.Errorf("OwnUser should be absent before the own id is known")
	}
	if s.IsSelf(1001) {
		t.Errorf("IsSelf must be false before the own id is known")
	}

	s.SetOwnUserID(1001)
	s.UpsertUser(1001, tdjson.Object{"@type": "user", "id": int64(1001), "first_name": "A"})
	s.MergeUserStatus(1001, tdjson.Object{"@type": "userStatusOnline"})

	own, ok := s.OwnUser()
	if !ok {
		t.Fatalf("OwnUser not found after id and record arrived")
	}
	if own.String("first_name") != "A" {
		t.Errorf("Expected own first_name 'A', got '%s'", own.String("first_name"))
	}
	if status := own.Object("status"); status == nil || status.Type() != "userStatusOnline" {
		t.Errorf("Expected own status userStatusOnline, got %v", status)
	}
	if !s.IsSelf(1001) {
		t.Errorf("IsSelf(1001) should be true")
	}
	if s.IsSelf(1002) {
		t.Errorf("IsSelf(1002) should be false")
	}
}

func TestChatDiscoveryIdempotent(t *testing.T) {
	s := New()

	discovery := tdjson.Object{
		"@type":        "chat",
		"id":           int64(-10012345),
		"title":        "Test Chat",
		"order":        "100",
		"unread_count": int64(3),
	}
	if created := s.UpsertChat(-10012345, discovery); !created {
		t.Errorf("first discovery should report created")
	}

	s.PatchChat(-10012345, tdjson.Object{"order": "250"})

	// The backend may replay the discovery; applied field updates must survive.
	if created := s.UpsertChat(-10012345, discovery.Clone()); created {
		t.Errorf("replayed discovery should not report created")
	}
	chat, ok := s.Chat(-10012345)
	if !ok {
		t.Fatalf("chat not found after discovery")
	}
	if chat.String("order") != "250" {
		t.Errorf("Expected order '250' after replayed discovery, got '%s'", chat.String("order"))
	}
	if chat.String("title") != "Test Chat" {
		t.Errorf("Expected title 'Test Chat', got '%s'", chat.String("title"))
	}
	if s.ChatCount() != 1 {
		t.Errorf("Expected 1 chat, got %d", s.ChatCount())
	}
}

func TestPatchChatBeforeDiscovery(t *testing.T) {
	s := New()

	s.PatchChat(77, tdjson.Object{"unread_count": int64(5)})
	chat, ok := s.Chat(77)
	if !ok {
		t.Fatalf("patch should create a skeleton chat record")
	}
	if chat.Int64("id") != 77 {
		t.Errorf("Expected skeleton id 77, got %d", chat.Int64("id"))
	}
	if chat.Int64("unread_count") != 5 {
		t.Errorf("Expected unread_count 5, got %d", chat.Int64("unread_count"))
	}
}

func TestGroupLookupFallback(t *testing.T) {
	s := New()

	s.UpdateBasicGroup(10, tdjson.Object{"@type": "basicGroup", "id": int64(10), "member_count": int64(5)})
	s.UpdateSuperGroup(20, tdjson.Object{"@type": "supergroup", "id": int64(20), "member_count": int64(5000)})

	if group, ok := s.GroupByID(10); !ok || group.Type() != "basicGroup" {
		t.Errorf("Expected basic group for id 10, got %v (found: %v)", group, ok)
	}
	if group, ok := s.GroupByID(20); !ok || group.Type() != "supergroup" {
		t.Errorf("Expected supergroup for id 20, got %v (found: %v)", group, ok)
	}
	if _, ok := s.GroupByID(30); ok {
		t.Errorf("Expected no group for id 30")
	}

	// A promoted group has records of both kinds; the supergroup one wins.
	s.UpdateSuperGroup(10, tdjson.Object{"@type": "supergroup", "id": int64(10), "member_count": int64(250)})
	group, ok := s.GroupByID(10)
	if !ok || group.Type() != "supergroup" {
		t.Errorf("Expected supergroup record to win for promoted group, got %v", group)
	}
	if group.Int64("member_count") != 250 {
		t.Errorf("Expected member_count 250, got %d", group.Int64("member_count"))
	}
	// The basic record is still reachable through the kind-specific accessor.
	if basic, ok := s.BasicGroup(10); !ok || basic.Type() != "basicGroup" {
		t.Errorf("Expected basic group record to remain, got %v", basic)
	}
}

func TestGroupMemberStatus(t *testing.T) {
	s := New()

	if status := s.GroupMemberStatus(10); status != types.ChatMemberStatusUnknown {
		t.Errorf("Expected Unknown for missing group, got %v", status)
	}

	s.UpdateBasicGroup(10, tdjson.Object{
		"@type":  "basicGroup",
		"id":     int64(10),
		"status": map[string]any{"@type": "chatMemberStatusMember"},
	})
	if status := s.GroupMemberStatus(10); status != types.ChatMemberStatusMember {
		t.Errorf("Expected Member, got %v", status)
	}

	s.UpdateSuperGroup(20, tdjson.Object{
		"@type":  "supergroup",
		"id":     int64(20),
		"status": map[string]any{"@type": "chatMemberStatusCreator"},
	})
	if status := s.GroupMemberStatus(20); status != types.ChatMemberStatusCreator {
		t.Errorf("Expected Creator, got %v", status)
	}

	s.UpdateBasicGroup(30, tdjson.Object{"@type": "basicGroup", "id": int64(30)})
	if status := s.GroupMemberStatus(30); status != types.ChatMemberStatusUnknown {
		t.Errorf("Expected Unknown for group without status, got %v", status)
	}
}

func TestChatMemberStatus(t *testing.T) {
	s := New()

	s.UpsertChat(-200, tdjson.Object{
		"@type": "chat",
		"id":    int64(-200),
		"type":  map[string]any{"@type": "chatTypeSupergroup", "supergroup_id": int64(20)},
	})
	s.UpdateSuperGroup(20, tdjson.Object{
		"@type":  "supergroup",
		"id":     int64(20),
		"status": map[string]any{"@type": "chatMemberStatusAdministrator"},
	})
	if status := s.ChatMemberStatus(-200); status != types.ChatMemberStatusAdministrator {
		t.Errorf("Expected Administrator, got %v", status)
	}

	s.UpsertChat(300, tdjson.Object{
		"@type": "chat",
		"id":    int64(300),
		"type":  map[string]any{"@type": "chatTypePrivate", "user_id": int64(1001)},
	})
	if status := s.ChatMemberStatus(300); status != types.ChatMemberStatusUnknown {
		t.Errorf("Expected Unknown for private chat, got %v", status)
	}

	if status := s.ChatMemberStatus(999); status != types.ChatMemberStatusUnknown {
		t.Errorf("Expected Unknown for unknown chat, got %v", status)
	}
}

func TestStateAndCounters(t *testing.T) {
	s := New()

	if s.AuthorizationState() != types.AuthorizationStateUnknown {
		t.Errorf("Expected initial authorization state Unknown")
	}
	s.SetAuthorizationState(types.AuthorizationStateReady)
	if s.AuthorizationState() != types.AuthorizationStateReady {
		t.Errorf("Expected Ready, got %v", s.AuthorizationState())
	}

	s.SetConnectionState(types.ConnectionStateUpdating)
	if s.ConnectionState() != types.ConnectionStateUpdating {
		t.Errorf("Expected Updating, got %v", s.ConnectionState())
	}

	if s.UnreadMessageCounts() != nil {
		t.Errorf("Expected nil unread message counts before first update")
	}
	counts := tdjson.Object{"@type": "updateUnreadMessageCount", "unread_count": int64(7)}
	s.SetUnreadMessageCounts(counts)
	if got := s.UnreadMessageCounts(); got.Int64("unread_count") != 7 {
		t.Errorf("Expected unread_count 7, got %d", got.Int64("unread_count"))
	}

	s.SetUnreadChatCounts(tdjson.Object{"@type": "updateUnreadChatCount", "unread_count": int64(2)})
	if got := s.UnreadChatCounts(); got.Int64("unread_count") != 2 {
		t.Errorf("Expected unread chat count 2, got %d", got.Int64("unread_count"))
	}

	s.SetVersion("1.8.51")
	if s.Version() != "1.8.51" {
		t.Errorf("Expected version 1.8.51, got %s", s.Version())
	}

	s.SetOption("message_text_length_max", int64(4096))
	value, ok := s.Option("message_text_length_max")
	if !ok || value.(int64) != 4096 {
		t.Errorf("Expected option 4096, got %v (found: %v)", value, ok)
	}
	if _, ok := s.Option("unset"); ok {
		t.Errorf("Expected unset option to be absent")
	}
}

func TestFileState(t *testing.T) {
	s := New()

	if _, ok := s.File(9); ok {
		t.Errorf("Expected no file state for unknown id")
	}
	s.SetFile(9, tdjson.Object{"@type": "file", "id": int64(9), "size": int64(1024)})
	file, ok := s.File(9)
	if !ok {
		t.Fatalf("file 9 not found after set")
	}
	if file.Int64("size") != 1024 {
		t.Errorf("Expected size 1024, got %d", file.Int64("size"))
	}
}
