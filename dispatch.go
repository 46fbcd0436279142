// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package tdsync

import (
	"github.com/fernwire/tdsync/tdjson"
	"github.com/fernwire/tdsync/types"
	"github.com/fernwire/tdsync/types/events"
)

// The handlers in this file fold one update each into the store and then
// republish it as a typed event. Payload objects go into events exactly as
// they came off the wire; derived convenience fields (ids, counts) are
// extracted next to them, never instead of them.

func (cli *Client) handleAuthorizationState(update tdjson.Object) {
	stateObj := update.Object("authorization_state")
	if stateObj == nil {
		return
	}
	state := types.ParseAuthorizationState(stateObj.Type())
	cli.Store.SetAuthorizationState(state)
	switch state {
	case types.AuthorizationStateWaitTdlibParameters:
		cli.sendInitialParameters()
	case types.AuthorizationStateWaitEncryptionKey:
		cli.sendDatabaseEncryptionKey()
	}
	cli.queueEvent(&events.AuthorizationState{State: state, Raw: stateObj})
}

func (cli *Client) handleConnectionState(update tdjson.Object) {
	stateObj := update.Object("state")
	if stateObj == nil {
		return
	}
	state := types.ParseConnectionState(stateObj.Type())
	cli.Store.SetConnectionState(state)
	cli.queueEvent(&events.ConnectionState{State: state})
}

func (cli *Client) handleOption(update tdjson.Object) {
	name := update.String("name")
	valueObj := update.Object("value")
	cli.Store.SetOption(name, optionScalar(valueObj))
	cli.queueEvent(&events.Option{Name: name, Value: valueObj})
	switch name {
	case "my_id":
		ownID := valueObj.Int64("value")
		if ownID != 0 {
			cli.Store.SetOwnUserID(ownID)
			cli.queueEvent(&events.OwnUserID{UserID: ownID})
		}
	case "version":
		version := valueObj.String("value")
		// Reconnects replay the option; announce each version only once.
		if version != cli.Store.Version() {
			cli.Store.SetVersion(version)
			cli.Log.Infof("Backend version %s detected", version)
			cli.queueEvent(&events.Version{Version: version})
		}
	}
}

// optionScalar unwraps an optionValue* wrapper object into the plain scalar
// kept in the store. optionValueEmpty and unknown wrappers become nil.
func optionScalar(value tdjson.Object) any {
	switch value.Type() {
	case "optionValueInteger":
		return value.Int64("value")
	case "optionValueBoolean":
		return value.Bool("value")
	case "optionValueString":
		return value.String("value")
	default:
		return nil
	}
}

func (cli *Client) handleUser(update tdjson.Object) {
	user := update.Object("user")
	if user == nil {
		return
	}
	userID := user.Int64("id")
	cli.Store.UpsertUser(userID, user)
	cli.queueEvent(&events.User{UserID: userID, User: user})
}

func (cli *Client) handleUserStatus(update tdjson.Object) {
	status := update.Object("status")
	if status == nil {
		return
	}
	userID := update.Int64("user_id")
	cli.Store.MergeUserStatus(userID, status)
	cli.queueEvent(&events.UserStatus{UserID: userID, Status: status})
}

func (cli *Client) handleNewChat(update tdjson.Object) {
	chat := update.Object("chat")
	if chat == nil {
		return
	}
	chatID := chat.Int64("id")
	cli.Store.UpsertChat(chatID, chat)
	cli.queueEvent(&events.NewChat{ChatID: chatID, Chat: chat})
}

// mainListOnly reports whether a counter update applies to the main chat
// list. Counters for archived or filtered lists are dropped; a missing scope
// means an older backend that only has the main list.
func mainListOnly(update tdjson.Object) bool {
	chatList := update.Object("chat_list")
	return chatList == nil || chatList.Type() == types.ChatListMain
}

func (cli *Client) handleUnreadMessageCount(update tdjson.Object) {
	if !mainListOnly(update) {
		return
	}
	cli.Store.SetUnreadMessageCounts(update)
	cli.queueEvent(&events.UnreadMessageCount{Counts: update})
}

func (cli *Client) handleUnreadChatCount(update tdjson.Object) {
	if !mainListOnly(update) {
		return
	}
	cli.Store.SetUnreadChatCounts(update)
	cli.queueEvent(&events.UnreadChatCount{Counts: update})
}

func (cli *Client) handleChatLastMessage(update tdjson.Object) {
	chatID := update.Int64("chat_id")
	patch := tdjson.Object{"last_message": update["last_message"]}
	if update.Has("order") {
		patch["order"] = update["order"]
	}
	cli.Store.PatchChat(chatID, patch)
	cli.queueEvent(&events.ChatLastMessage{ChatID: chatID, Raw: update})
}

func (cli *Client) handleChatOrder(update tdjson.Object) {
	chatID := update.Int64("chat_id")
	cli.Store.PatchChat(chatID, tdjson.Object{"order": update["order"]})
	cli.queueEvent(&events.ChatOrder{ChatID: chatID, Order: update.String("order"), Raw: update})
}

func (cli *Client) handleChatReadInbox(update tdjson.Object) {
	chatID := update.Int64("chat_id")
	cli.Store.PatchChat(chatID, tdjson.Object{
		"last_read_inbox_message_id": update["last_read_inbox_message_id"],
		"unread_count":               update["unread_count"],
	})
	cli.queueEvent(&events.ChatReadInbox{
		ChatID:      chatID,
		UnreadCount: update.Int("unread_count"),
		Raw:         update,
	})
}

func (cli *Client) handleChatReadOutbox(update tdjson.Object) {
	chatID := update.Int64("chat_id")
	cli.Store.PatchChat(chatID, tdjson.Object{
		"last_read_outbox_message_id": update["last_read_outbox_message_id"],
	})
	cli.queueEvent(&events.ChatReadOutbox{ChatID: chatID, Raw: update})
}

func (cli *Client) handleChatOnlineMemberCount(update tdjson.Object) {
	cli.queueEvent(&events.ChatOnlineMemberCount{
		ChatID:            update.Int64("chat_id"),
		OnlineMemberCount: update.Int("online_member_count"),
		Raw:               update,
	})
}

func (cli *Client) handleChatNotificationSettings(update tdjson.Object) {
	chatID := update.Int64("chat_id")
	cli.Store.PatchChat(chatID, tdjson.Object{
		"notification_settings": update["notification_settings"],
	})
	cli.queueEvent(&events.ChatNotificationSettings{ChatID: chatID, Raw: update})
}

func (cli *Client) handleBasicGroup(update tdjson.Object) {
	group := update.Object("basic_group")
	if group == nil {
		return
	}
	groupID := group.Int64("id")
	cli.Store.UpdateBasicGroup(groupID, group)
	cli.queueEvent(&events.BasicGroup{GroupID: groupID, Group: group})
}

func (cli *Client) handleSuperGroup(update tdjson.Object) {
	group := update.Object("supergroup")
	if group == nil {
		return
	}
	groupID := group.Int64("id")
	cli.Store.UpdateSuperGroup(groupID, group)
	cli.queueEvent(&events.SuperGroup{GroupID: groupID, Group: group})
}

func (cli *Client) handleFile(update tdjson.Object) {
	file := update.Object("file")
	if file == nil {
		return
	}
	fileID := file.Int64("id")
	cli.Store.SetFile(fileID, file)
	cli.queueEvent(&events.File{FileID: fileID, File: file})
}

func (cli *Client) handleNewMessage(update tdjson.Object) {
	message := update.Object("message")
	if message == nil {
		return
	}
	cli.queueEvent(&events.NewMessage{ChatID: message.Int64("chat_id"), Message: message})
}

func (cli *Client) handleMessageContent(update tdjson.Object) {
	cli.queueEvent(&events.MessageContent{
		ChatID:     update.Int64("chat_id"),
		MessageID:  update.Int64("message_id"),
		NewContent: update.Object("new_content"),
	})
}

func (cli *Client) handleMessageSendSucceeded(update tdjson.Object) {
	cli.queueEvent(&events.MessageSendSucceeded{
		MessageID:    update.Int64("message_id"),
		OldMessageID: update.Int64("old_message_id"),
		Message:      update.Object("message"),
	})
}

func (cli *Client) handleDeleteMessages(update tdjson.Object) {
	cli.queueEvent(&events.MessagesDeleted{
		ChatID:     update.Int64("chat_id"),
		MessageIDs: update.Int64Array("message_ids"),
		Raw:        update,
	})
}

func (cli *Client) handleActiveNotifications(update tdjson.Object) {
	cli.queueEvent(&events.ActiveNotifications{Groups: update.ObjectArray("groups")})
}

func (cli *Client) handleNotificationGroup(update tdjson.Object) {
	cli.queueEvent(&events.NotificationGroup{
		GroupID: update.Int64("notification_group_id"),
		ChatID:  update.Int64("chat_id"),
		Raw:     update,
	})
}

func (cli *Client) handleNotification(update tdjson.Object) {
	cli.queueEvent(&events.Notification{
		GroupID:      update.Int64("notification_group_id"),
		Notification: update.Object("notification"),
	})
}

func (cli *Client) handleMessages(update tdjson.Object) {
	cli.queueEvent(&events.Messages{
		TotalCount: update.Int("total_count"),
		Messages:   update.ObjectArray("messages"),
	})
}

func (cli *Client) handleMessage(update tdjson.Object) {
	cli.queueEvent(&events.Message{MessageID: update.Int64("id"), Message: update})
}

func (cli *Client) handleError(update tdjson.Object) {
	code := update.Int("code")
	message := update.String("message")
	cli.Log.Warnf("Backend reported error %d: %s", code, message)
	cli.queueEvent(&events.BackendError{Code: code, Message: message, Raw: update})
}
