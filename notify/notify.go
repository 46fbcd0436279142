// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package notify turns the raw notification updates of a tdsync.Client into
// coalesced per-chat alerts. Rapid bursts of notifications for the same chat
// collapse into a single alert carrying a count; reading or dismissing the
// chat on another device retires the alert again.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fernwire/tdsync/tdjson"
	"github.com/fernwire/tdsync/types/events"
	tdLog "github.com/fernwire/tdsync/util/log"
)

// PlaceholderTitle is used when a chat can't be resolved at render time. An
// alert is never dropped just because its chat is still unknown.
const PlaceholderTitle = "Unknown chat"

// DefaultCoalesceWindow is how long the manager waits for further
// notifications in the same chat before rendering an alert.
const DefaultCoalesceWindow = 1 * time.Second

// Alert is one rendered notification. The ID stays stable across re-renders
// of the same chat context, so presenting it again replaces the previous
// alert instead of stacking a new one.
type Alert struct {
	ID     string
	ChatID int64
	Title  string
	Sender string
	Body   string
	Count  int
}

// Presenter is the presentation collaborator alerts are handed to. Both
// methods are called without any manager lock held and never from the
// client's receiver goroutine.
type Presenter interface {
	Present(alert *Alert) error
	Dismiss(alertID string) error
}

// Source is the read-only view of the synchronized state used to render
// alerts. *store.Store satisfies it.
type Source interface {
	Chat(chatID int64) (tdjson.Object, bool)
	User(userID int64) (tdjson.Object, bool)
}

type contextState int

const (
	statePending contextState = iota
	stateRendered
)

// chatContext is the per-chat alert state machine. A chat without a context
// is idle; contexts are created on the first notification and deleted again
// when the alert is dismissed.
type chatContext struct {
	state   contextState
	alertID string
	count   int
	last    tdjson.Object
	seen    map[int64]struct{}
	timer   *time.Timer
}

// Manager aggregates notification events into alerts. Register HandleEvent
// with the client:
//
//	mgr := notify.NewManager(cli.Store, presenter, log)
//	cli.AddEventHandler(mgr.HandleEvent)
type Manager struct {
	log       tdLog.Logger
	source    Source
	presenter Presenter

	lock     sync.Mutex
	window   time.Duration
	contexts map[int64]*chatContext
	groups   map[int64]int64
	titles   map[int64]string
	closed   bool
}

func NewManager(source Source, presenter Presenter, log tdLog.Logger) *Manager {
	if log == nil {
		log = tdLog.Noop
	}
	return &Manager{
		log:       log,
		source:    source,
		presenter: presenter,
		window:    DefaultCoalesceWindow,
		contexts:  make(map[int64]*chatContext),
		groups:    make(map[int64]int64),
		titles:    make(map[int64]string),
	}
}

// SetCoalesceWindow adjusts the debounce window. Call it before events start
// flowing; already armed timers keep their old delay.
func (m *Manager) SetCoalesceWindow(window time.Duration) {
	m.lock.Lock()
	m.window = window
	m.lock.Unlock()
}

// Close cancels all pending coalescing timers and forgets all contexts.
// Alerts that were already presented stay presented.
func (m *Manager) Close() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.closed = true
	for _, ctx := range m.contexts {
		if ctx.timer != nil {
			ctx.timer.Stop()
		}
	}
	m.contexts = make(map[int64]*chatContext)
}

// HandleEvent is the tdsync.EventHandler of the manager. Events other than
// the notification family are ignored.
func (m *Manager) HandleEvent(rawEvt any) {
	switch evt := rawEvt.(type) {
	case *events.NewChat:
		m.noteChat(evt.ChatID, evt.Chat)
	case *events.NotificationGroup:
		m.handleGroupUpdate(evt)
	case *events.Notification:
		m.handleNotification(evt.GroupID, evt.Notification)
	case *events.ActiveNotifications:
		m.applyActiveSnapshot(evt.Groups)
	case *events.ChatReadInbox:
		if evt.UnreadCount == 0 {
			m.dismissChat(evt.ChatID)
		}
	}
}

// noteChat pre-seeds the title cache. Titles are rendering metadata only and
// never drive state transitions.
func (m *Manager) noteChat(chatID int64, chat tdjson.Object) {
	if title := chat.String("title"); title != "" {
		m.lock.Lock()
		m.titles[chatID] = title
		m.lock.Unlock()
	}
}

func (m *Manager) handleGroupUpdate(evt *events.NotificationGroup) {
	m.lock.Lock()
	m.groups[evt.GroupID] = evt.ChatID
	added := evt.Raw.ObjectArray("added_notifications")
	for _, notification := range added {
		m.noteNotificationLocked(evt.ChatID, notification)
	}
	var dismiss string
	if len(added) == 0 && evt.Raw.Int("total_count") == 0 {
		// The group was emptied remotely, retire any alert for its chat.
		dismiss = m.dropContextLocked(evt.ChatID)
	}
	m.lock.Unlock()
	if dismiss != "" {
		m.dismissAlert(dismiss)
	}
}

func (m *Manager) handleNotification(groupID int64, notification tdjson.Object) {
	m.lock.Lock()
	chatID, ok := m.groups[groupID]
	if !ok {
		// The binding update was lost; chat 0 renders with a placeholder
		// title rather than losing the notification.
		m.log.Debugf("Notification for unknown group %d", groupID)
	}
	m.noteNotificationLocked(chatID, notification)
	m.lock.Unlock()
}

// noteNotificationLocked runs the Idle->Pending and Pending->Pending edges.
// The caller holds the lock.
func (m *Manager) noteNotificationLocked(chatID int64, notification tdjson.Object) {
	if m.closed {
		return
	}
	ctx, ok := m.contexts[chatID]
	if !ok {
		ctx = &chatContext{
			state: statePending,
			seen:  make(map[int64]struct{}),
		}
		ctx.timer = time.AfterFunc(m.window, func() {
			m.render(chatID, ctx)
		})
		m.contexts[chatID] = ctx
	}
	notificationID := notification.Int64("id")
	if notificationID != 0 {
		if _, duplicate := ctx.seen[notificationID]; duplicate {
			ctx.last = notification
			return
		}
		ctx.seen[notificationID] = struct{}{}
	}
	ctx.count++
	ctx.last = notification
	if ctx.state == stateRendered {
		// New activity on an already rendered alert starts a new burst; the
		// re-render will replace the alert under the same ID.
		ctx.state = statePending
	}
	ctx.timer.Reset(m.window)
}

// render is the Pending->Rendered edge, called from the coalescing timer.
// The context is passed along so a late firing for an already replaced
// context can be told apart from the live one.
func (m *Manager) render(chatID int64, ctx *chatContext) {
	m.lock.Lock()
	if current, ok := m.contexts[chatID]; !ok || current != ctx || ctx.state != statePending {
		m.lock.Unlock()
		return
	}
	ctx.state = stateRendered
	if ctx.alertID == "" {
		ctx.alertID = uuid.NewString()
	}
	alert := m.buildAlertLocked(chatID, ctx)
	m.lock.Unlock()

	if err := m.presenter.Present(alert); err != nil {
		m.log.Warnf("Failed to present alert for chat %d: %v", chatID, err)
	}
}

func (m *Manager) buildAlertLocked(chatID int64, ctx *chatContext) *Alert {
	title, ok := m.titles[chatID]
	if !ok {
		if chat, found := m.source.Chat(chatID); found {
			title = chat.String("title")
		}
	}
	if title == "" {
		title = PlaceholderTitle
	}
	alert := &Alert{
		ID:     ctx.alertID,
		ChatID: chatID,
		Title:  title,
		Count:  ctx.count,
	}
	message := ctx.last.Object("type").Object("message")
	if message != nil {
		alert.Sender = m.senderName(message)
		alert.Body = summarizeContent(message.Object("content"))
	}
	if alert.Body == "" {
		alert.Body = "New notification"
	}
	if alert.Count > 1 {
		alert.Body = fmt.Sprintf("%s (%d messages)", alert.Body, alert.Count)
	}
	return alert
}

func (m *Manager) senderName(message tdjson.Object) string {
	senderID := message.Int64("sender_user_id")
	if senderID == 0 {
		return ""
	}
	user, ok := m.source.User(senderID)
	if !ok {
		return ""
	}
	name := user.String("first_name")
	if lastName := user.String("last_name"); lastName != "" {
		if name != "" {
			name += " "
		}
		name += lastName
	}
	return name
}

// summarizeContent reduces a message content object to one alert line.
func summarizeContent(content tdjson.Object) string {
	switch content.Type() {
	case "messageText":
		return content.Object("text").String("text")
	case "messagePhoto":
		return "Photo"
	case "messageVideo":
		return "Video"
	case "messageAnimation":
		return "Animation"
	case "messageSticker":
		return "Sticker"
	case "messageDocument":
		return "Document"
	case "messageAudio":
		return "Audio"
	case "messageVoiceNote":
		return "Voice message"
	case "messageVideoNote":
		return "Video message"
	case "messageLocation":
		return "Location"
	case "messageContact":
		return "Contact"
	default:
		return ""
	}
}

// applyActiveSnapshot is the Rendered->Idle edge driven by the backend's
// snapshot of still-active notification groups. Rendered alerts whose chat is
// no longer listed get dismissed; pending bursts are left to their timers.
func (m *Manager) applyActiveSnapshot(groups []tdjson.Object) {
	m.lock.Lock()
	active := make(map[int64]bool, len(groups))
	for _, group := range groups {
		groupID := group.Int64("id")
		chatID := group.Int64("chat_id")
		if groupID != 0 {
			m.groups[groupID] = chatID
		}
		active[chatID] = true
	}
	var dismiss []string
	for chatID, ctx := range m.contexts {
		if ctx.alertID != "" && !active[chatID] {
			dismiss = append(dismiss, m.dropContextLocked(chatID))
		}
	}
	m.lock.Unlock()
	for _, alertID := range dismiss {
		m.dismissAlert(alertID)
	}
}

// dismissChat is the read-driven Rendered->Idle edge. A still pending burst
// is simply cancelled, its alert was never shown.
func (m *Manager) dismissChat(chatID int64) {
	m.lock.Lock()
	alertID := m.dropContextLocked(chatID)
	m.lock.Unlock()
	if alertID != "" {
		m.dismissAlert(alertID)
	}
}

// dropContextLocked removes a chat's context and returns the alert id to
// dismiss, "" when no alert was ever rendered for it. The caller holds the
// lock.
func (m *Manager) dropContextLocked(chatID int64) string {
	ctx, ok := m.contexts[chatID]
	if !ok {
		return ""
	}
	if ctx.timer != nil {
		ctx.timer.Stop()
	}
	delete(m.contexts, chatID)
	return ctx.alertID
}

func (m *Manager) dismissAlert(alertID string) {
	if err := m.presenter.Dismiss(alertID); err != nil {
		m.log.Warnf("Failed to dismiss alert %s: %v", alertID, err)
	}
}
