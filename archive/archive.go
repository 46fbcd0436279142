// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package archive persists the message stream of a client into PostgreSQL.
// It lives entirely on the consumer side of the client's event channel; the
// core never depends on it.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fernwire/tdsync"
	"github.com/fernwire/tdsync/tdjson"
	"github.com/fernwire/tdsync/types/events"
	tdLog "github.com/fernwire/tdsync/util/log"
)

const queryTimeout = 10 * time.Second

// Archive is a PostgreSQL-backed message log.
type Archive struct {
	db  *pgxpool.Pool
	log tdLog.Logger
}

// New connects to PostgreSQL and upgrades the schema to the latest version.
func New(ctx context.Context, dsn string, log tdLog.Logger) (*Archive, error) {
	if log == nil {
		log = tdLog.Noop
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Postgres DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	archive := NewWithPool(pool, log)
	if err = archive.Upgrade(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to upgrade database: %w", err)
	}
	return archive, nil
}

// NewWithPool wraps an existing pool. The caller is responsible for calling
// Upgrade before using the archive.
func NewWithPool(pool *pgxpool.Pool, log tdLog.Logger) *Archive {
	if log == nil {
		log = tdLog.Noop
	}
	return &Archive{db: pool, log: log}
}

func (ar *Archive) Close() {
	ar.db.Close()
}

// Subscribe attaches the archive to a client's event stream. The returned ID
// can be passed to RemoveEventHandler to detach again.
func (ar *Archive) Subscribe(cli *tdsync.Client) uint32 {
	return cli.AddEventHandler(ar.HandleEvent)
}

// HandleEvent records message events. It runs on the client's fan-out
// goroutine, so database work gets its own bounded context.
func (ar *Archive) HandleEvent(rawEvt any) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	var err error
	switch evt := rawEvt.(type) {
	case *events.NewMessage:
		err = ar.putMessage(ctx, evt.ChatID, evt.Message)
	case *events.MessageSendSucceeded:
		err = ar.resolveMessageID(ctx, evt.OldMessageID, evt.Message)
	case *events.MessageContent:
		err = ar.updateContent(ctx, evt.ChatID, evt.MessageID, evt.NewContent)
	case *events.MessagesDeleted:
		err = ar.deleteMessages(ctx, evt.ChatID, evt.MessageIDs)
	default:
		return
	}
	if err != nil {
		ar.log.Errorf("Failed to archive %T: %v", rawEvt, err)
	}
}

const (
	putMessageQuery = `
		INSERT INTO tdsync_message (chat_id, message_id, sender_id, sent_at, content_type, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (chat_id, message_id) DO UPDATE
			SET sender_id=excluded.sender_id, sent_at=excluded.sent_at,
			    content_type=excluded.content_type, payload=excluded.payload
	`
	deleteMessageQuery  = `DELETE FROM tdsync_message WHERE chat_id=$1 AND message_id=$2`
	deleteMessagesQuery = `DELETE FROM tdsync_message WHERE chat_id=$1 AND message_id=ANY($2)`
	updateContentQuery  = `UPDATE tdsync_message SET content_type=$3, payload=jsonb_set(payload, '{content}', $4) WHERE chat_id=$1 AND message_id=$2`
	recentMessagesQuery = `
		SELECT chat_id, message_id, sender_id, sent_at, content_type, payload
		FROM tdsync_message
		WHERE chat_id=$1
		ORDER BY sent_at DESC, message_id DESC
		LIMIT $2
	`
)

func (ar *Archive) putMessage(ctx context.Context, chatID int64, message tdjson.Object) error {
	payload, err := tdjson.Marshal(message)
	if err != nil {
		return err
	}
	_, err = ar.db.Exec(ctx, putMessageQuery,
		chatID,
		message.Int64("id"),
		message.Int64("sender_user_id"),
		message.Int64("date"),
		message.Object("content").Type(),
		payload,
	)
	return err
}

// resolveMessageID replaces the optimistic row a sent message was stored
// under with the acknowledged message. The backend hands out a temporary ID
// while the message is in flight and swaps it on acknowledgement.
func (ar *Archive) resolveMessageID(ctx context.Context, oldID int64, message tdjson.Object) error {
	chatID := message.Int64("chat_id")
	_, err := ar.db.Exec(ctx, deleteMessageQuery, chatID, oldID)
	if err != nil {
		return err
	}
	return ar.putMessage(ctx, chatID, message)
}

func (ar *Archive) updateContent(ctx context.Context, chatID, messageID int64, content tdjson.Object) error {
	payload, err := tdjson.Marshal(content)
	if err != nil {
		return err
	}
	_, err = ar.db.Exec(ctx, updateContentQuery, chatID, messageID, content.Type(), payload)
	return err
}

func (ar *Archive) deleteMessages(ctx context.Context, chatID int64, messageIDs []int64) error {
	if len(messageIDs) == 0 {
		return nil
	}
	_, err := ar.db.Exec(ctx, deleteMessagesQuery, chatID, messageIDs)
	return err
}

// StoredMessage is one archived message row.
type StoredMessage struct {
	ChatID      int64
	MessageID   int64
	SenderID    int64
	SentAt      int64
	ContentType string
	Payload     tdjson.Object
}

// RecentMessages returns up to limit messages of a chat, newest first.
func (ar *Archive) RecentMessages(ctx context.Context, chatID int64, limit int) ([]*StoredMessage, error) {
	rows, err := ar.db.Query(ctx, recentMessagesQuery, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var messages []*StoredMessage
	for rows.Next() {
		var msg StoredMessage
		var payload []byte
		err = rows.Scan(&msg.ChatID, &msg.MessageID, &msg.SenderID, &msg.SentAt, &msg.ContentType, &payload)
		if err != nil {
			return nil, err
		}
		if msg.Payload, err = tdjson.Decode(payload); err != nil {
			return nil, err
		}
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}
