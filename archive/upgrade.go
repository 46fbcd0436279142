// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package archive

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type upgradeFunc func(context.Context, pgx.Tx, *Archive) error

// Upgrades is a list of functions that will upgrade a database to the latest version.
//
// This may be of use if you want to manage the database fully manually, but in most cases you
// should just call Archive.Upgrade to let the library handle everything.
var Upgrades = [...]upgradeFunc{upgradeV1}

func (ar *Archive) getVersion(ctx context.Context) (int, error) {
	_, err := ar.db.Exec(ctx, "CREATE TABLE IF NOT EXISTS tdsync_version (version INTEGER)")
	if err != nil {
		return -1, err
	}

	version := 0
	row := ar.db.QueryRow(ctx, "SELECT version FROM tdsync_version LIMIT 1")
	if row != nil {
		_ = row.Scan(&version)
	}
	return version, nil
}

func (ar *Archive) setVersion(ctx context.Context, tx pgx.Tx, version int) error {
	_, err := tx.Exec(ctx, "DELETE FROM tdsync_version")
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, "INSERT INTO tdsync_version (version) VALUES ($1)", version)
	return err
}

// Upgrade upgrades the database from the current to the latest version available.
func (ar *Archive) Upgrade(ctx context.Context) error {
	version, err := ar.getVersion(ctx)
	if err != nil {
		return err
	}

	for ; version < len(Upgrades); version++ {
		tx, err := ar.db.Begin(ctx)
		if err != nil {
			return err
		}

		migrateFunc := Upgrades[version]
		ar.log.Infof("Upgrading database to v%d", version+1)
		err = migrateFunc(ctx, tx, ar)
		if err != nil {
			_ = tx.Rollback(ctx)
			return err
		}

		if err = ar.setVersion(ctx, tx, version+1); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}

		if err = tx.Commit(ctx); err != nil {
			return err
		}
	}

	return nil
}

func upgradeV1(ctx context.Context, tx pgx.Tx, _ *Archive) error {
	_, err := tx.Exec(ctx, `CREATE TABLE tdsync_message (
		chat_id      BIGINT NOT NULL,
		message_id   BIGINT NOT NULL,
		sender_id    BIGINT NOT NULL DEFAULT 0,
		sent_at      BIGINT NOT NULL DEFAULT 0,
		content_type TEXT   NOT NULL DEFAULT '',
		payload      jsonb  NOT NULL,

		PRIMARY KEY (chat_id, message_id)
	)`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, "CREATE INDEX tdsync_message_recency ON tdsync_message (chat_id, sent_at DESC, message_id DESC)")
	return err
}
