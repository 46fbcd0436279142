// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package tdsync

import (
	"github.com/fernwire/tdsync/tdjson"
)

// The authorization handshake is driven by the backend: it announces which
// input it is waiting for through authorization state updates, and the client
// answers the two phases it can answer on its own. Interactive phases (phone
// number, code, password) are left to the subscriber watching
// events.AuthorizationState.

// sendStartupRequests pushes the requests a fresh client is expected to send
// before the first authorization state arrives.
func (cli *Client) sendStartupRequests() {
	if err := cli.SetLogVerbosityLevel(cli.config.BackendLogVerbosity); err != nil {
		cli.Log.Warnf("Failed to set backend log verbosity: %v", err)
	}
	if err := cli.SetOptionInteger("notification_group_count_max", int64(cli.config.NotificationGroupCountMax)); err != nil {
		cli.Log.Warnf("Failed to cap backend notification groups: %v", err)
	}
}

// sendInitialParameters answers the backend's request for the client's
// identification parameters.
func (cli *Client) sendInitialParameters() {
	cli.Log.Debugf("Sending initial parameters to backend")
	err := cli.SendRequest(tdjson.Object{
		"@type": "setTdlibParameters",
		"parameters": tdjson.Object{
			"api_id":                 cli.config.APIID,
			"api_hash":               cli.config.APIHash,
			"database_directory":     cli.config.DatabaseDirectory,
			"use_file_database":      cli.config.UseFileDatabase,
			"use_chat_info_database": cli.config.UseChatInfoDatabase,
			"use_message_database":   cli.config.UseMessageDatabase,
			"use_secret_chats":       cli.config.UseSecretChats,
			"system_language_code":   cli.config.SystemLanguageCode,
			"device_model":           cli.config.DeviceModel,
			"system_version":         cli.config.SystemVersion,
			"application_version":    cli.config.ApplicationVersion,
		},
	})
	if err != nil {
		cli.Log.Errorf("Failed to send initial parameters: %v", err)
	}
}

// sendDatabaseEncryptionKey answers the backend's request for the database
// encryption key. An empty key is valid and means an unencrypted database.
func (cli *Client) sendDatabaseEncryptionKey() {
	cli.Log.Debugf("Sending database encryption key to backend")
	err := cli.SendRequest(tdjson.Object{
		"@type":          "checkDatabaseEncryptionKey",
		"encryption_key": cli.config.DatabaseEncryptionKey,
	})
	if err != nil {
		cli.Log.Errorf("Failed to send database encryption key: %v", err)
	}
}
