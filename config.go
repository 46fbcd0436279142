// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package tdsync

import (
	"github.com/go-playground/validator/v10"
)

// Defaults for the optional Config fields.
const (
	DefaultSystemLanguageCode = "en"
	DefaultDeviceModel        = "Unknown Device"
	DefaultSystemVersion      = "Unknown"

	// The backend's own log output at level 2 is limited to errors and
	// warnings, which is what an embedding application usually wants.
	DefaultBackendLogVerbosity = 2

	// How many notification groups the backend keeps active at once.
	DefaultNotificationGroupCountMax = 5
)

// Config holds the identification parameters the client hands to the backend
// during the authorization handshake, plus the startup knobs it sends right
// after connecting.
type Config struct {
	APIID   int32  `validate:"required"`
	APIHash string `validate:"required"`

	// DatabaseDirectory is where the backend keeps its own persistent state.
	// The client never reads it, but the handshake requires it.
	DatabaseDirectory     string `validate:"required"`
	DatabaseEncryptionKey string

	UseFileDatabase     bool
	UseChatInfoDatabase bool
	UseMessageDatabase  bool
	UseSecretChats      bool

	SystemLanguageCode string
	DeviceModel        string
	SystemVersion      string
	ApplicationVersion string `validate:"required"`

	// BackendLogVerbosity is sent as a setLogVerbosityLevel request right
	// after connecting. Zero means DefaultBackendLogVerbosity, not silent.
	BackendLogVerbosity int `validate:"min=0,max=5"`

	// NotificationGroupCountMax is pushed as a backend option right after
	// connecting. Zero means DefaultNotificationGroupCountMax.
	NotificationGroupCountMax int `validate:"min=0"`
}

var validate = validator.New()

func (config *Config) applyDefaults() {
	if config.SystemLanguageCode == "" {
		config.SystemLanguageCode = DefaultSystemLanguageCode
	}
	if config.DeviceModel == "" {
		config.DeviceModel = DefaultDeviceModel
	}
	if config.SystemVersion == "" {
		config.SystemVersion = DefaultSystemVersion
	}
	if config.BackendLogVerbosity == 0 {
		config.BackendLogVerbosity = DefaultBackendLogVerbosity
	}
	if config.NotificationGroupCountMax == 0 {
		config.NotificationGroupCountMax = DefaultNotificationGroupCountMax
	}
}

func (config *Config) validateConfig() error {
	return validate.Struct(config)
}
