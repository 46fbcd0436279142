// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package tdsync

import (
	"errors"
)

// Miscellaneous errors
var (
	ErrAlreadyConnected = errors.New("client is already connected")

	ErrNoBackend = errors.New("backend is nil")
	ErrNoConfig  = errors.New("config is nil")
)
