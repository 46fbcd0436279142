// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package socket

import (
	"errors"
	"time"
)

// FrameMaxSize caps both incoming and outgoing frames. Updates are small
// JSON documents; anything bigger is a protocol error.
const FrameMaxSize = 2 << 20

// frameQueueSize is the buffer between the read pump and Receive. The core
// client polls continuously, so the queue only absorbs short bursts.
const frameQueueSize = 256

// Reconnection timing. Tests and impatient consumers may tune these before
// connecting.
var (
	ReconnectBaseDelay = 2 * time.Second
	ReconnectMaxDelay  = 2 * time.Minute
	ReconnectJitter    = 1 * time.Second
)

var (
	ErrFrameTooLarge     = errors.New("frame too large")
	ErrSocketClosed      = errors.New("json socket is closed")
	ErrSocketAlreadyOpen = errors.New("json socket is already open")
)
