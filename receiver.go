// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package tdsync

import (
	"github.com/fernwire/tdsync/tdjson"
)

// receiveLoop drains the backend until stopped. Each pull is bounded by
// receiveTimeout, so a stop request is noticed within that bound. An empty
// pull just means the backend had nothing to say.
func (cli *Client) receiveLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		default:
		}
		payload := cli.backend.Receive(receiveTimeout)
		if payload == nil {
			continue
		}
		cli.recvLog.Debugf("%s", payload)
		update, err := tdjson.Decode(payload)
		if err != nil {
			cli.recvLog.Warnf("Dropping malformed payload from backend: %v", err)
			continue
		}
		cli.dispatchUpdate(update)
	}
}

// dispatchUpdate runs the handler registered for the update's type.
// Handlers run one at a time on the receiver goroutine, so application order
// matches arrival order and store writes need no further coordination.
func (cli *Client) dispatchUpdate(update tdjson.Object) {
	handler, ok := cli.updateHandlers[update.Type()]
	if !ok {
		// Unknown kinds are expected as the backend evolves, not errors.
		cli.recvLog.Debugf("Didn't handle update of type %s", update.Type())
		return
	}
	handler(update)
}
