// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package tdsync

import (
	"fmt"

	"github.com/fernwire/tdsync/tdjson"
)

// SendRequest hands a request object to the backend. Requests are fire and
// forget: a nil error means the backend accepted the payload, not that the
// request succeeded. Results and failures come back on the event stream as
// response objects or connection state regressions.
func (cli *Client) SendRequest(request tdjson.Object) error {
	payload, err := tdjson.Marshal(request)
	if err != nil {
		return err
	}
	cli.sendLog.Debugf("%s", payload)
	if err = cli.backend.Send(payload); err != nil {
		return fmt.Errorf("failed to hand request to backend: %w", err)
	}
	return nil
}

// SetLogVerbosityLevel adjusts how chatty the backend's own log output is.
func (cli *Client) SetLogVerbosityLevel(level int) error {
	return cli.SendRequest(tdjson.Object{
		"@type":               "setLogVerbosityLevel",
		"new_verbosity_level": level,
	})
}

// SetOptionInteger pushes an integer-valued option to the backend.
func (cli *Client) SetOptionInteger(name string, value int64) error {
	return cli.SendRequest(tdjson.Object{
		"@type": "setOption",
		"name":  name,
		"value": tdjson.Object{"@type": "optionValueInteger", "value": value},
	})
}

// SetOptionBoolean pushes a boolean-valued option to the backend.
func (cli *Client) SetOptionBoolean(name string, value bool) error {
	return cli.SendRequest(tdjson.Object{
		"@type": "setOption",
		"name":  name,
		"value": tdjson.Object{"@type": "optionValueBoolean", "value": value},
	})
}
