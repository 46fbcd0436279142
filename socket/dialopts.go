//go:build !js || !wasm

package socket

import (
	"github.com/coder/websocket"
)

func (js *JSONSocket) makeDialOptions() *websocket.DialOptions {
	return &websocket.DialOptions{
		HTTPClient:      js.HTTPClient,
		HTTPHeader:      js.HTTPHeaders,
		CompressionMode: websocket.CompressionDisabled,
	}
}
