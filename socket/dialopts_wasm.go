//go:build js && wasm

package socket

import (
	"github.com/coder/websocket"
)

func (js *JSONSocket) makeDialOptions() *websocket.DialOptions {
	// HTTPClient and HTTPHeader are not available on js/wasm.
	return &websocket.DialOptions{
		CompressionMode: websocket.CompressionDisabled,
	}
}
