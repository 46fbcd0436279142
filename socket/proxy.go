// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package socket

import (
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"
)

// SetProxyAddress routes websocket dials through the proxy at the given
// address. socks5://, http:// and https:// schemes are supported; an empty
// address clears the proxy. Call before Connect.
func (js *JSONSocket) SetProxyAddress(addr string) error {
	if addr == "" {
		js.SetProxy(nil)
		return nil
	}
	parsed, err := url.Parse(addr)
	if err != nil {
		return err
	}
	switch parsed.Scheme {
	case "http", "https":
		js.SetProxy(http.ProxyURL(parsed))
	case "socks5", "socks5h":
		px, err := proxy.FromURL(parsed, proxy.Direct)
		if err != nil {
			return err
		}
		js.SetSOCKSProxy(px)
	default:
		return fmt.Errorf("unsupported proxy scheme %q", parsed.Scheme)
	}
	return nil
}

// SetProxy sets the proxy resolver for websocket dials, in the same shape as
// http.Transport's Proxy field.
func (js *JSONSocket) SetProxy(proxyFn func(*http.Request) (*url.URL, error)) {
	js.lock.Lock()
	defer js.lock.Unlock()
	transport := js.httpTransportLocked()
	transport.Proxy = proxyFn
	transport.Dial = nil
	transport.DialContext = nil
}

// SetSOCKSProxy routes websocket dials through the given SOCKS5 dialer.
func (js *JSONSocket) SetSOCKSProxy(px proxy.Dialer) {
	js.lock.Lock()
	defer js.lock.Unlock()
	transport := js.httpTransportLocked()
	transport.Proxy = nil
	if contextDialer, ok := px.(proxy.ContextDialer); ok {
		transport.DialContext = contextDialer.DialContext
		transport.Dial = nil
	} else {
		transport.Dial = px.Dial
		transport.DialContext = nil
	}
}

func (js *JSONSocket) httpTransportLocked() *http.Transport {
	if js.HTTPClient == nil {
		js.HTTPClient = new(http.Client)
	}
	transport, ok := js.HTTPClient.Transport.(*http.Transport)
	if !ok {
		transport = new(http.Transport)
		js.HTTPClient.Transport = transport
	}
	return transport
}
