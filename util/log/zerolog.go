// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package tdLog

import (
	"github.com/rs/zerolog"
)

type zeroLogger struct {
	mod string
	zl  zerolog.Logger
}

// Zerolog wraps a zerolog.Logger in the Logger interface. Sub-logger module
// names are slash-separated like in the plain loggers and logged in the
// "module" field.
func Zerolog(log zerolog.Logger) Logger {
	return &zeroLogger{zl: log}
}

func (z *zeroLogger) logf(evt *zerolog.Event, msg string, args []any) error {
	if z.mod != "" {
		evt = evt.Str("module", z.mod)
	}
	evt.Msgf(msg, args...)
	return nil
}

func (z *zeroLogger) Errorf(msg string, args ...any) error {
	return z.logf(z.zl.Error(), msg, args)
}

func (z *zeroLogger) Warnf(msg string, args ...any) error {
	return z.logf(z.zl.Warn(), msg, args)
}

func (z *zeroLogger) Infof(msg string, args ...any) error {
	return z.logf(z.zl.Info(), msg, args)
}

func (z *zeroLogger) Debugf(msg string, args ...any) error {
	return z.logf(z.zl.Debug(), msg, args)
}

func (z *zeroLogger) Sub(module string) Logger {
	return &zeroLogger{mod: sub(z.mod, module), zl: z.zl}
}

func (z *zeroLogger) Close() error { return nil }
