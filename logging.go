// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// Ambient logging. The teacher has no third-party logging dependency of
// its own, gating a handful of debugf/debugln call sites behind an
// internal verbosity flag; the real downstream consumer of this library
// (ZaparooProject/zaparoo-core) logs against it with zerolog. This rewrite
// adopts zerolog directly for that concern rather than reinventing a
// verbosity-gated stdlib logger.

package pn53x

import (
	"os"
	"strconv"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.Disabled)

// EnvLogLevel is the environment variable Init reads to set the log level:
// 0 (none) through 3 (trace), per spec §6.
const EnvLogLevel = "LIBNFC_LOG_LEVEL"

// SetLogger overrides the package-level logger, e.g. to redirect output or
// attach caller-supplied fields. Safe to call before Init or at any point
// afterward.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// logLevelFromEnv maps the 0..3 LIBNFC_LOG_LEVEL scale onto zerolog's
// levels: 0 disables logging entirely, 1 is informational, 2 is debug
// (per-command tracing), 3 is trace (per-byte framing detail).
func logLevelFromEnv(value string) zerolog.Level {
	n, err := strconv.Atoi(value)
	if err != nil {
		return zerolog.Disabled
	}
	switch {
	case n <= 0:
		return zerolog.Disabled
	case n == 1:
		return zerolog.InfoLevel
	case n == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// Init prepares process-wide state: it sets the log sink's level from
// LIBNFC_LOG_LEVEL. The driver registry is filled by transport packages'
// init() functions, not by Init. Init is idempotent and need
// not be paired 1:1 with Exit; call it once at process startup.
func Init() error {
	logger = logger.Level(logLevelFromEnv(os.Getenv(EnvLogLevel)))
	return nil
}

// Exit releases process-wide state Init acquired. The current
// implementation has nothing to release beyond resetting the log level;
// it exists so callers have a symmetric lifecycle to depend on as the
// registry grows (spec §4.6.1).
func Exit() error {
	logger = logger.Level(zerolog.Disabled)
	return nil
}
