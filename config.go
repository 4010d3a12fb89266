// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package tlsrecord

import (
	"github.com/pion/logging"
)

const (
	defaultMaxFragmentLength = 16384
	minFragmentLength        = 64
)

// Config collects the tunables of a RecordLayer. The zero value selects the
// defaults for every field.
type Config struct {
	// LoggerFactory customizes logging. When nil a default stderr logger with
	// scope "tlsrecord" is used.
	LoggerFactory logging.LoggerFactory

	// MaxFragmentLength bounds the plaintext carried by a single record.
	// Values outside [64, 16384] are rejected; zero selects 16384.
	MaxFragmentLength int

	// ReplayProtection enables the anti-replay sliding window on the read
	// direction once it is encrypted.
	ReplayProtection bool

	// ReplayWindowSize is the width of the anti-replay window in sequence
	// numbers. Zero selects the default of 64.
	ReplayWindowSize uint
}

func (c *Config) loggerFactory() logging.LoggerFactory {
	if c != nil && c.LoggerFactory != nil {
		return c.LoggerFactory
	}

	return logging.NewDefaultLoggerFactory()
}
