// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package tlsrecord

import (
	"errors"

	"github.com/pion/tlsrecord/pkg/protocol"
)

// Typed errors
var (
	ErrUnsupportedVersion       = &protocol.FatalError{Err: errors.New("unsupported protocol version")}             //nolint:err113
	ErrInvalidParameter         = &protocol.FatalError{Err: errors.New("invalid parameter")}                        //nolint:err113
	ErrTransportClosed          = &protocol.FatalError{Err: errors.New("transport closed")}                         //nolint:err113
	ErrIncompleteSend           = &protocol.TemporaryError{Err: errors.New("transport accepted a partial record")}  //nolint:err113
	ErrRecordVerificationFailed = &protocol.TemporaryError{Err: errors.New("record verification failed")}           //nolint:err113
	ErrReplayDetected           = &protocol.TemporaryError{Err: errors.New("duplicate or stale sequence number")}   //nolint:err113
)

var (
	errEmptyPlaintext         = &protocol.TemporaryError{Err: errors.New("inner plaintext carries no content type")} //nolint:err113
	errSequenceNumberOverflow = &protocol.FatalError{Err: errors.New("sequence number space exhausted")}             //nolint:err113
	errReceiveBufferOverflow  = &protocol.InternalError{Err: errors.New("receive buffer exceeded its limit")}        //nolint:err113
	errNilTransport           = &protocol.FatalError{Err: errors.New("transport must not be nil")}                   //nolint:err113
	errNilCipherState         = &protocol.FatalError{Err: errors.New("cipher state must not be nil")}                //nolint:err113
)

// Typed error aliases, kept at the root so callers do not need to import
// pkg/protocol for error classification.
type (
	// FatalError is returned when the record layer can no longer make progress.
	FatalError = protocol.FatalError
	// InternalError is returned when an invariant of the record layer itself broke.
	InternalError = protocol.InternalError
	// TemporaryError is returned when the failing operation may be retried.
	TemporaryError = protocol.TemporaryError
	// TimeoutError is returned when a deadline passed before the operation finished.
	TimeoutError = protocol.TimeoutError
)
