// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package recordlayer

import (
	"errors"

	"github.com/pion/tlsrecord/pkg/protocol"
)

// Codec errors.
var (
	// ErrIncompleteRecord is returned when a buffer holds fewer bytes than
	// the record it starts declares. Callers read more and retry.
	ErrIncompleteRecord = &protocol.TemporaryError{Err: errors.New("incomplete record")} //nolint:err113

	// ErrInvalidContentType is returned for content types outside the
	// registered range.
	ErrInvalidContentType = &protocol.TemporaryError{Err: errors.New("invalid content type")} //nolint:err113

	// ErrUnsupportedProtocolVersion is returned for record versions other
	// than TLS 1.0 through TLS 1.3.
	ErrUnsupportedProtocolVersion = &protocol.FatalError{Err: errors.New("unsupported protocol version")} //nolint:err113

	// ErrRecordOverflow is returned when a record declares a fragment larger
	// than the protocol allows.
	ErrRecordOverflow = &protocol.TemporaryError{Err: errors.New("record overflow")} //nolint:err113
)
