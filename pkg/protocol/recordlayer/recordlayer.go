// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package recordlayer implements the TLS Record Layer framing
// https://tools.ietf.org/html/rfc5246#section-6.2
package recordlayer

import (
	"encoding/binary"

	"github.com/pion/tlsrecord/pkg/protocol"
)

const (
	// HeaderSize is the static size of a TLS record header.
	HeaderSize = 5

	// MaxPlaintextLength is the largest fragment a single plaintext record
	// may carry (2^14).
	//
	// https://tools.ietf.org/html/rfc8446#section-5.1
	MaxPlaintextLength = 1 << 14

	// MaxCiphertextLength is the largest fragment a single protected record
	// may carry, including expansion for padding, MAC and AEAD tag.
	//
	// https://tools.ietf.org/html/rfc5246#section-6.2.3
	MaxCiphertextLength = MaxPlaintextLength + 2048
)

// Header is the 5 byte prefix on every TLS record.
//
//	offset 0: content type  (u8)
//	offset 1: version major (u8)
//	offset 2: version minor (u8)
//	offset 3: length        (u16, big endian)
type Header struct {
	ContentType protocol.ContentType
	Version     protocol.Version
	ContentLen  uint16
}

// Marshal encodes a Header to binary.
func (h *Header) Marshal() ([]byte, error) {
	if int(h.ContentLen) > MaxCiphertextLength {
		return nil, ErrRecordOverflow
	}

	out := make([]byte, HeaderSize)
	out[0] = byte(h.ContentType)
	out[1] = h.Version.Major
	out[2] = h.Version.Minor
	binary.BigEndian.PutUint16(out[HeaderSize-2:], h.ContentLen)

	return out, nil
}

// Unmarshal populates a Header from binary.
func (h *Header) Unmarshal(data []byte) error {
	if len(data) < HeaderSize {
		return ErrIncompleteRecord
	}

	h.ContentType = protocol.ContentType(data[0])
	h.Version.Major = data[1]
	h.Version.Minor = data[2]
	h.ContentLen = binary.BigEndian.Uint16(data[HeaderSize-2:])

	if !h.ContentType.IsValid() {
		return ErrInvalidContentType
	}
	if !protocol.IsSupportedBytes(h.Version.Major, h.Version.Minor) {
		return ErrUnsupportedProtocolVersion
	}
	if int(h.ContentLen) > MaxCiphertextLength {
		return ErrRecordOverflow
	}

	return nil
}

// Record is a single TLS record: a header plus its fragment.
type Record struct {
	Header   Header
	Fragment []byte
}

// Marshal encodes a Record to binary.
func (r *Record) Marshal() ([]byte, error) {
	if len(r.Fragment) > MaxCiphertextLength {
		return nil, ErrRecordOverflow
	}
	r.Header.ContentLen = uint16(len(r.Fragment)) //nolint:gosec

	headerRaw, err := r.Header.Marshal()
	if err != nil {
		return nil, err
	}

	return append(headerRaw, r.Fragment...), nil
}

// Unmarshal populates a Record from binary. The input must contain the
// complete record; a short buffer returns ErrIncompleteRecord so callers can
// keep accumulating bytes.
func (r *Record) Unmarshal(data []byte) error {
	if err := r.Header.Unmarshal(data); err != nil {
		return err
	}
	if len(data) < HeaderSize+int(r.Header.ContentLen) {
		return ErrIncompleteRecord
	}

	r.Fragment = make([]byte, r.Header.ContentLen)
	copy(r.Fragment, data[HeaderSize:HeaderSize+int(r.Header.ContentLen)])

	return nil
}

// Size returns the number of bytes the record occupies on the wire.
func (r *Record) Size() int {
	return HeaderSize + len(r.Fragment)
}

// UnpackStream splits a buffer containing zero or more complete records into
// the raw bytes of each record, returning any trailing partial record as
// remainder.
func UnpackStream(buf []byte) (records [][]byte, remainder []byte) {
	for {
		if len(buf) < HeaderSize {
			return records, buf
		}
		recLen := HeaderSize + int(binary.BigEndian.Uint16(buf[HeaderSize-2:HeaderSize]))
		if len(buf) < recLen {
			return records, buf
		}
		records = append(records, buf[:recLen])
		buf = buf[recLen:]
	}
}
