// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package tlsrecord

import (
	"encoding/binary"
	"fmt"

	"github.com/pion/tlsrecord/pkg/protocol"
	"github.com/pion/tlsrecord/pkg/protocol/recordlayer"
	"golang.org/x/crypto/cryptobyte"
)

// tls13Adapter implements the TLS 1.3 wire transform. Every protected record
// travels as application_data with the legacy 1.2 version on the outside; the
// true content type rides at the end of the inner plaintext.
type tls13Adapter struct{}

func (a *tls13Adapter) encodeRecord(rec *recordlayer.Record) ([]byte, error) {
	// The outer version field is frozen at 1.2 for middlebox compatibility.
	rec.Header.Version = protocol.Version1_2

	return rec.Marshal()
}

func (a *tls13Adapter) decodeRecord(raw []byte) (*recordlayer.Record, error) {
	rec := &recordlayer.Record{}
	if err := rec.Unmarshal(raw); err != nil {
		return nil, err
	}

	return rec, nil
}

func (a *tls13Adapter) additionalData(ciphertextLen int) []byte {
	adata := make([]byte, 5)
	adata[0] = byte(protocol.ContentTypeApplicationData)
	adata[1] = protocol.Version1_2.Major
	adata[2] = protocol.Version1_2.Minor
	binary.BigEndian.PutUint16(adata[3:], uint16(ciphertextLen)) //nolint:gosec

	return adata
}

func (a *tls13Adapter) applyEncryption(rec *recordlayer.Record, state *CipherState) error {
	seq, err := state.nextSequenceNumber()
	if err != nil {
		return err
	}
	aead, err := state.getAEAD()
	if err != nil {
		return err
	}

	var builder cryptobyte.Builder
	builder.AddBytes(rec.Fragment)
	builder.AddUint8(uint8(rec.Header.ContentType))
	inner, err := builder.Bytes()
	if err != nil {
		return &InternalError{Err: err}
	}

	nonce := aeadNonce(state.IV, seq)
	adata := a.additionalData(len(inner) + aead.Overhead())
	rec.Fragment = aead.Seal(nil, nonce, inner, adata)
	rec.Header.ContentType = protocol.ContentTypeApplicationData
	rec.Header.ContentLen = uint16(len(rec.Fragment)) //nolint:gosec

	return nil
}

func (a *tls13Adapter) applyDecryption(rec *recordlayer.Record, state *CipherState) (protocol.ContentType, error) {
	seq, err := state.nextSequenceNumber()
	if err != nil {
		return 0, err
	}
	aead, err := state.getAEAD()
	if err != nil {
		return 0, err
	}
	if len(rec.Fragment) < aead.Overhead() {
		return 0, fmt.Errorf("%w: ciphertext shorter than the tag", ErrRecordVerificationFailed)
	}

	nonce := aeadNonce(state.IV, seq)
	inner, err := aead.Open(nil, nonce, rec.Fragment, a.additionalData(len(rec.Fragment)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRecordVerificationFailed, err) //nolint:errorlint
	}

	// Strip the zero padding, then take the trailing byte as the inner
	// content type.
	end := len(inner)
	for end > 0 && inner[end-1] == 0 {
		end--
	}
	if end == 0 {
		return 0, errEmptyPlaintext
	}

	contentType := protocol.ContentType(inner[end-1])
	rec.Fragment = inner[:end-1]
	rec.Header.ContentLen = uint16(len(rec.Fragment)) //nolint:gosec

	return contentType, nil
}
