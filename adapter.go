// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package tlsrecord

import (
	"encoding/binary"

	"github.com/pion/tlsrecord/pkg/protocol"
	"github.com/pion/tlsrecord/pkg/protocol/recordlayer"
)

// versionAdapter hides the differences between the TLS 1.2 and TLS 1.3 wire
// transforms behind one interface so the RecordLayer core stays version
// agnostic.
type versionAdapter interface {
	encodeRecord(rec *recordlayer.Record) ([]byte, error)
	decodeRecord(raw []byte) (*recordlayer.Record, error)

	// applyEncryption replaces rec.Fragment with its protected form in place.
	applyEncryption(rec *recordlayer.Record, state *CipherState) error

	// applyDecryption replaces rec.Fragment with the recovered plaintext and
	// returns the content type the plaintext belongs to.
	applyDecryption(rec *recordlayer.Record, state *CipherState) (protocol.ContentType, error)
}

// aeadNonce derives the per-record nonce by XORing the big endian sequence
// number, zero extended on the left, into the tail of the static IV.
func aeadNonce(iv []byte, seq uint64) []byte {
	nonce := make([]byte, len(iv))
	copy(nonce, iv)

	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], seq)
	for i := 0; i < 8; i++ {
		nonce[len(nonce)-8+i] ^= seqBytes[i]
	}

	return nonce
}
