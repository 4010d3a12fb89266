// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package tlsrecord

import (
	"crypto/cipher"
	"math"

	"github.com/pion/tlsrecord/pkg/crypto/ciphersuite"
	"github.com/pion/tlsrecord/pkg/protocol"
)

// CipherState holds the keying material and per-direction sequence number of
// one traffic direction. A single CipherState must never be shared between the
// read and write sides.
type CipherState struct {
	SuiteName string
	Key       []byte
	IV        []byte
	MACKey    []byte
	Version   protocol.Version

	sequenceNumber uint64

	aead  cipher.AEAD
	block cipher.Block
}

// NewCipherState builds a CipherState from negotiated keying material. The
// sequence number starts at zero.
func NewCipherState(suiteName string, key, iv, macKey []byte, version protocol.Version) *CipherState {
	return &CipherState{
		SuiteName: suiteName,
		Key:       key,
		IV:        iv,
		MACKey:    macKey,
		Version:   version,
	}
}

// SequenceNumber returns the sequence number the next record will use, without
// consuming it.
func (c *CipherState) SequenceNumber() uint64 { return c.sequenceNumber }

// nextSequenceNumber consumes one sequence number. Once the space is
// exhausted every further record fails; the number never wraps to zero.
func (c *CipherState) nextSequenceNumber() (uint64, error) {
	if c.sequenceNumber == math.MaxUint64 {
		return 0, errSequenceNumberOverflow
	}
	seq := c.sequenceNumber
	c.sequenceNumber++

	return seq, nil
}

func (c *CipherState) getAEAD() (cipher.AEAD, error) {
	if c.aead == nil {
		aead, err := ciphersuite.NewAEAD(c.SuiteName, c.Key)
		if err != nil {
			return nil, err
		}
		c.aead = aead
	}

	return c.aead, nil
}

func (c *CipherState) getBlock() (cipher.Block, error) {
	if c.block == nil {
		block, err := ciphersuite.NewBlockCipher(c.SuiteName, c.Key)
		if err != nil {
			return nil, err
		}
		c.block = block
	}

	return c.block, nil
}
