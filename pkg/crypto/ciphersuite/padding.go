// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package ciphersuite

import (
	"crypto/subtle"
	"errors"

	"github.com/pion/tlsrecord/pkg/protocol"
)

// ProtectionStrategy names the padding-oracle countermeasure a connection
// must apply for a given version and suite.
type ProtectionStrategy int

// ProtectionStrategy enums.
const (
	// ProtectionNone is used when the construction has no padding to attack.
	ProtectionNone ProtectionStrategy = iota

	// ProtectionSplitRecords is the 1/n-1 record split applied to TLS 1.0
	// CBC suites against BEAST.
	ProtectionSplitRecords

	// ProtectionConstantTimePadding verifies CBC padding in constant time
	// against Lucky-13 style oracles.
	ProtectionConstantTimePadding
)

var errInvalidPadding = &protocol.TemporaryError{Err: errors.New("invalid padding")} //nolint:err113

// SelectProtectionStrategy decides which countermeasure the record layer
// applies. AEAD constructions and TLS 1.3 carry no CBC padding; TLS 1.0 CBC
// needs record splitting; everything else gets constant time verification.
func SelectProtectionStrategy(version protocol.Version, suiteName string) ProtectionStrategy {
	switch {
	case version.Equal(protocol.Version1_3):
		return ProtectionNone
	case IsAEAD(suiteName):
		return ProtectionNone
	case version.Equal(protocol.Version1_0):
		return ProtectionSplitRecords
	default:
		return ProtectionConstantTimePadding
	}
}

// AddPKCS7Padding appends p bytes of value p so the result is a whole number
// of blocks, 1 <= p <= blockSize.
func AddPKCS7Padding(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}

	return padded
}

// VerifyPKCS7Padding checks PKCS#7 padding in constant time and reports the
// padding length. The last blockSize bytes are always examined and the loop
// always runs blockSize iterations; only the length checks, which are
// public, may exit early.
func VerifyPKCS7Padding(data []byte, blockSize int) (valid bool, padLen int) {
	if len(data) == 0 || blockSize <= 0 || len(data)%blockSize != 0 {
		return false, 0
	}

	padValue := data[len(data)-1]

	good := subtle.ConstantTimeLessOrEq(int(padValue), blockSize)
	good &= subtle.ConstantTimeLessOrEq(1, int(padValue))

	for i := 0; i < blockSize; i++ {
		isPadPosition := subtle.ConstantTimeLessOrEq(i+1, int(padValue))
		matches := subtle.ConstantTimeByteEq(data[len(data)-1-i], padValue)
		// A pad position must carry the pad value; other positions are free.
		good &= subtle.ConstantTimeSelect(isPadPosition, matches, 1)
	}

	return good == 1, subtle.ConstantTimeSelect(good, int(padValue), 0)
}

// RemovePKCS7Padding strips the padding AddPKCS7Padding applied. Invalid
// padding is reported with a single generic error.
func RemovePKCS7Padding(data []byte, blockSize int) ([]byte, error) {
	valid, padLen := VerifyPKCS7Padding(data, blockSize)
	if !valid {
		return nil, errInvalidPadding
	}

	return data[:len(data)-padLen], nil
}

// SplitRecordMitigation performs the 1/n-1 split used against BEAST: the
// first plaintext byte goes into its own record so the attacker controlled
// IV never lines up with a full block of attacker data.
func SplitRecordMitigation(plaintext []byte) [][]byte {
	if len(plaintext) < 2 {
		return [][]byte{plaintext}
	}

	return [][]byte{plaintext[:1], plaintext[1:]}
}
