// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package ciphersuite maps TLS cipher suite names onto the crypto primitives
// the record layer needs to protect and unprotect records.
package ciphersuite

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des" //nolint:gosec
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"hash"
	"strings"

	"github.com/pion/tlsrecord/pkg/crypto/ccm"
	"github.com/pion/tlsrecord/pkg/protocol"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// TagLength is the length of the authentication tag every AEAD suite
	// supported here appends, except the CCM_8 variants.
	TagLength = 16

	// CCM8TagLength is the truncated tag length used by the CCM_8 suites.
	CCM8TagLength = 8

	// NonceLength is the AEAD nonce length shared by GCM, CCM and
	// ChaCha20-Poly1305 in TLS.
	NonceLength = 12
)

var errUnknownBlockCipher = &protocol.FatalError{Err: errors.New("unknown block cipher in suite name")} //nolint:err113

// IsAEAD returns true if the named suite uses an AEAD construction rather
// than MAC-then-encrypt.
func IsAEAD(suiteName string) bool {
	return strings.Contains(suiteName, "GCM") ||
		strings.Contains(suiteName, "CCM") ||
		strings.Contains(suiteName, "CHACHA20_POLY1305")
}

// TagLengthFor returns the AEAD tag length the named suite produces.
func TagLengthFor(suiteName string) int {
	if strings.Contains(suiteName, "CCM_8") {
		return CCM8TagLength
	}

	return TagLength
}

// NewAEAD constructs the AEAD named by the suite, keyed with key. The key
// length selects between the 128 and 256 bit AES variants.
func NewAEAD(suiteName string, key []byte) (cipher.AEAD, error) {
	switch {
	case strings.Contains(suiteName, "CHACHA20_POLY1305"):
		return chacha20poly1305.New(key)
	case strings.Contains(suiteName, "CCM"):
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}

		return ccm.NewCCM(block, TagLengthFor(suiteName), NonceLength)
	case strings.Contains(suiteName, "GCM"):
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}

		return cipher.NewGCM(block)
	default:
		return nil, errUnknownBlockCipher
	}
}

// NewBlockCipher constructs the block cipher a CBC suite encrypts with.
func NewBlockCipher(suiteName string, key []byte) (cipher.Block, error) {
	if strings.Contains(suiteName, "3DES") {
		return des.NewTripleDESCipher(key) //nolint:gosec
	}
	if strings.Contains(suiteName, "AES") {
		return aes.NewCipher(key)
	}

	return nil, errUnknownBlockCipher
}

// HashFunc returns the constructor for the HMAC hash a MAC-then-encrypt
// suite authenticates with. Suites that name no SHA-2 variant fall back to
// HMAC-SHA-1 per RFC 5246 appendix A.5 naming.
func HashFunc(suiteName string) func() hash.Hash {
	switch {
	case strings.Contains(suiteName, "SHA384"):
		return sha512.New384
	case strings.Contains(suiteName, "SHA256"):
		return sha256.New
	default:
		return sha1.New
	}
}

// MAC computes the record HMAC over the already serialized MAC input.
func MAC(hashFunc func() hash.Hash, key, input []byte) ([]byte, error) {
	mac := hmac.New(hashFunc, key)
	if _, err := mac.Write(input); err != nil {
		return nil, err
	}

	return mac.Sum(nil), nil
}
