// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package tlsrecord

import (
	"crypto/cipher"
	"crypto/hmac"
	"crypto/subtle"
	"encoding/binary"
	"fmt"

	"github.com/pion/tlsrecord/pkg/crypto/ciphersuite"
	"github.com/pion/tlsrecord/pkg/protocol"
	"github.com/pion/tlsrecord/pkg/protocol/recordlayer"
)

// tls12Adapter implements the TLS 1.0 through 1.2 wire transforms. AEAD
// suites bind the header as additional data; CBC suites run MAC-then-encrypt
// with the padding checked in constant time.
type tls12Adapter struct{}

func (a *tls12Adapter) encodeRecord(rec *recordlayer.Record) ([]byte, error) {
	return rec.Marshal()
}

func (a *tls12Adapter) decodeRecord(raw []byte) (*recordlayer.Record, error) {
	rec := &recordlayer.Record{}
	if err := rec.Unmarshal(raw); err != nil {
		return nil, err
	}

	return rec, nil
}

// additionalData is the header bound by AEAD suites: content type, version
// and the length of the plaintext.
func (a *tls12Adapter) additionalData(contentType protocol.ContentType, version protocol.Version, length int) []byte {
	adata := make([]byte, 5)
	adata[0] = byte(contentType)
	adata[1] = version.Major
	adata[2] = version.Minor
	binary.BigEndian.PutUint16(adata[3:], uint16(length)) //nolint:gosec

	return adata
}

func (a *tls12Adapter) applyEncryption(rec *recordlayer.Record, state *CipherState) error {
	seq, err := state.nextSequenceNumber()
	if err != nil {
		return err
	}

	if ciphersuite.IsAEAD(state.SuiteName) {
		return a.sealAEAD(rec, state, seq)
	}

	return a.sealCBC(rec, state, seq)
}

func (a *tls12Adapter) applyDecryption(rec *recordlayer.Record, state *CipherState) (protocol.ContentType, error) {
	seq, err := state.nextSequenceNumber()
	if err != nil {
		return 0, err
	}

	if ciphersuite.IsAEAD(state.SuiteName) {
		return rec.Header.ContentType, a.openAEAD(rec, state, seq)
	}

	return rec.Header.ContentType, a.openCBC(rec, state, seq)
}

func (a *tls12Adapter) sealAEAD(rec *recordlayer.Record, state *CipherState, seq uint64) error {
	aead, err := state.getAEAD()
	if err != nil {
		return err
	}

	nonce := aeadNonce(state.IV, seq)
	adata := a.additionalData(rec.Header.ContentType, rec.Header.Version, len(rec.Fragment))
	rec.Fragment = aead.Seal(nil, nonce, rec.Fragment, adata)
	rec.Header.ContentLen = uint16(len(rec.Fragment)) //nolint:gosec

	return nil
}

func (a *tls12Adapter) openAEAD(rec *recordlayer.Record, state *CipherState, seq uint64) error {
	aead, err := state.getAEAD()
	if err != nil {
		return err
	}
	if len(rec.Fragment) < aead.Overhead() {
		return fmt.Errorf("%w: ciphertext shorter than the tag", ErrRecordVerificationFailed)
	}

	nonce := aeadNonce(state.IV, seq)
	adata := a.additionalData(rec.Header.ContentType, rec.Header.Version, len(rec.Fragment)-aead.Overhead())
	plaintext, err := aead.Open(nil, nonce, rec.Fragment, adata)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRecordVerificationFailed, err) //nolint:errorlint
	}
	rec.Fragment = plaintext
	rec.Header.ContentLen = uint16(len(plaintext)) //nolint:gosec

	return nil
}

// macInput is the MAC-then-encrypt input: sequence number, then the record
// header with the plaintext length, then the plaintext itself.
func (a *tls12Adapter) macInput(seq uint64, contentType protocol.ContentType, version protocol.Version, plaintext []byte) []byte {
	input := make([]byte, 13+len(plaintext))
	binary.BigEndian.PutUint64(input, seq)
	input[8] = byte(contentType)
	input[9] = version.Major
	input[10] = version.Minor
	binary.BigEndian.PutUint16(input[11:], uint16(len(plaintext))) //nolint:gosec
	copy(input[13:], plaintext)

	return input
}

func (a *tls12Adapter) sealCBC(rec *recordlayer.Record, state *CipherState, seq uint64) error {
	block, err := state.getBlock()
	if err != nil {
		return err
	}

	mac, err := ciphersuite.MAC(
		ciphersuite.HashFunc(state.SuiteName), state.MACKey,
		a.macInput(seq, rec.Header.ContentType, rec.Header.Version, rec.Fragment),
	)
	if err != nil {
		return err
	}

	payload := make([]byte, 0, len(rec.Fragment)+len(mac)+block.BlockSize())
	payload = append(payload, rec.Fragment...)
	payload = append(payload, mac...)
	payload = ciphersuite.AddPKCS7Padding(payload, block.BlockSize())

	cipher.NewCBCEncrypter(block, state.IV).CryptBlocks(payload, payload)
	rec.Fragment = payload
	rec.Header.ContentLen = uint16(len(payload)) //nolint:gosec

	return nil
}

// openCBC recovers and verifies a MAC-then-encrypt fragment. Padding and MAC
// failures share a single error and a single code path so an attacker cannot
// tell them apart by timing.
func (a *tls12Adapter) openCBC(rec *recordlayer.Record, state *CipherState, seq uint64) error { //nolint:cyclop
	block, err := state.getBlock()
	if err != nil {
		return err
	}

	blockSize := block.BlockSize()
	macLen := ciphersuite.HashFunc(state.SuiteName)().Size()
	body := rec.Fragment
	if len(body) == 0 || len(body)%blockSize != 0 || len(body) < blockSize {
		return fmt.Errorf("%w: ciphertext is not block aligned", ErrRecordVerificationFailed)
	}

	decrypted := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, state.IV).CryptBlocks(decrypted, body)

	paddingGood, padLen := ciphersuite.VerifyPKCS7Padding(decrypted, blockSize)
	paddingOK := 0
	if paddingGood {
		paddingOK = 1
	}
	// On bad padding fall back to a zero pad length so the MAC is still
	// computed over a same-shaped input.
	padLen = subtle.ConstantTimeSelect(paddingOK, padLen, 0)

	lengthOK := subtle.ConstantTimeLessOrEq(padLen+macLen, len(decrypted))
	dataEnd := subtle.ConstantTimeSelect(lengthOK, len(decrypted)-padLen-macLen, 0)

	plaintext := decrypted[:dataEnd]
	receivedMAC := decrypted[dataEnd : dataEnd+subtle.ConstantTimeSelect(lengthOK, macLen, 0)]

	expectedMAC, err := ciphersuite.MAC(
		ciphersuite.HashFunc(state.SuiteName), state.MACKey,
		a.macInput(seq, rec.Header.ContentType, rec.Header.Version, plaintext),
	)
	if err != nil {
		return err
	}

	macOK := 0
	if hmac.Equal(receivedMAC, expectedMAC) {
		macOK = 1
	}
	if paddingOK&lengthOK&macOK != 1 {
		return fmt.Errorf("%w: bad record MAC", ErrRecordVerificationFailed)
	}

	rec.Fragment = plaintext
	rec.Header.ContentLen = uint16(len(plaintext)) //nolint:gosec

	return nil
}
