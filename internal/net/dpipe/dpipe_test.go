// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dpipe

import (
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeBufferedWrite(t *testing.T) {
	connA, connB := Pipe()

	// Writes complete without a concurrent reader.
	for i := 0; i < 10; i++ {
		n, err := connA.Write([]byte("chunk"))
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	}

	buf := make([]byte, 5)
	for i := 0; i < 10; i++ {
		n, err := connB.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, []byte("chunk"), buf[:n])
	}
}

func TestPipeStreamSemantics(t *testing.T) {
	connA, connB := Pipe()

	_, err := connA.Write([]byte("hello world"))
	require.NoError(t, err)

	// A short read keeps the tail for the next read.
	buf := make([]byte, 5)
	n, err := connB.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), buf[:n])

	rest := make([]byte, 16)
	n, err = connB.Read(rest)
	require.NoError(t, err)
	assert.Equal(t, []byte(" world"), rest[:n])
}

func TestPipeWriteDoesNotAliasCaller(t *testing.T) {
	connA, connB := Pipe()

	data := []byte("immutable")
	_, err := connA.Write(data)
	require.NoError(t, err)
	data[0] = 'X'

	buf := make([]byte, 16)
	n, err := connB.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("immutable"), buf[:n])
}

func TestPipeReadDeadline(t *testing.T) {
	connA, _ := Pipe()

	require.NoError(t, connA.SetReadDeadline(time.Now().Add(10*time.Millisecond)))

	buf := make([]byte, 1)
	_, err := connA.Read(buf)
	assert.True(t, errors.Is(err, os.ErrDeadlineExceeded))

	require.NoError(t, connA.SetReadDeadline(time.Time{}))
}

func TestPipeClose(t *testing.T) {
	connA, connB := Pipe()

	require.NoError(t, connA.Close())
	require.NoError(t, connA.Close())

	buf := make([]byte, 1)
	_, err := connA.Read(buf)
	assert.True(t, errors.Is(err, io.EOF))

	_, err = connA.Write([]byte{0})
	assert.True(t, errors.Is(err, io.ErrClosedPipe))

	// The other end keeps working.
	_, err = connB.Write([]byte{0})
	assert.NoError(t, err)
}
