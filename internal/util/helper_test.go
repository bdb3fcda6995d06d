package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCloneSlice(t *testing.T) {
	require := require.New(t)

	src := []byte{0x68, 0x04, 0x07, 0x00, 0x00, 0x00}

	clone := CloneSlice(src, 0)
	require.Equal(src, clone)
	clone[0] = 0
	require.Equal(byte(0x68), src[0])

	head := CloneSlice(src, 2)
	require.Equal([]byte{0x68, 0x04}, head)

	require.Empty(CloneSlice([]byte(nil), 0))
}
