package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestBookingCodeFormat(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 5000; i++ {
		code := NewBookingCode(uuid.New())
		require.Regexp(t, `^FB[A-Z0-9]{8}$`, code)
		seen[code] = struct{}{}
	}
	require.Greater(t, len(seen), 4990)
}

func TestBookingCodeIsDerivedFromToken(t *testing.T) {
	t.Parallel()

	var zero uuid.UUID
	require.Equal(t, "FBAAAAAAAA", NewBookingCode(zero))

	var token uuid.UUID
	token[1] = 35 // 0x0023 -> '9'
	token[3] = 36 // 0x0024 -> 'A'
	token[15] = 27
	require.Equal(t, "FB9AAAAAA1", NewBookingCode(token))
}
