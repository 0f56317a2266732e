package service

import (
	"encoding/binary"
	"strings"

	"github.com/google/uuid"
)

const (
	bookingCodePrefix   = "FB"
	bookingCodeLength   = 8
	bookingCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewBookingCode maps the 16 bytes of token onto "FB" and 8 characters from [A-Z0-9].
func NewBookingCode(token uuid.UUID) string {
	var sb strings.Builder
	sb.Grow(len(bookingCodePrefix) + bookingCodeLength)
	sb.WriteString(bookingCodePrefix)

	for i := 0; i < bookingCodeLength; i++ {
		v := binary.BigEndian.Uint16(token[2*i : 2*i+2])
		sb.WriteByte(bookingCodeAlphabet[int(v)%len(bookingCodeAlphabet)])
	}
	return sb.String()
}
