// README: Record identifiers and human-facing ticket codes.
package ticket

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"parkdesk/internal/types"
)

const (
	CodePrefix   = "PKS-"
	CodeLength   = 8
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewID returns a UUIDv7: time ordered and unique across concurrent callers.
func NewID() types.ID {
	return types.ID(uuid.Must(uuid.NewV7()).String())
}

// NewTicketCode returns a display code such as "PKS-7Q2M0XKA". Uniqueness is
// probabilistic; codes are not registered anywhere.
func NewTicketCode() string {
	var b strings.Builder
	b.Grow(len(CodePrefix) + CodeLength)
	b.WriteString(CodePrefix)
	limit := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic(err) // crypto/rand never fails on supported platforms
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String()
}

// ValidCode reports whether code has the ticket code shape.
func ValidCode(code string) bool {
	if !strings.HasPrefix(code, CodePrefix) || len(code) != len(CodePrefix)+CodeLength {
		return false
	}
	for _, r := range code[len(CodePrefix):] {
		if !strings.ContainsRune(codeAlphabet, r) {
			return false
		}
	}
	return true
}
