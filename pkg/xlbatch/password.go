package xlbatch

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
)

const (
	randomAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	randomLength   = 6
)

// DerivePassword computes the repeatable password of a split value:
// project prefix + 123*len(value) + the first three characters of the value
// reversed, upper-cased. Only letters and digits of the value count. It is a
// convenience scheme that lets later batches reuse the same passwords, not a
// secret.
func DerivePassword(p Project, value string) string {
	norm := []rune(alphanumeric(value))
	head := norm
	if len(head) > 3 {
		head = head[:3]
	}
	rev := make([]rune, len(head))
	for i, r := range head {
		rev[len(head)-1-i] = r
	}
	return strings.ToUpper(p.passwordPrefix() + strconv.Itoa(123*len(norm)) + string(rev))
}

// RandomPassword draws six characters from [A-Z0-9], prefixed with the
// project name for named projects. A nil source uses crypto/rand.
func RandomPassword(p Project, source io.Reader) (string, error) {
	if source == nil {
		source = rand.Reader
	}
	limit := big.NewInt(int64(len(randomAlphabet)))
	buf := make([]byte, randomLength)
	for i := range buf {
		n, err := rand.Int(source, limit)
		if err != nil {
			return "", fmt.Errorf("drawing password character: %w", err)
		}
		buf[i] = randomAlphabet[n.Int64()]
	}
	return p.passwordPrefix() + string(buf), nil
}
