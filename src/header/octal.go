package header

import "github.com/pkg/errors"

// parseOctal decodes an octal ASCII field. Leading spaces and NULs are
// skipped; the number ends at the first NUL, space, or the field end.
// An empty field decodes to zero.
func parseOctal(field []byte) (int64, error) {
	i := 0
	for i < len(field) && (field[i] == ' ' || field[i] == 0) {
		i++
	}
	var v int64
	for ; i < len(field); i++ {
		c := field[i]
		if c == 0 || c == ' ' {
			break
		}
		if c < '0' || c > '7' {
			return 0, errors.Errorf("invalid octal digit %q", c)
		}
		v = v<<3 | int64(c-'0')
	}
	return v, nil
}

// formatOctal writes v right-justified with leading zeros into the first
// len(dst)-1 bytes of dst and NUL-terminates it.
func formatOctal(dst []byte, v int64) {
	i := len(dst) - 1
	dst[i] = 0
	for i--; i >= 0; i-- {
		dst[i] = byte(v&7) + '0'
		v >>= 3
	}
}

// formatChecksum writes the classic POSIX checksum form: six octal
// digits, NUL, space.
func formatChecksum(dst []byte, v int64) {
	for i := 5; i >= 0; i-- {
		dst[i] = byte(v&7) + '0'
		v >>= 3
	}
	dst[6] = 0
	dst[7] = ' '
}
