package wire

// Terminator ends every frame. It never appears inside a stuffed payload.
const Terminator byte = 0x00

// maxBlock is the longest run of non-zero bytes one code byte can describe.
const maxBlock = 0xfe

// MaxEncodedLen is the worst-case frame length, terminator included, for a
// raw payload of n bytes.
func MaxEncodedLen(n int) int {
	return n + n/maxBlock + 2
}

// StuffBytes applies consistent-overhead byte stuffing to src, writing into
// dst. No terminator is appended. It returns the number of bytes written.
func StuffBytes(dst, src []byte) (int, error) {
	if len(dst) == 0 {
		return 0, ErrBufferTooSmall
	}
	codeAt, code, n := 0, byte(1), 1
	for _, b := range src {
		if b == Terminator {
			dst[codeAt] = code
			if n >= len(dst) {
				return 0, ErrBufferTooSmall
			}
			codeAt, code = n, 1
			n++
			continue
		}
		if n >= len(dst) {
			return 0, ErrBufferTooSmall
		}
		dst[n] = b
		n++
		if code++; code == maxBlock+1 {
			dst[codeAt] = code
			if n >= len(dst) {
				return 0, ErrBufferTooSmall
			}
			codeAt, code = n, 1
			n++
		}
	}
	dst[codeAt] = code
	return n, nil
}

// UnstuffInPlace reverses StuffBytes in buf. A single trailing terminator is
// accepted and ignored. It returns the length of the decoded payload which
// occupies buf[:n].
func UnstuffInPlace(buf []byte) (int, error) {
	end := len(buf)
	if end > 0 && buf[end-1] == Terminator {
		end--
	}
	r, w := 0, 0
	for r < end {
		code := buf[r]
		if code == Terminator {
			return 0, ErrInvalidStuffing
		}
		r++
		blockEnd := r + int(code) - 1
		if blockEnd > end {
			return 0, ErrInvalidStuffing
		}
		for ; r < blockEnd; r++ {
			if buf[r] == Terminator {
				return 0, ErrInvalidStuffing
			}
			buf[w] = buf[r]
			w++
		}
		if code != maxBlock+1 && r < end {
			buf[w] = Terminator
			w++
		}
	}
	return w, nil
}
