package wire

// RedText sets the high bit on printable ASCII so the client draws it in
// the alternate (red/gold) character set.
func RedText(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c > 32 && c < 128 {
			b[i] = c | 128
		}
	}
	return string(b)
}
