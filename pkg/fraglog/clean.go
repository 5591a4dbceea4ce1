package fraglog

// cleanTable maps the QuakeWorld character set onto plain ASCII for log
// files: high-bit characters fold to their low half, gold digits become
// digits, and the remaining control glyphs become '#' or a close
// punctuation match.
var cleanTable = buildCleanTable()

func buildCleanTable() [256]byte {
	var t [256]byte
	for i := 0; i < 32; i++ {
		t[i], t[i+128] = '#', '#'
	}
	for i := 32; i < 128; i++ {
		t[i], t[i+128] = byte(i), byte(i)
	}

	t[10], t[13] = 10, 13

	for _, i := range []int{5, 14, 15, 28, 46} {
		t[i], t[i+128] = '.', '.'
	}
	for i := 18; i < 28; i++ {
		t[i], t[i+128] = byte(i+30), byte(i+30)
	}

	t[16], t[16+128] = '[', '['
	t[17], t[17+128] = ']', ']'
	t[29], t[29+128], t[128] = '(', '(', '('
	t[31], t[31+128], t[130] = ')', ')', ')'

	t[127] = '>'
	t[141] = '<'

	t[30], t[129], t[30+128] = '=', '=', '='
	return t
}

// CleanText returns s with every byte mapped through the log character
// table.
func CleanText(s string) string {
	b := []byte(s)
	for i, c := range b {
		b[i] = cleanTable[c]
	}
	return string(b)
}
