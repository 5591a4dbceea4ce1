package console

import (
	"errors"
	"fmt"
	"log"
)

// DefaultCbufSize is the capacity of the server command buffer.
const DefaultCbufSize = 8192

var ErrCbufOverflow = errors.New("console: command buffer overflow")

// Cbuf is the server's pending command text. Lines are separated by
// newlines or by semicolons outside double quotes.
type Cbuf struct {
	max  int
	text string
}

func NewCbuf(max int) *Cbuf {
	if max <= 0 {
		max = DefaultCbufSize
	}
	return &Cbuf{max: max}
}

// Len returns the number of pending bytes.
func (b *Cbuf) Len() int { return len(b.text) }

// Text returns the pending text.
func (b *Cbuf) Text() string { return b.text }

// AddText appends text to the end of the buffer.
func (b *Cbuf) AddText(text string) error {
	if len(b.text)+len(text) >= b.max {
		log.Printf("console: Cbuf_AddText: overflow")
		return fmt.Errorf("%w: %d + %d", ErrCbufOverflow, len(b.text), len(text))
	}
	b.text += text
	return nil
}

// InsertText puts text ahead of everything pending, followed by a newline
// so it stays a separate command.
func (b *Cbuf) InsertText(text string) error {
	if len(b.text)+len(text)+1 >= b.max {
		log.Printf("console: Cbuf_InsertText: overflow")
		return fmt.Errorf("%w: %d + %d", ErrCbufOverflow, len(b.text), len(text))
	}
	b.text = text + "\n" + b.text
	return nil
}

// Clear drops all pending text.
func (b *Cbuf) Clear() { b.text = "" }

// Execute runs pending lines until the buffer is empty. Each line is
// removed before exec is called, so exec may add or insert text.
func (b *Cbuf) Execute(exec func(line string)) {
	for b.text != "" {
		line := b.next()
		exec(line)
	}
}

func (b *Cbuf) next() string {
	quotes := false
	i := 0
	for ; i < len(b.text); i++ {
		c := b.text[i]
		if c == '"' {
			quotes = !quotes
		}
		if (!quotes && c == ';') || c == '\n' {
			break
		}
	}
	line := b.text[:i]
	if i < len(b.text) {
		i++
	}
	b.text = b.text[i:]
	return line
}

// SplitLines breaks text the way Execute would without running anything.
func SplitLines(text string) []string {
	b := Cbuf{text: text}
	var out []string
	for b.text != "" {
		out = append(out, b.next())
	}
	return out
}
