package wire

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestAppendPrimitives(t *testing.T) {
	var b []byte
	b = AppendByte(b, 0x1ff)
	b = AppendChar(b, -1)
	b = AppendShort(b, 0x1234)
	b = AppendLong(b, -2)
	b = AppendString(b, "hi")
	b = AppendEntity(b, 300)

	want := []byte{0xff, 0xff, 0x34, 0x12, 0xfe, 0xff, 0xff, 0xff, 'h', 'i', 0, 0x2c, 0x01}
	if !bytes.Equal(b, want) {
		t.Fatalf("encoded % x, want % x", b, want)
	}
}

func TestAppendStringStopsAtNUL(t *testing.T) {
	b := AppendString(nil, "ab\x00cd")
	if !bytes.Equal(b, []byte{'a', 'b', 0}) {
		t.Errorf("got % x", b)
	}
	if n := StringSize("ab\x00cd"); n != 3 {
		t.Errorf("StringSize = %d, want 3", n)
	}
}

func TestCoordRoundTrip(t *testing.T) {
	b := AppendCoord(nil, 12.3)
	got := NewReader(b).Coord()
	if math.Abs(float64(got)-12.3) > 0.0625 {
		t.Fatalf("12.3 decoded to %v", got)
	}
}

func TestCoordTruncatesInsteadOfRounding(t *testing.T) {
	// 12.1*8 = 96.8: rounding would give 97, truncation gives 96.
	if q := QuantizeCoord(12.1); q != 96 {
		t.Errorf("QuantizeCoord(12.1) = %d, want 96", q)
	}
	// Negative values truncate toward zero, not toward negative infinity.
	if q := QuantizeCoord(-12.1); q != -96 {
		t.Errorf("QuantizeCoord(-12.1) = %d, want -96", q)
	}
	if q := QuantizeCoord(-0.1); q != 0 {
		t.Errorf("QuantizeCoord(-0.1) = %d, want 0", q)
	}
	b := AppendCoord(nil, -12.1)
	if !bytes.Equal(b, []byte{0xa0, 0xff}) {
		t.Errorf("AppendCoord(-12.1) = % x", b)
	}
}

func TestAngleQuantization(t *testing.T) {
	cases := []struct {
		in   float32
		want byte
	}{
		{0, 0},
		{1, 0},
		{90, 64},
		{-90, 192},
		{-1.5, 255},
		{359, 255},
		{360, 0},
	}
	for _, c := range cases {
		if got := QuantizeAngle(c.in); got != c.want {
			t.Errorf("QuantizeAngle(%v) = %d, want %d", c.in, got, c.want)
		}
	}
	if got := DequantizeAngle(QuantizeAngle(-90)); got != -90 {
		t.Errorf("-90 decoded to %v", got)
	}
}

func TestBufferRejectsOverflow(t *testing.T) {
	b := NewBuffer("test", 4, false)
	if err := b.PutLong(7); err != nil {
		t.Fatalf("PutLong: %v", err)
	}
	err := b.PutByte(1)
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if b.Len() != 4 {
		t.Errorf("length changed to %d after failed write", b.Len())
	}
	if !bytes.Equal(b.Bytes(), []byte{7, 0, 0, 0}) {
		t.Errorf("content changed: % x", b.Bytes())
	}
}

func TestBufferAllowOverflowClears(t *testing.T) {
	b := NewBuffer("datagram", 4, true)
	b.PutLong(7)
	if err := b.PutByte(9); err != nil {
		t.Fatalf("PutByte: %v", err)
	}
	if !b.Overflowed {
		t.Error("expected Overflowed to be set")
	}
	if !bytes.Equal(b.Bytes(), []byte{9}) {
		t.Errorf("got % x, want 09", b.Bytes())
	}
	b.Clear()
	if b.Overflowed || b.Len() != 0 {
		t.Error("Clear did not reset buffer")
	}
}

func TestReaderShortRead(t *testing.T) {
	r := NewReader([]byte{1, 'x'})
	if r.Byte() != 1 {
		t.Fatal("first byte mismatch")
	}
	if s := r.String(); s != "" {
		t.Errorf("unterminated string returned %q", s)
	}
	if !errors.Is(r.Err(), ErrShortRead) {
		t.Errorf("expected ErrShortRead, got %v", r.Err())
	}
}

func TestMessageBuilders(t *testing.T) {
	r := NewReader(PrintMessage(PrintHigh, "hello\n"))
	if r.Byte() != SvcPrint || r.Byte() != PrintHigh || r.String() != "hello\n" || r.Remaining() != 0 {
		t.Error("print message layout mismatch")
	}
	r = NewReader(LightStyleMessage(3, "az"))
	if r.Byte() != SvcLightStyle || r.Char() != 3 || r.String() != "az" {
		t.Error("lightstyle message layout mismatch")
	}
}
