package wire

import "encoding/binary"

// Stateless primitive encoders. Each appends the wire form of one value to dst
// and returns the extended slice.

// AppendByte appends c as an unsigned byte (low 8 bits).
func AppendByte(dst []byte, c int) []byte {
	return append(dst, byte(c))
}

// AppendChar appends c as a signed byte.
func AppendChar(dst []byte, c int) []byte {
	return append(dst, byte(int8(c)))
}

// AppendShort appends c as a 16-bit little-endian value.
func AppendShort(dst []byte, c int) []byte {
	return binary.LittleEndian.AppendUint16(dst, uint16(c))
}

// AppendLong appends c as a 32-bit little-endian value.
func AppendLong(dst []byte, c int) []byte {
	return binary.LittleEndian.AppendUint32(dst, uint32(c))
}

// AppendCoord appends f quantized to 1/8 unit as a signed short.
func AppendCoord(dst []byte, f float32) []byte {
	return AppendShort(dst, int(QuantizeCoord(f)))
}

// AppendAngle appends f (degrees) quantized to 1/256 of a turn.
func AppendAngle(dst []byte, f float32) []byte {
	return append(dst, QuantizeAngle(f))
}

// AppendString appends s followed by a NUL terminator. Anything from the first
// embedded NUL onward is dropped, since the receiver would stop reading there.
func AppendString(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			s = s[:i]
			break
		}
	}
	dst = append(dst, s...)
	return append(dst, 0)
}

// AppendEntity appends an entity number as a 16-bit little-endian value.
func AppendEntity(dst []byte, num int) []byte {
	return AppendShort(dst, num)
}

// QuantizeCoord scales by 8 and converts, truncating toward zero like the C
// float-to-int cast the clients were built against. -0.1 and 0.1 both become 0.
func QuantizeCoord(f float32) int16 {
	return int16(int32(f * 8))
}

// QuantizeAngle maps degrees onto 256 steps, truncating toward zero before
// wrapping into a byte. Negative angles therefore wrap after truncation:
// -1.5 degrees -> int(-1.06) = -1 -> 255.
func QuantizeAngle(f float32) byte {
	return byte(int32(f*256/360) & 255)
}

// DequantizeCoord is the inverse of QuantizeCoord (lossy).
func DequantizeCoord(v int16) float32 {
	return float32(v) * (1.0 / 8)
}

// DequantizeAngle is the inverse of QuantizeAngle, returning degrees in
// [-180, 180).
func DequantizeAngle(b byte) float32 {
	return float32(int8(b)) * (360.0 / 256)
}

// StringSize is the encoded size of s, including its terminator.
func StringSize(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return i + 1
		}
	}
	return len(s) + 1
}
