package recstore

import (
	"bytes"
	"encoding/binary"
)

// Bucket name constants for bbolt storage.
var (
	bucketMeta   = []byte("meta")   // recording name -> Info
	bucketFrames = []byte("frames") // frameKey -> demo.Frame
)

// frameKey is the recording name, a NUL separator and the frame sequence as
// 8 big-endian bytes, so a prefix scan walks one recording in order.
func frameKey(name string, seq uint64) []byte {
	buf := make([]byte, 0, len(name)+9)
	buf = append(buf, name...)
	buf = append(buf, 0)
	return binary.BigEndian.AppendUint64(buf, seq)
}

func framePrefix(name string) []byte {
	return append([]byte(name), 0)
}

// keyToSeq extracts the frame sequence from a frame key.
func keyToSeq(k []byte) (uint64, bool) {
	i := bytes.IndexByte(k, 0)
	if i < 0 || len(k)-i-1 != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(k[i+1:]), true
}
