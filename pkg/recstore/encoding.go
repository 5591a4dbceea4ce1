package recstore

import (
	"fmt"

	"github.com/crystal-mush/goqwsv/pkg/demo"
	"github.com/fxamacker/cbor/v2"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("recstore: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

func encodeFrame(f *demo.Frame) ([]byte, error) {
	return cborEncMode.Marshal(f)
}

func decodeFrame(data []byte) (*demo.Frame, error) {
	var f demo.Frame
	if err := cbor.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("recstore: unmarshal frame: %w", err)
	}
	return &f, nil
}

func encodeInfo(info *Info) ([]byte, error) {
	return cborEncMode.Marshal(info)
}

func decodeInfo(data []byte) (*Info, error) {
	var info Info
	if err := cbor.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("recstore: unmarshal info: %w", err)
	}
	return &info, nil
}
