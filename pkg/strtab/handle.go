package strtab

import (
	"errors"
	"fmt"
)

// Errors returned by the string manager. All of them are script-fatal when
// they surface from a builtin.
var (
	ErrBadHandle  = errors.New("strtab: bad string handle")
	ErrTableFull  = errors.New("strtab: dynamic string table full")
	ErrDoubleFree = errors.New("strtab: string already freed")
	ErrReadOnly   = errors.New("strtab: string is read-only")
)

// Kind identifies which storage tier a handle refers to.
type Kind uint8

const (
	KindConstant Kind = iota // immutable constant pool, addressed by byte offset
	KindScratch              // rotating scratch ring slot
	KindDynamic              // explicitly allocated dynamic table slot
)

func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindScratch:
		return "scratch"
	case KindDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Handle is the decoded form of a script string value.
type Handle struct {
	Kind  Kind
	Index int
}

// Constant returns a handle for a constant pool offset.
func Constant(offset int) Handle { return Handle{Kind: KindConstant, Index: offset} }

func (h Handle) String() string {
	return fmt.Sprintf("%s:%d", h.Kind, h.Index)
}

// Encode maps a handle onto the integer form stored in interpreter slots:
//
//	constant  offset             ->  offset (>= 0)
//	scratch   slot in [0,8)      ->  -(slot+1), in [-8,-1]
//	dynamic   slot in [0,max)    ->  -(slot+9), in [-(max+8), -9]
//
// The dynamic range starts below the scratch ring for any table size.
func (m *Manager) Encode(h Handle) int32 {
	switch h.Kind {
	case KindScratch:
		return int32(-(h.Index + 1))
	case KindDynamic:
		return int32(-(h.Index + ScratchSlots + 1))
	default:
		return int32(h.Index)
	}
}

// Decode classifies an integer slot value. Values beyond the dynamic range
// are rejected.
func (m *Manager) Decode(v int32) (Handle, error) {
	n := int(v)
	switch {
	case n >= 0:
		return Handle{Kind: KindConstant, Index: n}, nil
	case n >= -ScratchSlots:
		return Handle{Kind: KindScratch, Index: -n - 1}, nil
	case n >= -(ScratchSlots + m.maxDynamic):
		return Handle{Kind: KindDynamic, Index: -n - ScratchSlots - 1}, nil
	default:
		return Handle{}, fmt.Errorf("%w: %d", ErrBadHandle, v)
	}
}
