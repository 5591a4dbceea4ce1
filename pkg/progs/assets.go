package progs

import (
	"errors"
	"fmt"
)

// MaxPrecache is the size of each precache table.
const MaxPrecache = 256

var ErrPrecacheFull = errors.New("progs: precache table full")

// Assets holds the model and sound precache lists for the current map.
// Index 0 of each list is the empty name.
type Assets struct {
	Models []string
	Sounds []string
}

func NewAssets() *Assets {
	a := &Assets{}
	a.Reset()
	return a
}

// Reset empties both lists for a new map.
func (a *Assets) Reset() {
	a.Models = []string{""}
	a.Sounds = []string{""}
}

// PrecacheModel adds name unless it is listed already.
func (a *Assets) PrecacheModel(name string) error {
	return precache(&a.Models, name, "model")
}

// PrecacheSound adds name unless it is listed already.
func (a *Assets) PrecacheSound(name string) error {
	return precache(&a.Sounds, name, "sound")
}

// ModelIndex returns the index of name, or -1.
func (a *Assets) ModelIndex(name string) int { return indexOf(a.Models, name) }

// SoundIndex returns the index of name, or -1.
func (a *Assets) SoundIndex(name string) int { return indexOf(a.Sounds, name) }

func precache(list *[]string, name, what string) error {
	if indexOf(*list, name) >= 0 {
		return nil
	}
	if len(*list) >= MaxPrecache {
		return fmt.Errorf("%w: %s %q", ErrPrecacheFull, what, name)
	}
	*list = append(*list, name)
	return nil
}

func indexOf(list []string, name string) int {
	for i, s := range list {
		if s == name {
			return i
		}
	}
	return -1
}
