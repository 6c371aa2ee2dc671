package keymap

import (
	"errors"
	"fmt"

	"github.com/PixPMusic/gopher-linkb/internal/keys"
)

var (
	ErrOutOfRange      = errors.New("cell out of range")
	ErrModifierOnLayer = errors.New("cannot place special keys on non-default layers")
	ErrModifierBelow   = errors.New("cannot place keys on non-default layers if a modifier key is present on a lower layer")
	ErrUnsupportedKey  = errors.New("key is not supported by the input backend")
	ErrKeysAbove       = errors.New("cannot place a modifier key on the default layer while non-default layers of the cell are assigned")
)

// Keymap assigns a key to every (column, row, layer) of the pad grid.
// Its shape is fixed at construction.
type Keymap struct {
	width  int
	height int
	cells  []keys.Code
}

// New returns an empty keymap for a width x height grid.
func New(width, height int) (*Keymap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid keymap size %dx%d", width, height)
	}
	return &Keymap{
		width:  width,
		height: height,
		cells:  make([]keys.Code, width*height*keys.LayerCount),
	}, nil
}

func (k *Keymap) Width() int  { return k.width }
func (k *Keymap) Height() int { return k.height }

func (k *Keymap) index(col, row int, layer keys.Layer) int {
	return (col*k.height+row)*keys.LayerCount + int(layer)
}

// InBounds reports whether col and row address a cell of the grid.
func (k *Keymap) InBounds(col, row int) bool {
	return col >= 0 && col < k.width && row >= 0 && row < k.height
}

// Get returns the key stored at exactly the given layer, without fallback.
func (k *Keymap) Get(col, row int, layer keys.Layer) keys.Code {
	if !k.InBounds(col, row) || int(layer) >= keys.LayerCount {
		return keys.Undefined
	}
	return k.cells[k.index(col, row, layer)]
}

// Resolve returns the key a pad represents while the layers in mask are held,
// together with the layer it was found on. Layers are scanned from mask down
// to Layer1 and only layers whose bits are a subset of mask are considered.
func (k *Keymap) Resolve(col, row int, mask keys.Layer) (keys.Code, keys.Layer) {
	if !k.InBounds(col, row) {
		return keys.Undefined, keys.Layer1
	}
	mask &= keys.LayerCount - 1
	base := k.index(col, row, keys.Layer1)
	for l := int(mask); l >= 0; l-- {
		layer := keys.Layer(l)
		if !mask.Contains(layer) {
			continue
		}
		if key := k.cells[base+l]; key != keys.Undefined {
			return key, layer
		}
	}
	return keys.Undefined, keys.Layer1
}

// Set stores key at the given cell. Layer modifiers may only live on Layer1,
// and only in cells whose other layers are unassigned. A cell on another layer
// may not be assigned while the layer just below it resolves to a layer
// modifier.
func (k *Keymap) Set(col, row int, layer keys.Layer, key keys.Code) error {
	if !k.InBounds(col, row) || int(layer) >= keys.LayerCount {
		return fmt.Errorf("set %d,%d %s: %w", col, row, layer, ErrOutOfRange)
	}

	if layer == keys.Layer1 && key.IsLayerModifier() {
		for l := keys.Layer2; int(l) < keys.LayerCount; l++ {
			if k.Get(col, row, l) != keys.Undefined {
				return fmt.Errorf("set %d,%d %s: %w", col, row, layer, ErrKeysAbove)
			}
		}
	}

	if layer != keys.Layer1 {
		if key.IsLayerModifier() {
			return fmt.Errorf("set %d,%d %s: %w", col, row, layer, ErrModifierOnLayer)
		}
		current, found := k.Resolve(col, row, layer-1)
		if found != layer && current.IsLayerModifier() {
			return fmt.Errorf("set %d,%d %s: %w", col, row, layer, ErrModifierBelow)
		}
	}

	k.cells[k.index(col, row, layer)] = key
	return nil
}

// Clone returns an independent copy.
func (k *Keymap) Clone() *Keymap {
	c := &Keymap{width: k.width, height: k.height, cells: make([]keys.Code, len(k.cells))}
	copy(c.cells, k.cells)
	return c
}

// Equal reports whether both keymaps have the same shape and assignments.
func (k *Keymap) Equal(other *Keymap) bool {
	if other == nil || k.width != other.width || k.height != other.height {
		return false
	}
	for i := range k.cells {
		if k.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Validate checks that every injectable key in the keymap is accepted by
// supported. All offending cells are reported.
func (k *Keymap) Validate(supported func(keys.Code) bool) error {
	var errs []error
	for col := 0; col < k.width; col++ {
		for row := 0; row < k.height; row++ {
			for l := 0; l < keys.LayerCount; l++ {
				key := k.cells[k.index(col, row, keys.Layer(l))]
				if key.IsInjectable() && !supported(key) {
					errs = append(errs, fmt.Errorf("%d,%d %s %s: %w", col, row, keys.Layer(l), key, ErrUnsupportedKey))
				}
			}
		}
	}
	return errors.Join(errs...)
}
