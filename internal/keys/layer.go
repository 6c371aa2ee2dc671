package keys

import "strconv"

// Layer is a bitset of the held layer modifiers. Layer1 is the empty set.
type Layer uint8

// Layers are numbered in the order users usually reach them: one modifier
// first, then pairs, then all three.
const (
	Layer1 Layer = 0
	Layer2 Layer = 1
	Layer3 Layer = 2
	Layer4 Layer = 4
	Layer5 Layer = Layer2 | Layer3
	Layer6 Layer = Layer2 | Layer4
	Layer7 Layer = Layer3 | Layer4
	Layer8 Layer = Layer2 | Layer3 | Layer4
)

// LayerCount is the number of distinct layers a keymap cell holds.
const LayerCount = 8

var layerNumbers = [LayerCount]int{
	Layer1: 1, Layer2: 2, Layer3: 3, Layer4: 4,
	Layer5: 5, Layer6: 6, Layer7: 7, Layer8: 8,
}

// Contains reports whether every bit of other is set in l.
func (l Layer) Contains(other Layer) bool {
	return l&other == other
}

// Number returns the 1-based display number of the layer.
func (l Layer) Number() int {
	if int(l) >= LayerCount {
		return 0
	}
	return layerNumbers[l]
}

func (l Layer) String() string {
	return "Layer" + strconv.Itoa(l.Number())
}

// LayerFromNumber is the inverse of Layer.Number.
func LayerFromNumber(n int) (Layer, bool) {
	for mask, num := range layerNumbers {
		if num == n {
			return Layer(mask), true
		}
	}
	return Layer1, false
}
