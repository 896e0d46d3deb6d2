package components

import "time"

// MaxPetals bounds the petal arrays of a pearl flower.
const MaxPetals = 6

// Position is an ambient decoration's location in percent space.
type Position struct {
	X, Y float64
}

// Flower is a pearl flower decoration. Its petal layout is fixed at creation
// so re-rendering never reshuffles it.
type Flower struct {
	Size         float64
	Delay        time.Duration
	PetalCount   int
	PetalAngles  [MaxPetals]float64
	PetalLengths [MaxPetals]float64
}

// Decoration is a flattened copy of an ambient entity for renderers.
type Decoration struct {
	Position
	Flower
}
