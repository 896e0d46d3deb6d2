package systems

import (
	"sort"

	"github.com/pthm-cable/keepsake/components"
)

// Semitone offsets of the white keys within one octave, starting at C.
var whiteSemitones = [7]int{0, 2, 4, 5, 7, 9, 11}

// White-key positions within an octave that carry a black key to their right.
var blackAfter = [5]int{0, 1, 3, 4, 5}

const (
	blackKeyWidth  = 3.2  // percent of keyboard width
	blackKeyOffset = 0.34 // fraction of a white key the black key overlaps to its left
)

// PianoLayout is the key geometry of the music page keyboard, in percent of
// its width. Key.Index is the chromatic offset from the lowest C.
type PianoLayout struct {
	white []components.Key
	black []components.Key
}

// NewPianoLayout builds a keyboard of the given number of octaves.
func NewPianoLayout(octaves int) PianoLayout {
	if octaves < 1 {
		octaves = 1
	}
	nWhite := octaves * 7
	kw := 100 / float64(nWhite)

	layout := PianoLayout{
		white: make([]components.Key, 0, nWhite),
		black: make([]components.Key, 0, octaves*len(blackAfter)),
	}
	for w := 0; w < nWhite; w++ {
		layout.white = append(layout.white, components.Key{
			Index: w/7*12 + whiteSemitones[w%7],
			Left:  float64(w) * kw,
			Width: kw,
		})
	}
	for octave := 0; octave < octaves; octave++ {
		for _, pos := range blackAfter {
			w := octave*7 + pos
			layout.black = append(layout.black, components.Key{
				Index: octave*12 + whiteSemitones[pos] + 1,
				Black: true,
				Left:  float64(w+1)*kw - blackKeyOffset*kw,
				Width: blackKeyWidth,
			})
		}
	}
	return layout
}

// Keys returns white keys then black keys, the order they are drawn in.
func (l PianoLayout) Keys() []components.Key {
	keys := make([]components.Key, 0, len(l.white)+len(l.black))
	keys = append(keys, l.white...)
	return append(keys, l.black...)
}

// White returns the white keys, left to right.
func (l PianoLayout) White() []components.Key { return l.white }

// Black returns the black keys, left to right.
func (l PianoLayout) Black() []components.Key { return l.black }

// KeyAt returns the key under x (percent of keyboard width). yFrac is the
// vertical position as a fraction of keyboard height; black keys only cover
// the top 60%.
func (l PianoLayout) KeyAt(x, yFrac float64) (components.Key, bool) {
	if yFrac < 0.6 {
		for _, k := range l.black {
			if x >= k.Left && x < k.Left+k.Width {
				return k, true
			}
		}
	}
	i := sort.Search(len(l.white), func(i int) bool {
		return l.white[i].Left+l.white[i].Width > x
	})
	if i < len(l.white) && x >= l.white[i].Left {
		return l.white[i], true
	}
	return components.Key{}, false
}
