package systems

import (
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/keepsake/components"
)

// FlowerPolicy holds the ranges pearl flowers are drawn from.
type FlowerPolicy struct {
	X, Y        Range // percent
	Size        Range // pixels
	Delay       Range // seconds
	PetalCounts []int
	// Petal length is Size*PetalBase + U(0, Size*PetalJitter).
	PetalBase   float64
	PetalJitter float64
}

// AmbientField is the static decoration layer of a page. Decorations are
// entities in an ECS world with a Position and a Flower.
type AmbientField struct {
	world  *ecs.World
	mapper *ecs.Map2[components.Position, components.Flower]
	filter *ecs.Filter2[components.Position, components.Flower]
}

// NewAmbientField creates an empty field.
func NewAmbientField() *AmbientField {
	world := ecs.NewWorld()
	return &AmbientField{
		world:  world,
		mapper: ecs.NewMap2[components.Position, components.Flower](world),
		filter: ecs.NewFilter2[components.Position, components.Flower](world),
	}
}

// Populate adds count flowers drawn from policy.
func (f *AmbientField) Populate(count int, policy FlowerPolicy, rng Rand) {
	for i := 0; i < count; i++ {
		pos, flower := newFlower(policy, rng)
		f.mapper.NewEntity(&pos, &flower)
	}
}

func newFlower(policy FlowerPolicy, rng Rand) (components.Position, components.Flower) {
	pos := components.Position{
		X: policy.X.Sample(rng),
		Y: policy.Y.Sample(rng),
	}
	flower := components.Flower{
		Size:  policy.Size.Sample(rng),
		Delay: time.Duration(policy.Delay.Sample(rng) * float64(time.Second)),
	}

	petals := components.MaxPetals
	if len(policy.PetalCounts) > 0 {
		petals = policy.PetalCounts[rng.Intn(len(policy.PetalCounts))]
	}
	petals = max(1, min(petals, components.MaxPetals))
	flower.PetalCount = petals

	for p := 0; p < petals; p++ {
		flower.PetalAngles[p] = BaseAngle(p, petals)
		flower.PetalLengths[p] = flower.Size*policy.PetalBase + between(rng, 0, flower.Size*policy.PetalJitter)
	}
	return pos, flower
}

// Len returns the number of decorations.
func (f *AmbientField) Len() int {
	n := 0
	query := f.filter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Decorations returns every decoration in storage order.
func (f *AmbientField) Decorations() []components.Decoration {
	var out []components.Decoration
	query := f.filter.Query()
	for query.Next() {
		pos, flower := query.Get()
		out = append(out, components.Decoration{Position: *pos, Flower: *flower})
	}
	return out
}

// Clear removes every decoration.
func (f *AmbientField) Clear() {
	var entities []ecs.Entity
	query := f.filter.Query()
	for query.Next() {
		entities = append(entities, query.Entity())
	}
	for _, e := range entities {
		f.world.RemoveEntity(e)
	}
}
