package pugdomain

import (
	"fmt"
	"math/rand/v2"
)

// CaptainPolicy chooses captains once the queue closes. A nil selection means
// captains volunteer themselves.
type CaptainPolicy interface {
	Name() string
	SelectCaptains(members []Player, n int) []Player
}

const (
	PolicyFirst     = "first"
	PolicyRandom    = "random"
	PolicyVolunteer = "volunteer"
)

// FirstPolicy takes the first n players to have joined.
type FirstPolicy struct{}

func (FirstPolicy) Name() string { return PolicyFirst }

func (FirstPolicy) SelectCaptains(members []Player, n int) []Player {
	if n > len(members) {
		n = len(members)
	}
	out := make([]Player, n)
	copy(out, members[:n])
	return out
}

// RandomPolicy picks n distinct members uniformly at random.
type RandomPolicy struct {
	rng *rand.Rand
}

// NewRandomPolicy builds a RandomPolicy. A nil rng uses a randomly seeded source.
func NewRandomPolicy(rng *rand.Rand) *RandomPolicy {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RandomPolicy{rng: rng}
}

func (*RandomPolicy) Name() string { return PolicyRandom }

func (r *RandomPolicy) SelectCaptains(members []Player, n int) []Player {
	if n > len(members) {
		n = len(members)
	}
	shuffled := make([]Player, len(members))
	copy(shuffled, members)
	r.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

// VolunteerPolicy selects nobody; players claim captaincy with the captain command.
type VolunteerPolicy struct{}

func (VolunteerPolicy) Name() string { return PolicyVolunteer }

func (VolunteerPolicy) SelectCaptains([]Player, int) []Player { return nil }

// PolicyByName resolves a configured policy name.
func PolicyByName(name string, rng *rand.Rand) (CaptainPolicy, error) {
	switch name {
	case "", PolicyFirst:
		return FirstPolicy{}, nil
	case PolicyRandom:
		return NewRandomPolicy(rng), nil
	case PolicyVolunteer:
		return VolunteerPolicy{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown captain policy %q", ErrInvalidConfig, name)
	}
}
