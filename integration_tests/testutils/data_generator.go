package testutils

import (
	"time"

	pugdomain "github.com/Black-And-White-Club/pug-bot/app/modules/pug/domain"
	"github.com/brianvoe/gofakeit/v7"
)

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}

	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

// Seed returns the seed the generator was built with.
func (g *TestDataGenerator) Seed() int64 {
	return g.seed
}

// GeneratePlayer creates a player with a snowflake-shaped ID.
func (g *TestDataGenerator) GeneratePlayer() pugdomain.Player {
	return pugdomain.Player{
		ID:   pugdomain.PlayerID(g.faker.DigitN(18)),
		Name: g.faker.Username(),
	}
}

// GeneratePlayers creates n players with distinct IDs.
func (g *TestDataGenerator) GeneratePlayers(n int) []pugdomain.Player {
	seen := make(map[pugdomain.PlayerID]struct{}, n)
	players := make([]pugdomain.Player, 0, n)
	for len(players) < n {
		p := g.GeneratePlayer()
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		players = append(players, p)
	}
	return players
}
