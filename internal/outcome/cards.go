package outcome

import "github.com/ItzYourBread/cashmash-sub000/internal/rng"

// Side is one of the three outcomes of the table card game.
type Side string

const (
	SidePlayer Side = "player"
	SideBanker Side = "banker"
	SideTie    Side = "tie"
)

// Near-even base weights when all three sides are covered; ties stay rare.
// Ordered so the weighted pool is deterministic under a seeded source.
var baseSideWeights = []struct {
	side   Side
	weight int
}{
	{SidePlayer, 45},
	{SideBanker, 45},
	{SideTie, 10},
}

var sidePayoutMultipliers = map[Side]float64{
	SidePlayer: 2,
	SideBanker: 2,
	SideTie:    8,
}

// drawWinningSide picks the winner. When the player has not covered all
// three sides, covered sides have their weight halved so the house leans
// toward outcomes the player did not stake.
func drawWinningSide(src rng.Source, covered map[Side]bool) Side {
	allCovered := covered[SidePlayer] && covered[SideBanker] && covered[SideTie]

	var pool []Side
	for _, entry := range baseSideWeights {
		w := entry.weight
		if !allCovered && covered[entry.side] {
			w = entry.weight / 2
		}
		for i := 0; i < w; i++ {
			pool = append(pool, entry.side)
		}
	}
	return pool[src.Intn(len(pool))]
}

// synthesizeHands builds two-card hands whose mod-10 totals match the chosen
// winner. The hands exist for presentation; the winner was already decided.
func synthesizeHands(src rng.Source, winner Side) (player, banker []int, playerTotal, bankerTotal int) {
	if winner == SideTie {
		playerTotal = src.Intn(10)
		bankerTotal = playerTotal
	} else {
		winTotal := 6 + src.Intn(4)
		loseTotal := src.Intn(winTotal)
		if winner == SidePlayer {
			playerTotal, bankerTotal = winTotal, loseTotal
		} else {
			playerTotal, bankerTotal = loseTotal, winTotal
		}
	}

	player = handForTotal(src, playerTotal)
	banker = handForTotal(src, bankerTotal)
	return player, banker, playerTotal, bankerTotal
}

// handForTotal returns two card values (0-9, face cards count zero) whose
// sum mod 10 equals total.
func handForTotal(src rng.Source, total int) []int {
	first := src.Intn(10)
	second := (total - first + 10) % 10
	return []int{first, second}
}
