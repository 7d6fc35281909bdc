package outcome

import "github.com/ItzYourBread/cashmash-sub000/internal/rng"

const (
	Reels = 5
	Rows  = 3
)

// Symbol is one reel face with its draw weight and base payout multiplier.
type Symbol struct {
	Code       string  `json:"code"`
	Weight     int     `json:"-"`
	Multiplier float64 `json:"multiplier"`
}

var ReelSymbols = []Symbol{
	{Code: "seven", Weight: 2, Multiplier: 10},
	{Code: "bell", Weight: 4, Multiplier: 5},
	{Code: "bar", Weight: 6, Multiplier: 3},
	{Code: "grape", Weight: 10, Multiplier: 2},
	{Code: "lemon", Weight: 14, Multiplier: 1.2},
	{Code: "cherry", Weight: 16, Multiplier: 0.8},
}

// Paylines are row indices, one per reel.
var Paylines = [][Reels]int{
	{1, 1, 1, 1, 1},
	{0, 0, 0, 0, 0},
	{2, 2, 2, 2, 2},
	{0, 1, 2, 1, 0},
	{2, 1, 0, 1, 2},
}

// runFactors scales a payline win by the length of the matched run.
var runFactors = map[int]float64{3: 1.0, 4: 3.0, 5: 5.0}

type LineWin struct {
	Line   int      `json:"line"`
	Symbol string   `json:"symbol"`
	Count  int      `json:"count"`
	Payout float64  `json:"payout"`
	Cells  [][2]int `json:"cells"`
}

// symbolPool expands the symbol set into a flattened weighted pool so a
// uniform index pick yields a weighted draw.
func symbolPool() []string {
	var pool []string
	for _, s := range ReelSymbols {
		for i := 0; i < s.Weight; i++ {
			pool = append(pool, s.Code)
		}
	}
	return pool
}

func symbolMultiplier(code string) float64 {
	for _, s := range ReelSymbols {
		if s.Code == code {
			return s.Multiplier
		}
	}
	return 0
}

// drawGrid fills every cell independently from the weighted pool.
func drawGrid(src rng.Source, pool []string) [Reels][Rows]string {
	var grid [Reels][Rows]string
	for r := 0; r < Reels; r++ {
		for c := 0; c < Rows; c++ {
			grid[r][c] = pool[src.Intn(len(pool))]
		}
	}
	return grid
}

// evaluateLines walks each payline from reel 0 and pays runs of three or
// more identical symbols. Matched cells are flagged for presentation.
func evaluateLines(grid [Reels][Rows]string, bet float64) ([]LineWin, float64) {
	var wins []LineWin
	var total float64

	for i, line := range Paylines {
		base := grid[0][line[0]]

		count := 1
		for r := 1; r < Reels; r++ {
			if grid[r][line[r]] != base {
				break
			}
			count++
		}

		factor, ok := runFactors[count]
		if !ok {
			continue
		}

		cells := make([][2]int, count)
		for r := 0; r < count; r++ {
			cells[r] = [2]int{r, line[r]}
		}

		payout := bet * symbolMultiplier(base) * factor
		wins = append(wins, LineWin{
			Line:   i + 1,
			Symbol: base,
			Count:  count,
			Payout: payout,
			Cells:  cells,
		})
		total += payout
	}

	return wins, total
}
