package session

import (
	"fmt"

	"github.com/ItzYourBread/cashmash-sub000/internal/rng"
)

type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// newShuffledDeck builds a standard 52-card deck in a random permutation
// drawn from the seedable source.
func newShuffledDeck(src rng.Source) []Card {
	ordered := make([]Card, 0, 52)
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			ordered = append(ordered, Card{Rank: rank, Suit: suit})
		}
	}

	deck := make([]Card, 52)
	for i, j := range src.Perm(52) {
		deck[i] = ordered[j]
	}
	return deck
}

// handValue counts aces as 11 and downgrades them to 1 while the total
// exceeds 21.
func handValue(cards []Card) int {
	total := 0
	aces := 0

	for _, c := range cards {
		switch {
		case c.Rank == Ace:
			total += 11
			aces++
		case c.Rank >= Ten:
			total += 10
		default:
			total += int(c.Rank)
		}
	}

	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// isNatural reports a two-card 21.
func isNatural(cards []Card) bool {
	return len(cards) == 2 && handValue(cards) == 21
}
