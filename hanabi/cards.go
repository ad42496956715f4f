package hanabi

import (
	"fmt"
	"math/rand"
)

type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorWhite  Color = "white"
	ColorYellow Color = "yellow"
	ColorMulti  Color = "multi"
)

// colorOrder fixes the index every knowledge array is keyed by.
var colorOrder = []Color{ColorBlue, ColorGreen, ColorRed, ColorWhite, ColorYellow, ColorMulti}

const (
	maxValue  = 5
	numColors = 6
)

func colorIndex(c Color) int {
	for i, x := range colorOrder {
		if x == c {
			return i
		}
	}
	return -1
}

type Card struct {
	Color Color `json:"color"`
	Value int   `json:"value"`
}

type Variant string

const (
	VariantBase      Variant = "base"
	VariantMulti     Variant = "multi"
	VariantMultiHard Variant = "multihard"
)

// ParseVariant reads a settings string; empty means the base game.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantBase, "":
		return VariantBase, nil
	case VariantMulti:
		return VariantMulti, nil
	case VariantMultiHard:
		return VariantMultiHard, nil
	default:
		return "", fmt.Errorf("unknown variant %q", s)
	}
}

func (v Variant) Colors() []Color {
	if v == VariantBase {
		return colorOrder[:5]
	}
	return colorOrder
}

// deckCount is the number of copies of a card in the deck. The hard
// multi variant has a single copy of each multi card.
func deckCount(v Variant, c Color, value int) int {
	if c == ColorMulti && v == VariantMultiHard {
		return 1
	}
	switch value {
	case 1:
		return 3
	case 2, 3, 4:
		return 2
	default:
		return 1
	}
}

// Deck hides its card order from every viewer: redacted decks keep
// only the count.
type Deck struct {
	Cards []Card `json:"cards,omitempty"`
	Count int    `json:"count"`
}

func newDeck(v Variant) Deck {
	var cards []Card
	for _, c := range v.Colors() {
		for value := 1; value <= maxValue; value++ {
			for i := 0; i < deckCount(v, c, value); i++ {
				cards = append(cards, Card{Color: c, Value: value})
			}
		}
	}
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return Deck{Cards: cards, Count: len(cards)}
}

func (d *Deck) take() Card {
	card := d.Cards[len(d.Cards)-1]
	d.Cards = d.Cards[:len(d.Cards)-1]
	d.Count = len(d.Cards)
	return card
}

func (d *Deck) empty() bool {
	return d.Count == 0
}

func (d Deck) view() Deck {
	return Deck{Count: d.Count}
}

// Played tracks the highest card played per color.
type Played map[Color]int

func newPlayed(v Variant) Played {
	played := make(Played, len(v.Colors()))
	for _, c := range v.Colors() {
		played[c] = 0
	}
	return played
}

func (p Played) Score() int {
	total := 0
	for _, n := range p {
		total += n
	}
	return total
}

// play accepts the card if it is the next value of its color.
func (p Played) play(card Card) bool {
	if card.Value != p[card.Color]+1 {
		return false
	}
	p[card.Color] = card.Value
	return true
}

type KnowledgeState string

const (
	Possible   KnowledgeState = "possible"
	Known      KnowledgeState = "known"
	Impossible KnowledgeState = "impossible"
)

// CardKnowledge is what a card's owner can deduce about it from hints.
// Values is indexed by value-1, Colors by the fixed color order.
type CardKnowledge struct {
	Values [maxValue]KnowledgeState  `json:"values"`
	Colors [numColors]KnowledgeState `json:"colors"`
}

func newCardKnowledge(v Variant) CardKnowledge {
	var know CardKnowledge
	for i := range know.Values {
		know.Values[i] = Possible
	}
	for i := range know.Colors {
		know.Colors[i] = Possible
	}
	if v == VariantBase {
		know.Colors[colorIndex(ColorMulti)] = Impossible
	}
	return know
}

// collapseValues promotes a lone remaining possibility to known.
func (k *CardKnowledge) collapseValues() {
	collapse(k.Values[:])
}

func (k *CardKnowledge) collapseColors() {
	collapse(k.Colors[:])
}

func collapse(states []KnowledgeState) {
	possible := -1
	for i, s := range states {
		if s != Possible {
			continue
		}
		if possible != -1 {
			return
		}
		possible = i
	}
	if possible != -1 {
		states[possible] = Known
	}
}

// HandCard pairs a card with its owner's knowledge of it. Card is nil
// in the owner's own view.
type HandCard struct {
	Card      *Card         `json:"card,omitempty"`
	Knowledge CardKnowledge `json:"knowledge"`
}

type Hand struct {
	Cards []HandCard `json:"cards"`
}

func newHand(v Variant, cardsPerPlayer int, deck *Deck) Hand {
	cards := make([]HandCard, 0, cardsPerPlayer)
	for i := 0; i < cardsPerPlayer; i++ {
		card := deck.take()
		cards = append(cards, HandCard{Card: &card, Knowledge: newCardKnowledge(v)})
	}
	return Hand{Cards: cards}
}

func (h *Hand) draw(v Variant, deck *Deck) {
	if deck.empty() {
		return
	}
	card := deck.take()
	h.Cards = append(h.Cards, HandCard{Card: &card, Knowledge: newCardKnowledge(v)})
}

// take removes and returns the card at index, or nil if out of range.
func (h *Hand) take(index int) *HandCard {
	if index < 0 || index >= len(h.Cards) {
		return nil
	}
	taken := h.Cards[index]
	h.Cards = append(h.Cards[:index], h.Cards[index+1:]...)
	return &taken
}

// applyValueHint updates knowledge for "these cards are value v".
func (h *Hand) applyValueHint(value int) {
	for i := range h.Cards {
		know := &h.Cards[i].Knowledge
		if h.Cards[i].Card.Value == value {
			for j := range know.Values {
				know.Values[j] = Impossible
			}
			know.Values[value-1] = Known
		} else {
			know.Values[value-1] = Impossible
			know.collapseValues()
		}
	}
}

// applyColorHint updates knowledge for "these cards are color c".
// Multi cards answer yes to every color hint.
func (h *Hand) applyColorHint(c Color) {
	for i := range h.Cards {
		know := &h.Cards[i].Knowledge
		cardColor := h.Cards[i].Card.Color
		if cardColor == c || cardColor == ColorMulti {
			for _, other := range colorOrder {
				if other != c && other != ColorMulti {
					know.Colors[colorIndex(other)] = Impossible
				}
			}
		} else {
			know.Colors[colorIndex(ColorMulti)] = Impossible
			know.Colors[colorIndex(c)] = Impossible
		}
		know.collapseColors()
	}
}

// view strips the card identities, leaving only the knowledge.
func (h Hand) view() Hand {
	cards := make([]HandCard, len(h.Cards))
	for i, hc := range h.Cards {
		cards[i] = HandCard{Knowledge: hc.Knowledge}
	}
	return Hand{Cards: cards}
}

func (h Hand) clone() Hand {
	cards := make([]HandCard, len(h.Cards))
	for i, hc := range h.Cards {
		cards[i] = hc
		if hc.Card != nil {
			card := *hc.Card
			cards[i].Card = &card
		}
	}
	return Hand{Cards: cards}
}
