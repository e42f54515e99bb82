package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const cardLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CardName returns the letter naming a card, or "#n" past the alphabet.
func CardName(card int) string {
	if card >= 0 && card < len(cardLetters) {
		return cardLetters[card : card+1]
	}
	return "#" + strconv.Itoa(card)
}

// CardsToString concatenates the card names, e.g. [0 2 3] -> "acd".
func CardsToString(cards []int) string {
	var b strings.Builder
	for _, card := range cards {
		b.WriteString(CardName(card))
	}
	return b.String()
}

// ParseCards reverses CardsToString for letter names. Spaces are ignored.
func ParseCards(s string) ([]int, error) {
	var cards []int
	for _, r := range s {
		if r == ' ' || r == ',' {
			continue
		}
		idx := strings.IndexRune(cardLetters, r)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCardName, r)
		}
		cards = append(cards, idx)
	}
	return cards, nil
}
