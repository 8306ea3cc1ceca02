package cards

// Selection records, per card, which candidate image is chosen.
type Selection []int

// NewSelection returns n zero indices.
func NewSelection(n int) Selection {
	if n < 0 {
		n = 0
	}
	return make(Selection, n)
}

// Sync re-initializes the selection to all zeros when the card count no
// longer matches. It reports whether a reset happened.
func (s *Selection) Sync(n int) bool {
	if len(*s) == n && *s != nil {
		return false
	}
	*s = NewSelection(n)
	return true
}

// Set stores image as the choice for card. Out-of-range cards are ignored.
func (s Selection) Set(card, image int) {
	if card < 0 || card >= len(s) || image < 0 {
		return
	}
	s[card] = image
}

// At returns the choice for card, or 0 when card is out of range.
func (s Selection) At(card int) int {
	if card < 0 || card >= len(s) {
		return 0
	}
	return s[card]
}

// Clone returns an independent copy.
func (s Selection) Clone() Selection {
	return append(Selection(nil), s...)
}
