package domain

import "time"

// TransformedKind discriminates the two variants of TransformedMarket.
type TransformedKind string

const (
	KindBinary      TransformedKind = "binary"
	KindMultiOption TransformedKind = "multi_option"
)

// TransformedMarket is the output of the transform engine: either a
// pass-through binary market or a synthesized multi-option market. Exactly one
// of Binary / MultiOption is non-nil, matching Kind.
type TransformedMarket struct {
	Kind        TransformedKind
	Binary      *BinaryMarket
	MultiOption *MultiOptionMarket
}

// NewBinary wraps a BinaryMarket in a TransformedMarket.
func NewBinary(b BinaryMarket) TransformedMarket {
	return TransformedMarket{Kind: KindBinary, Binary: &b}
}

// NewMultiOption wraps a MultiOptionMarket in a TransformedMarket.
func NewMultiOption(m MultiOptionMarket) TransformedMarket {
	return TransformedMarket{Kind: KindMultiOption, MultiOption: &m}
}

// BinaryMarket is a raw market passed through unchanged, keeping its own
// Yes/No outcome set.
type BinaryMarket struct {
	ID          string
	Question    string
	Description string
	Image       string
	Icon        string
	Outcomes    []string
	Category    string
	EndDate     time.Time
	EventID     string
	EventTitle  string
}

// OptionImage is the tri-state image assignment for one option. Resolved false
// means no dedicated image could be found anywhere in the batch; callers must
// not substitute the event banner for an unresolved option.
type OptionImage struct {
	URL      string
	Resolved bool
}

// MultiOptionMarket is a synthetic record merging several binary markets that
// represent one underlying event.
//
// Invariants:
//   - Options contains no duplicates and preserves first-seen order.
//   - Every entry of Options has a key in OptionImages.
//   - A resolved option image never equals Banner.
//   - SourceIDs lists each merged market id exactly once, in original order.
type MultiOptionMarket struct {
	ID           string
	Title        string
	Options      []string
	OptionImages map[string]OptionImage
	Banner       string
	Icon         string
	Category     string
	EndDate      time.Time
	EventID      string
	SourceIDs    []string
}
