package coffee

import (
	"sort"

	"buymeacoffee/contract"
)

type Viewport int

const (
	Desktop Viewport = iota
	Mobile
)

func (v Viewport) String() string {
	if v == Mobile {
		return "mobile"
	}
	return "desktop"
}

const (
	TopMemos  = 6
	GroupSize = 3
)

type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Position places a desktop card. Offsets are CSS percentages; Left is set
// for the left group and Right for the right group.
type Position struct {
	Side  Side   `json:"side"`
	Slot  int    `json:"slot"`
	Top   string `json:"top"`
	Left  string `json:"left,omitempty"`
	Right string `json:"right,omitempty"`
}

var (
	leftPositions = [GroupSize]Position{
		{Side: SideLeft, Slot: 0, Top: "40%", Left: "10%"},
		{Side: SideLeft, Slot: 1, Top: "60%", Left: "5%"},
		{Side: SideLeft, Slot: 2, Top: "80%", Left: "10%"},
	}
	rightPositions = [GroupSize]Position{
		{Side: SideRight, Slot: 0, Top: "40%", Right: "10%"},
		{Side: SideRight, Slot: 1, Top: "60%", Right: "5%"},
		{Side: SideRight, Slot: 2, Top: "80%", Right: "10%"},
	}
)

// Projection is the ranked memo window and, on desktop, where each card goes.
// Layout is nil on mobile, where cards flow in a grid.
type Projection struct {
	Viewport Viewport        `json:"viewport"`
	Top      []contract.Memo `json:"top"`
	Layout   []Position      `json:"layout,omitempty"`
}

// Project ranks memos by amount, largest first, keeping list order among
// equal amounts, and lays out the first six. Missing amounts rank as zero.
// It does not modify memos.
func Project(memos []contract.Memo, viewport Viewport) Projection {
	ranked := make([]contract.Memo, len(memos))
	copy(ranked, memos)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AmountOrZero().Cmp(ranked[j].AmountOrZero()) > 0
	})
	if len(ranked) > TopMemos {
		ranked = ranked[:TopMemos]
	}

	p := Projection{Viewport: viewport, Top: ranked}
	if viewport == Desktop {
		p.Layout = make([]Position, len(ranked))
		for i := range ranked {
			if i < GroupSize {
				p.Layout[i] = leftPositions[i]
			} else {
				p.Layout[i] = rightPositions[i-GroupSize]
			}
		}
	}
	return p
}
