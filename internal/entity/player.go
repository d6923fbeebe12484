package entity

// Side identifies one of the two seats of a match. SideA always moves first.
type Side int8

const (
	SideA Side = iota
	SideB
)

// Next returns the side that moves after this one.
func (that Side) Next() Side {
	if that == SideA {
		return SideB
	}
	return SideA
}

// Mark returns the mark a side drops.
func (that Side) Mark() Mark {
	if that == SideA {
		return MarkA
	}
	return MarkB
}

// Number is the 1-based player number shown to users.
func (that Side) Number() int {
	return int(that) + 1
}

func (that Side) String() string {
	if that == SideA {
		return "A"
	}
	return "B"
}

type Player struct {
	Side string `json:"side"`
	Mark string `json:"mark,omitempty"`
	Addr string `json:"addr,omitempty"`
}
