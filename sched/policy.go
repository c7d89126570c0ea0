package sched

import (
	"fmt"

	"github.com/opslab/schedsim/readyset"
)

// Policy selects one of the three dispatch rules of spec.md §4.3/§4.5.
type Policy int

const (
	HPF Policy = iota
	SRTN
	RR
)

func (p Policy) String() string {
	switch p {
	case HPF:
		return "hpf"
	case SRTN:
		return "srtn"
	case RR:
		return "rr"
	default:
		return "unknown"
	}
}

// ParsePolicy maps the -s flag's value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "hpf":
		return HPF, nil
	case "srtn":
		return SRTN, nil
	case "rr":
		return RR, nil
	default:
		return 0, fmt.Errorf("sched: unknown policy %q, want one of rr, hpf, srtn", s)
	}
}

// newReadySet builds the Ready-Set driver for p.
func newReadySet(p Policy) readyset.Set {
	switch p {
	case HPF:
		return readyset.NewHeap(readyset.LessHPF)
	case SRTN:
		return readyset.NewHeap(readyset.LessSRTN)
	case RR:
		return readyset.NewFIFO()
	default:
		panic(fmt.Sprintf("sched: unhandled policy %v", p))
	}
}
