// Package cacode generates GPS L1 coarse/acquisition spreading codes. The
// sequences are Gold codes of period 1023 built from two 10-stage linear
// feedback shift registers, one per satellite PRN.
package cacode

import (
	"fmt"

	"github.com/rjboer/GoRanging/internal/dsp"
)

const (
	// Length is the code period in chips.
	Length = 1023
	// ChipRateHz is the broadcast chipping rate.
	ChipRateHz = 1.023e6
)

// g2Delay holds the G2 register phase offset per PRN. Entries beyond 37 cover
// the extended PRN assignments used by augmentation satellites.
var g2Delay = [...]int{
	5, 6, 7, 8, 17, 18, 139, 140, 141, 251,
	252, 254, 255, 256, 257, 258, 469, 470, 471, 472,
	473, 474, 509, 512, 513, 514, 515, 516, 859, 860,
	861, 862, 863, 950, 947, 948, 950, 67, 103, 91,
	19, 679, 225, 625, 946, 638, 161, 1001, 554, 280,
	710, 709, 775, 864, 558, 220, 397, 55, 898, 759,
	367, 299, 1018, 729, 695, 780, 801, 788, 732, 34,
	320, 327, 389, 407, 525, 405, 221, 761, 260, 326,
	955, 653, 699, 422, 188, 438, 959, 539, 879, 677,
	586, 153, 792, 814, 446, 264, 1015, 278, 536, 819,
	156, 957, 159, 712, 885, 461, 248, 713, 126, 807,
	279, 122, 197, 693, 632, 771, 467, 647, 203, 145,
	175, 52, 21, 237, 235, 886, 657, 634, 762, 355,
	1012, 176, 603, 130, 359, 595, 68, 386, 797, 456,
	499, 883, 307, 127, 211, 121, 118, 163, 628, 853,
	484, 289, 811, 202, 1021, 463, 568, 904, 670, 230,
	911, 684, 309, 644, 932, 12, 314, 891, 212, 185,
	675, 503, 150, 395, 345, 846, 798, 992, 357, 995,
	877, 112, 144, 476, 193, 109, 445, 291, 87, 399,
	292, 901, 339, 208, 711, 189, 263, 537, 663, 942,
	173, 900, 30, 500, 935, 556, 373, 85, 652, 310,
}

// NumPRN reports how many PRN assignments the generator knows.
func NumPRN() int { return len(g2Delay) }

// Chips returns the 1023-chip sequence for the PRN with binary 1 and 0
// mapped to +1 and -1.
func Chips(prn int) ([]int8, error) {
	if prn < 1 || prn > len(g2Delay) {
		return nil, fmt.Errorf("cacode: prn %d outside 1..%d: %w", prn, len(g2Delay), dsp.ErrInvalidParameter)
	}

	var r1, r2 [10]int8
	for i := range r1 {
		r1[i] = -1
		r2[i] = -1
	}
	g1 := make([]int8, Length)
	g2 := make([]int8, Length)
	for i := 0; i < Length; i++ {
		g1[i] = r1[9]
		g2[i] = r2[9]
		f1 := r1[2] * r1[9]
		f2 := r2[1] * r2[2] * r2[5] * r2[7] * r2[8] * r2[9]
		for j := 9; j > 0; j-- {
			r1[j] = r1[j-1]
			r2[j] = r2[j-1]
		}
		r1[0] = f1
		r2[0] = f2
	}

	chips := make([]int8, Length)
	j := Length - g2Delay[prn-1]
	for i := 0; i < Length; i++ {
		chips[i] = -g1[i] * g2[j%Length]
		j++
	}
	return chips, nil
}

// Samples renders the code as a unit-power complex baseband sequence, ready
// for pulse shaping or correlation.
func Samples(prn int) ([]complex128, error) {
	chips, err := Chips(prn)
	if err != nil {
		return nil, err
	}
	out := make([]complex128, len(chips))
	for i, c := range chips {
		out[i] = complex(float64(c), 0)
	}
	return out, nil
}
