// Package alignment implements block-alignment requests (spec §4.A): a
// partial MIN/MAX/OFFSET constraint per axis between two blocks, evaluated
// against their current placement to produce a signal-weighted mismatch
// cost and a per-block pass/fail classification.
package alignment

import (
	"math"

	"github.com/go3dic/floorplanner/pkg/block"
	"github.com/go3dic/floorplanner/pkg/geometry"
)

// Type is a partial alignment constraint's kind along one axis.
type Type int

const (
	Undef Type = iota
	Offset
	Min
	Max
)

// Handling controls what an unsatisfiable request means for the search:
// STRICT requests must hold in any accepted layout, FLEXIBLE ones only
// contribute a soft cost term.
type Handling int

const (
	Strict Handling = iota
	Flexible
)

// Request is one alignment constraint between two blocks, with an
// independent Type/value pair per axis (either axis may be Undef).
type Request struct {
	ID       int
	SI, SJ   *block.Block
	TypeX    Type
	AlignX   float64
	TypeY    Type
	AlignY   float64
	Handling Handling
	Signals  int
	Fulfilled bool
}

// New builds a Request, normalizing a negative MIN/MAX range (only OFFSET
// accepts negative values, signifying "sj below/left of si").
func New(id int, handling Handling, signals int, si, sj *block.Block, typeX Type, alignX float64, typeY Type, alignY float64) *Request {
	r := &Request{ID: id, Handling: handling, Signals: signals, SI: si, SJ: sj, TypeX: typeX, AlignX: alignX, TypeY: typeY, AlignY: alignY}
	if alignX < 0 && typeX != Offset {
		r.AlignX = math.Abs(alignX)
	}
	if alignY < 0 && typeY != Offset {
		r.AlignY = math.Abs(alignY)
	}
	return r
}

func (r *Request) rangeX() bool    { return r.TypeX == Min && r.AlignX != 0 }
func (r *Request) rangeY() bool    { return r.TypeY == Min && r.AlignY != 0 }
func (r *Request) rangeMaxX() bool { return r.TypeX == Max && r.AlignX != 0 }
func (r *Request) rangeMaxY() bool { return r.TypeY == Max && r.AlignY != 0 }
func (r *Request) offsetX() bool   { return r.TypeX == Offset }
func (r *Request) offsetY() bool   { return r.TypeY == Offset }

// RangeX reports whether this request has a minimum-overlap constraint on
// the X axis (exported for the packer's shift-during-generation step).
func (r *Request) RangeX() bool { return r.rangeX() }

// RangeY mirrors RangeX for the Y axis.
func (r *Request) RangeY() bool { return r.rangeY() }

// OffsetX reports whether this request has a fixed-offset constraint on the
// X axis.
func (r *Request) OffsetX() bool { return r.offsetX() }

// OffsetY mirrors OffsetX for the Y axis.
func (r *Request) OffsetY() bool { return r.offsetY() }

// VerticalBus reports whether this request, if satisfied, forces a
// through-stack column/bus shape: a minimum overlap on both axes, a
// zero-offset fix on both axes, or a small enough non-zero offset on both
// axes that the blocks still partially overlap.
func (r *Request) VerticalBus() bool {
	if r.rangeX() && r.rangeY() {
		return true
	}
	if r.offsetX() && r.AlignX == 0 && r.offsetY() && r.AlignY == 0 {
		return true
	}
	if r.offsetX() && r.AlignX != 0 && r.offsetY() && r.AlignY != 0 {
		wOK := r.AlignX < r.SI.BB.W()
		if r.AlignX <= 0 {
			wOK = r.AlignX > -r.SJ.BB.W()
		}
		hOK := r.AlignY < r.SI.BB.H()
		if r.AlignY <= 0 {
			hOK = r.AlignY > -r.SJ.BB.H()
		}
		return wOK && hOK
	}
	return false
}

// Evaluate is the result of scoring a request against the blocks' current
// placement: a signal-weighted cost and the unweighted (actual) mismatch.
type Evaluate struct {
	Cost           float64
	ActualMismatch float64
}

// Evaluate scores r against SI/SJ's current bounding boxes, annotating both
// blocks' AlignmentStatus as a side effect (spec §3 AlignmentStatus, used by
// the SA driver's per-tuple accept/reject bookkeeping and by reporting).
func (r *Request) Evaluate() Evaluate {
	var intersect, bb geometry.Rect

	r.Fulfilled = true
	r.SI.AlignmentStat = block.AlignSuccess
	r.SJ.AlignmentStat = block.AlignSuccess

	if r.rangeX() || r.rangeY() {
		intersect = geometry.DetermineIntersection(r.SI.BB, r.SJ.BB)
	}
	if r.rangeMaxX() || r.rangeMaxY() {
		bb = geometry.BoundingBoxCenters(r.SI.BB, r.SJ.BB)
	}

	var cost float64

	switch {
	case r.rangeX():
		if intersect.W() < r.AlignX {
			cost += r.AlignX - intersect.W()
			if intersect.W() <= 0 {
				if geometry.LeftOfIntersecting(r.SI.BB, r.SJ.BB, false) {
					cost += r.SJ.BB.LL.X - r.SI.BB.UR.X
					r.SI.AlignmentStat = block.AlignFailHorTooLeft
					r.SJ.AlignmentStat = block.AlignFailHorTooRight
				} else {
					cost += r.SI.BB.LL.X - r.SJ.BB.UR.X
					r.SI.AlignmentStat = block.AlignFailHorTooRight
					r.SJ.AlignmentStat = block.AlignFailHorTooLeft
				}
			}
			r.Fulfilled = false
		}
	case r.rangeMaxX():
		if bb.W() > r.AlignX {
			cost += bb.W() - r.AlignX
			r.Fulfilled = false
			if r.SI.BB.LL.X < r.SJ.BB.LL.X {
				r.SI.AlignmentStat = block.AlignFailHorTooLeft
				r.SJ.AlignmentStat = block.AlignFailHorTooRight
			} else {
				r.SI.AlignmentStat = block.AlignFailHorTooRight
				r.SJ.AlignmentStat = block.AlignFailHorTooLeft
			}
		}
	case r.offsetX():
		if !geometry.Eq(r.SJ.BB.LL.X-r.SI.BB.LL.X, r.AlignX) {
			cost += offsetCost(r.SJ.BB.LL.X, r.SI.BB.LL.X, r.AlignX, r.SI, r.SJ,
				block.AlignFailHorTooRight, block.AlignFailHorTooLeft)
			r.Fulfilled = false
		}
	}

	switch {
	case r.rangeY():
		if intersect.H() < r.AlignY {
			cost += r.AlignY - intersect.H()
			if intersect.H() <= 0 {
				if geometry.BelowIntersecting(r.SI.BB, r.SJ.BB, false) {
					cost += r.SJ.BB.LL.Y - r.SI.BB.UR.Y
					r.SI.AlignmentStat = block.AlignFailVertTooLow
					r.SJ.AlignmentStat = block.AlignFailVertTooHigh
				} else {
					cost += r.SI.BB.LL.Y - r.SJ.BB.UR.Y
					r.SI.AlignmentStat = block.AlignFailVertTooHigh
					r.SJ.AlignmentStat = block.AlignFailVertTooLow
				}
			}
			r.Fulfilled = false
		}
	case r.rangeMaxY():
		if bb.H() > r.AlignY {
			cost += bb.H() - r.AlignY
			r.Fulfilled = false
			if r.SI.BB.LL.Y < r.SJ.BB.LL.Y {
				r.SI.AlignmentStat = block.AlignFailVertTooLow
				r.SJ.AlignmentStat = block.AlignFailVertTooHigh
			} else {
				r.SI.AlignmentStat = block.AlignFailVertTooHigh
				r.SJ.AlignmentStat = block.AlignFailVertTooLow
			}
		}
	case r.offsetY():
		if !geometry.Eq(r.SJ.BB.LL.Y-r.SI.BB.LL.Y, r.AlignY) {
			cost += offsetCost(r.SJ.BB.LL.Y, r.SI.BB.LL.Y, r.AlignY, r.SI, r.SJ,
				block.AlignFailVertTooHigh, block.AlignFailVertTooLow)
			r.Fulfilled = false
		}
	}

	mismatch := cost
	return Evaluate{Cost: cost * float64(r.Signals), ActualMismatch: mismatch}
}

// offsetCost scores a fixed-offset constraint along one axis: sjCoord and
// siCoord are sj/si's ll on that axis, want is the required signed offset
// (sj - si). siTooFarToward is the status for si lying too far in the
// positive direction on that axis (HorTooRight/VertTooHigh), siTooFarAway
// the one for the negative direction (HorTooLeft/VertTooLow); sj is tagged
// with the opposite status of the pair (mirrors the four branches of CorblivarAlignmentReq::evaluate's
// offset handling, which differ only in which axis and status enum is
// used).
func offsetCost(sjCoord, siCoord, want float64, si, sj *block.Block, siTooFarToward, siTooFarAway block.AlignmentStatus) float64 {
	if want >= 0 {
		if sjCoord > siCoord {
			mismatch := sjCoord - siCoord - want
			if mismatch < 0 {
				si.AlignmentStat = siTooFarToward
				sj.AlignmentStat = siTooFarAway
			} else {
				si.AlignmentStat = siTooFarAway
				sj.AlignmentStat = siTooFarToward
			}
			return math.Abs(mismatch)
		}
		si.AlignmentStat = siTooFarToward
		sj.AlignmentStat = siTooFarAway
		return siCoord - sjCoord + want
	}

	if sjCoord < siCoord {
		mismatch := siCoord - sjCoord + want
		if mismatch < 0 {
			si.AlignmentStat = siTooFarAway
			sj.AlignmentStat = siTooFarToward
		} else {
			si.AlignmentStat = siTooFarToward
			sj.AlignmentStat = siTooFarAway
		}
		return math.Abs(mismatch)
	}
	si.AlignmentStat = siTooFarAway
	sj.AlignmentStat = siTooFarToward
	return sjCoord - siCoord - want
}
