// Package geometry provides the rectangle and point primitives shared by the
// packer, alignment engine, and thermal/hotspot analyses: intersection,
// containment, and bounding-box operators with a tolerant float comparison.
package geometry

import "math"

// Epsilon is the default tolerance used by doubleComp-style comparisons
// throughout the geometry package.
const Epsilon = 1e-3

// Point is a 2-D coordinate.
type Point struct {
	X, Y float64
}

// DoubleComp compares two floats within eps and returns -1, 0, or 1 the way
// a three-way comparator would, treating |a-b| <= eps as equal.
func DoubleComp(a, b, eps float64) int {
	if math.Abs(a-b) <= eps {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

// Eq reports whether a and b are equal within Epsilon.
func Eq(a, b float64) bool {
	return DoubleComp(a, b, Epsilon) == 0
}

// Leq reports a <= b within Epsilon.
func Leq(a, b float64) bool {
	return a < b || Eq(a, b)
}

// Geq reports a >= b within Epsilon.
func Geq(a, b float64) bool {
	return a > b || Eq(a, b)
}

// Rect is an axis-aligned rectangle given by its lower-left and upper-right
// corners; width, height and area are computed from them on each call.
type Rect struct {
	LL, UR Point
}

// NewRect builds a rect from explicit corners, normalizing width/height to
// be non-negative.
func NewRect(llx, lly, urx, ury float64) Rect {
	if urx < llx {
		llx, urx = urx, llx
	}
	if ury < lly {
		lly, ury = ury, lly
	}
	return Rect{LL: Point{llx, lly}, UR: Point{urx, ury}}
}

// W returns the rect's width.
func (r Rect) W() float64 { return r.UR.X - r.LL.X }

// H returns the rect's height.
func (r Rect) H() float64 { return r.UR.Y - r.LL.Y }

// Area returns the rect's area; a degenerate ("empty") rect from a failed
// intersection has non-positive width or height and thus area <= 0.
func (r Rect) Area() float64 {
	w, h := r.W(), r.H()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Empty reports whether the rect has zero-or-negative area.
func (r Rect) Empty() bool {
	return r.W() <= 0 || r.H() <= 0
}

// DetermineIntersection returns the rect covering the shared area of a and
// b. If either axis has ll >= ur, the returned rect is empty (Area() == 0);
// the caller never needs a separate "did they intersect" check.
func DetermineIntersection(a, b Rect) Rect {
	ll := Point{X: math.Max(a.LL.X, b.LL.X), Y: math.Max(a.LL.Y, b.LL.Y)}
	ur := Point{X: math.Min(a.UR.X, b.UR.X), Y: math.Min(a.UR.Y, b.UR.Y)}
	return Rect{LL: ll, UR: ur}
}

// BoundingBox returns the smallest rect enclosing both a and b.
func BoundingBox(a, b Rect) Rect {
	return Rect{
		LL: Point{X: math.Min(a.LL.X, b.LL.X), Y: math.Min(a.LL.Y, b.LL.Y)},
		UR: Point{X: math.Max(a.UR.X, b.UR.X), Y: math.Max(a.UR.Y, b.UR.Y)},
	}
}

// BoundingBoxCenters returns the bounding box of a and b's center points
// (degenerating to a single point when both centers coincide) -- used by
// the alignment engine's MAX-distance evaluation, which measures
// center-to-center span rather than edge-to-edge span.
func BoundingBoxCenters(a, b Rect) Rect {
	ax, ay := a.LL.X+a.W()/2, a.LL.Y+a.H()/2
	bx, by := b.LL.X+b.W()/2, b.LL.Y+b.H()/2
	return Rect{
		LL: Point{X: math.Min(ax, bx), Y: math.Min(ay, by)},
		UR: Point{X: math.Max(ax, bx), Y: math.Max(ay, by)},
	}
}

// RectsIntersect reports whether a and b have strictly positive overlap in
// both axes, using half-open [ll, ur) semantics so that shared boundaries do
// not count as an intersection.
func RectsIntersect(a, b Rect) bool {
	if Geq(a.LL.X, b.UR.X) || Geq(b.LL.X, a.UR.X) {
		return false
	}
	if Geq(a.LL.Y, b.UR.Y) || Geq(b.LL.Y, a.UR.Y) {
		return false
	}
	return true
}

// OverlapX returns the length of the overlap interval between a and b on
// the X axis (0 if disjoint or merely touching).
func OverlapX(a, b Rect) float64 {
	lo := math.Max(a.LL.X, b.LL.X)
	hi := math.Min(a.UR.X, b.UR.X)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// OverlapY returns the length of the overlap interval between a and b on
// the Y axis.
func OverlapY(a, b Rect) float64 {
	lo := math.Max(a.LL.Y, b.LL.Y)
	hi := math.Min(a.UR.Y, b.UR.Y)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// LeftOf reports whether a lies (weakly) to the left of b, i.e. a.ur.x <=
// b.ll.x within tolerance.
func LeftOf(a, b Rect) bool {
	return Leq(a.UR.X, b.LL.X)
}

// Below reports whether a lies (weakly) below b, i.e. a.ur.y <= b.ll.y
// within tolerance.
func Below(a, b Rect) bool {
	return Leq(a.UR.Y, b.LL.Y)
}

// IntersectsVertical reports whether a and b overlap on the Y axis.
func IntersectsVertical(a, b Rect) bool {
	return Geq(a.UR.Y, b.LL.Y) && Geq(b.UR.Y, a.LL.Y) && OverlapY(a, b) > 0
}

// IntersectsHorizontal reports whether a and b overlap on the X axis.
func IntersectsHorizontal(a, b Rect) bool {
	return Geq(a.UR.X, b.LL.X) && Geq(b.UR.X, a.LL.X) && OverlapX(a, b) > 0
}

// LeftOfIntersecting reports whether a lies to the left of b and, when
// considerVerticalIntersect is set, additionally requires a and b to
// overlap on the Y axis -- the packer's stack-maintenance predicate
// "rectA_leftOf_rectB".
func LeftOfIntersecting(a, b Rect, considerVerticalIntersect bool) bool {
	if !LeftOf(a, b) {
		return false
	}
	return !considerVerticalIntersect || IntersectsVertical(a, b)
}

// BelowIntersecting reports whether a lies below b and, when
// considerHorizontalIntersect is set, additionally requires a and b to
// overlap on the X axis -- the packer's stack-maintenance predicate
// "rectA_below_rectB".
func BelowIntersecting(a, b Rect, considerHorizontalIntersect bool) bool {
	if !Below(a, b) {
		return false
	}
	return !considerHorizontalIntersect || IntersectsHorizontal(a, b)
}

// GreedyShiftingRemoveIntersection shifts toShift by the minimal axis
// needed to remove its intersection with fixed: if the overlap is wider
// than it is tall, toShift is pushed up (its ll.y set to fixed's ur.y);
// otherwise it is pushed right. Exactly one direction is corrected per
// call; the caller iterates until RectsIntersect reports false.
func GreedyShiftingRemoveIntersection(toShift, fixed Rect) Rect {
	ow := OverlapX(toShift, fixed)
	oh := OverlapY(toShift, fixed)

	w, h := toShift.W(), toShift.H()
	if ow > oh {
		dy := fixed.UR.Y - toShift.LL.Y
		return NewRect(toShift.LL.X, toShift.LL.Y+dy, toShift.LL.X+w, toShift.LL.Y+dy+h)
	}
	dx := fixed.UR.X - toShift.LL.X
	return NewRect(toShift.LL.X+dx, toShift.LL.Y, toShift.LL.X+dx+w, toShift.LL.Y+h)
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return NewRect(r.LL.X+dx, r.LL.Y+dy, r.UR.X+dx, r.UR.Y+dy)
}

// Contains reports whether r fully contains p (closed boundary).
func (r Rect) Contains(p Point) bool {
	return Geq(p.X, r.LL.X) && Leq(p.X, r.UR.X) && Geq(p.Y, r.LL.Y) && Leq(p.Y, r.UR.Y)
}
