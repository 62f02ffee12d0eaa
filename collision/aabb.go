package collision

import "github.com/jakecoffman/cp"

// Overlaps reports whether two AABBs overlap. The inequalities are strict, so
// boxes that only touch do not overlap. cp.BB.Intersects is inclusive and is
// not used for this reason.
func Overlaps(a, b cp.BB) bool {
	return a.L < b.R && a.R > b.L && a.B < b.T && a.T > b.B
}
