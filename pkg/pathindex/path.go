package pathindex

import "strings"

// join is a fast alternative to path.Join designed for root-relative,
// forward-slash-separated paths. It avoids the cleaning overhead of
// path.Join, which we don't need since our inputs are already normalized.
func join(base, leaf string) string {
	if leaf == "" {
		panic("pathindex: empty leaf name")
	}
	if base == "" {
		return leaf
	}
	return base + "/" + leaf
}

// parent is a fast alternative to path.Dir for root-relative paths. The root
// path ("") has no parent and calling parent on it panics.
func parent(p string) string {
	if p == "" {
		panic("pathindex: empty path has no parent")
	}
	if i := strings.LastIndexByte(p, '/'); i != -1 {
		return p[:i]
	}
	return ""
}

// components splits a root-relative path into its slash-separated parts. The
// root path yields an empty slice.
func components(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
