// Package resolver finds named fields in JSON documents whose shape is not known
// in advance. Callers describe a path of key names and the resolver searches for
// each key at the current level first and below it when the key is missing there.
package resolver

// ChildrenKey marks a map whose nested structures may repeat the keys of the map itself.
const ChildrenKey = "children"

// Resolve walks path from root. Each segment is searched in the node produced by
// the previous one; a segment that finds nothing makes the whole path Null.
// A final result that is a sequence of sequences is flattened one level.
func Resolve(root Node, path ...string) Node {
	result := root
	for _, key := range path {
		result = traverse(result, key)
		if result.IsNull() {
			return Node{}
		}
	}
	return flattenOnce(result)
}

// ResolveFirst tries each path in order and returns the first non-null result.
func ResolveFirst(root Node, paths ...[]string) Node {
	for _, path := range paths {
		if found := Resolve(root, path...); !found.IsNull() {
			return found
		}
	}
	return Node{}
}

func traverse(n Node, key string) Node {
	switch n.kind {
	case Map:
		if hit, ok := n.fields[key]; ok && !hit.IsNull() {
			if hit.isFalse() {
				return hit
			}
			if !hit.isEmptyContainer() {
				if !hasChildren(n) {
					return hit
				}
				return NewSeq(append([]Node{hit}, deepSearch(n, key)...)...)
			}
		}
		hits := deepSearch(n, key)
		if len(hits) == 0 {
			return Node{}
		}
		return NewSeq(hits...)
	case Seq:
		out := make([]Node, len(n.items))
		found := false
		for i, item := range n.items {
			out[i] = traverse(item, key)
			found = found || !out[i].IsNull()
		}
		if !found {
			return Node{}
		}
		return NewSeq(out...)
	}
	return Node{}
}

func hasChildren(n Node) bool {
	marker, ok := n.fields[ChildrenKey]
	return ok && !marker.IsNull() && !marker.isEmptyContainer() && !marker.isFalse()
}

// deepSearch looks for key below every child of a map, in key order.
func deepSearch(n Node, key string) []Node {
	var hits []Node
	for _, k := range n.keys {
		sub := traverse(n.fields[k], key)
		switch sub.kind {
		case Null:
		case Seq:
			hits = appendHits(hits, sub)
		default:
			hits = append(hits, sub)
		}
	}
	return hits
}

// appendHits merges a sequence of hits; when the sequence itself holds sequences
// (matches from several nested levels) those are spliced in as well.
func appendHits(hits []Node, seq Node) []Node {
	nested := len(seq.items) > 0 && seq.items[0].kind == Seq
	for _, item := range seq.items {
		if nested && item.kind == Seq {
			for _, inner := range item.items {
				if !inner.IsNull() {
					hits = append(hits, inner)
				}
			}
			continue
		}
		if !item.IsNull() {
			hits = append(hits, item)
		}
	}
	return hits
}

func flattenOnce(n Node) Node {
	if n.kind != Seq || len(n.items) == 0 || n.items[0].kind != Seq {
		return n
	}
	var out []Node
	for _, item := range n.items {
		if item.kind == Seq {
			out = append(out, item.items...)
			continue
		}
		out = append(out, item)
	}
	return NewSeq(out...)
}
