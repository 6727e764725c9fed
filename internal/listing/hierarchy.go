package listing

import "github.com/utafrali/storefront/internal/domain"

// Index maps term IDs to terms of a single taxonomy.
type Index map[string]domain.Term

// NewIndex indexes terms by ID. Later duplicates win.
func NewIndex(terms []domain.Term) Index {
	idx := make(Index, len(terms))
	for _, t := range terms {
		idx[t.ID] = t
	}
	return idx
}

// RootAncestorName walks the parent chain of term up to the term that has no
// parent and returns its name. A term without a parent has no ancestor and
// yields "".
//
// complete is false when the chain is broken: a parent reference that cannot
// be resolved, or a cycle. The name of the last resolved proper ancestor is
// returned in that case, or "" if none was resolved. The walk never takes
// more steps than there are terms in the index.
func RootAncestorName(term domain.Term, idx Index) (name string, complete bool) {
	if !term.HasParent() {
		return "", true
	}

	resolved := ""
	cur := term
	for steps := 0; steps <= len(idx); steps++ {
		if !cur.HasParent() {
			return cur.Name, true
		}
		parent, ok := idx[*cur.ParentID]
		if !ok || parent.ID == term.ID {
			return resolved, false
		}
		cur = parent
		resolved = cur.Name
	}
	return resolved, false
}
