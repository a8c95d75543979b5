package intent

import "strings"

// Resolution is the outcome of matching a spoken client name against the
// tenant's client list. Exactly one of Match, Candidates or IsNew applies.
type Resolution struct {
	Match      *ClientRef
	Candidates []ClientRef
	IsNew      bool
}

// ResolveClient matches a name against known clients. Exact case-insensitive
// match wins; substring matches become disambiguation candidates; a name with
// no partial match at all means "create a new client at dispatch time".
// Resolution never creates anything — parsing has no side effects.
func ResolveClient(name string, clients []ClientRef) Resolution {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Resolution{IsNew: true}
	}

	var candidates []ClientRef
	for i := range clients {
		known := strings.ToLower(clients[i].Name)
		if known == needle {
			c := clients[i]
			return Resolution{Match: &c}
		}
		if strings.Contains(known, needle) || strings.Contains(needle, known) {
			candidates = append(candidates, clients[i])
		}
	}

	if len(candidates) == 1 {
		c := candidates[0]
		return Resolution{Match: &c}
	}
	if len(candidates) > 1 {
		return Resolution{Candidates: candidates}
	}
	return Resolution{IsNew: true}
}

// ResolveDocument maps a document reference ("INV-0003", "last") to a recent
// document. Returns nil when nothing matches.
func ResolveDocument(ref string, docs []DocumentRef) *DocumentRef {
	ref = strings.TrimSpace(ref)
	if ref == "" || len(docs) == 0 {
		return nil
	}

	if strings.EqualFold(ref, "last") || strings.EqualFold(ref, "última") || strings.EqualFold(ref, "ultima") {
		d := docs[0]
		return &d
	}

	for i := range docs {
		if strings.EqualFold(docs[i].Number, ref) {
			d := docs[i]
			return &d
		}
	}
	return nil
}
