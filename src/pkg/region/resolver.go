package region

import (
	"strings"
)

/*
Resolver finds the internal region key of a locality.

Lookup maps a locality name (lgu) to any region spelling ToInternalKey accepts.
It is supplied by the caller, usually loaded from the locality lookup file.
*/
type Resolver struct {
	Lookup map[string]string
}

// NewResolver indexes the lookup table by normalized locality name.
func NewResolver(lookup map[string]string) Resolver {
	normalized := make(map[string]string, len(lookup))
	for lgu, code := range lookup {
		normalized[normalizeLocality(lgu)] = code
	}
	return Resolver{Lookup: normalized}
}

func normalizeLocality(lgu string) string {
	return strings.ToLower(strings.TrimSpace(lgu))
}

/*
Resolve returns the internal key using, in order: the explicit region field,
the regionCode field, then the locality lookup table. ok=false marks the
locality as unregistered.
*/
func (resolver Resolver) Resolve(regionField string, regionCode string, lgu string) (key string, ok bool) {
	key, ok = ToInternalKey(regionField)
	if ok {
		return key, true
	}

	key, ok = ToInternalKey(regionCode)
	if ok {
		return key, true
	}

	if resolver.Lookup == nil {
		return "", false
	}
	code, exists := resolver.Lookup[normalizeLocality(lgu)]
	if !exists {
		return "", false
	}
	return ToInternalKey(code)
}
