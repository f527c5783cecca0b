package concept

import "hash/fnv"

// NameToID derives a concept's table id from its lowercase name
// ("id (u64, PK = hash(name))"). Collisions are rare and handled by the
// index builder, which keeps the first-inserted record and logs a warning.
func NameToID(lowercaseName string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(lowercaseName))
	return h.Sum64()
}
