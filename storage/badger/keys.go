package badger

import (
	"github.com/Soo0803/ternswipe-matcher/core"
)

// Key prefixes
const (
	seekerPrefix    = "seekr"
	offerPrefix     = "offer"
	embeddingPrefix = "embed"
)

// makeSeekerKey generates a key for a seeker by ID.
// Format: seekr:id
func makeSeekerKey(id core.ID) []byte {
	return []byte(seekerPrefix + ":" + string(id))
}

// makeOfferKey generates a key for an offer by ID.
// Format: offer:id
func makeOfferKey(id core.ID) []byte {
	return []byte(offerPrefix + ":" + string(id))
}

// makeEmbeddingKey generates a composite key for an embedding.
// Format: embed:kind:owner
func makeEmbeddingKey(kind core.EntityKind, owner core.ID) []byte {
	return []byte(embeddingPrefix + ":" + kind.String() + ":" + string(owner))
}

// makeEmbeddingKindPrefix generates the scan prefix for one side's embeddings.
func makeEmbeddingKindPrefix(kind core.EntityKind) []byte {
	return []byte(embeddingPrefix + ":" + kind.String() + ":")
}
