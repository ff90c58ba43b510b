// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"

	"github.com/Soo0803/ternswipe-matcher/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	return []byte(id)
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	if len(data) == 0 {
		return "", ErrTruncatedData
	}
	return core.ID(data), nil
}

// MarshalSeeker serializes a Seeker to bytes.
func MarshalSeeker(seeker *core.Seeker) []byte {
	buf := make([]byte, SeekerMUS.Size(*seeker))
	SeekerMUS.Marshal(*seeker, buf)
	return buf
}

// UnmarshalSeeker deserializes a Seeker from bytes.
func UnmarshalSeeker(data []byte) (*core.Seeker, error) {
	seeker, _, err := SeekerMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: seeker: %w", ErrSerializationFailed, err)
	}
	return &seeker, nil
}

// MarshalOffer serializes an Offer to bytes.
func MarshalOffer(offer *core.Offer) []byte {
	buf := make([]byte, OfferMUS.Size(*offer))
	OfferMUS.Marshal(*offer, buf)
	return buf
}

// UnmarshalOffer deserializes an Offer from bytes.
func UnmarshalOffer(data []byte) (*core.Offer, error) {
	offer, _, err := OfferMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: offer: %w", ErrSerializationFailed, err)
	}
	return &offer, nil
}

// MarshalEmbedding serializes an Embedding to bytes.
func MarshalEmbedding(embedding *core.Embedding) []byte {
	buf := make([]byte, EmbeddingMUS.Size(*embedding))
	EmbeddingMUS.Marshal(*embedding, buf)
	return buf
}

// UnmarshalEmbedding deserializes an Embedding from bytes.
func UnmarshalEmbedding(data []byte) (*core.Embedding, error) {
	embedding, _, err := EmbeddingMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding: %w", ErrSerializationFailed, err)
	}
	return &embedding, nil
}
