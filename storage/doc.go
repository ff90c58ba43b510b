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


// Package storage provides the storage abstraction layer for the matcher.
//
// The matching engine only reads seeker and offer snapshots and their
// precomputed embeddings. This package defines the repository interfaces
// it reads through, so the profile store can be backed by BadgerDB
// locally and by anything else in production.
//
// # Architecture
//
//   - SeekerRepository: seeker snapshots
//   - OfferRepository: offer snapshots, including the open-offer view
//   - EmbeddingRepository: dense vectors and cosine nearest-neighbor search
//
// Records are encoded with mus-go (see serialization.go).
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	repos, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repos.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
