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


// Package indexing computes and stores the embeddings the matcher
// retrieves against.
//
// Each seeker and offer is rendered to a short text blob, embedded in
// batches with retry and exponential backoff, normalized to unit length
// and written to the embedding repository together with a content hash of
// the blob. Records whose blob hash and model are unchanged are skipped, so
// re-running the indexer after a partial profile update only pays for the
// records that changed.
package indexing
