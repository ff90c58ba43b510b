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


package assignment

import "errors"

var (
	// ErrRankerRequired is returned when an engine is created without a Ranker.
	ErrRankerRequired = errors.New("ranker is required")

	// ErrOfferRepositoryRequired is returned when an engine is created without an offer repository.
	ErrOfferRepositoryRequired = errors.New("offer repository is required")

	// ErrDuplicateSeeker marks a repeated seeker ID in one run. Only the
	// first occurrence is ranked and can receive an offer.
	ErrDuplicateSeeker = errors.New("seeker already listed earlier in this run")
)
