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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidSeeker indicates a Seeker failed validation.
	ErrInvalidSeeker = errors.New("invalid seeker")

	// ErrInvalidOffer indicates an Offer failed validation.
	ErrInvalidOffer = errors.New("invalid offer")

	// ErrEmptyID indicates the ID field is empty.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrNegativeHours indicates a negative weekly hours value.
	ErrNegativeHours = errors.New("weekly hours cannot be negative")

	// ErrNegativeCapacity indicates a negative offer capacity.
	ErrNegativeCapacity = errors.New("capacity cannot be negative")

	// ErrInvalidAptitude indicates a negative aptitude score.
	ErrInvalidAptitude = errors.New("aptitude cannot be negative")

	// ErrInvalidReliability indicates a reliability score outside [0, 1].
	ErrInvalidReliability = errors.New("reliability must be between 0 and 1")
)
