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

import "fmt"

// ValidateSeeker validates a Seeker according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - WeeklyHours must not be negative
//   - Aptitude, when present, must not be negative
//   - Reliability, when present, must be within [0, 1]
//
// NOT validated (missing values map to neutral defaults during scoring):
//   - Availability (either endpoint may be unknown)
//   - Skills (may be empty)
func ValidateSeeker(seeker *Seeker) error {
	if seeker == nil {
		return fmt.Errorf("%w: seeker is nil", ErrInvalidSeeker)
	}

	if seeker.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSeeker, ErrEmptyID)
	}

	if seeker.WeeklyHours < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSeeker, ErrNegativeHours)
	}

	if seeker.Aptitude != nil && *seeker.Aptitude < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSeeker, ErrInvalidAptitude)
	}

	if seeker.Reliability != nil && (*seeker.Reliability < 0 || *seeker.Reliability > 1) {
		return fmt.Errorf("%w: %w", ErrInvalidSeeker, ErrInvalidReliability)
	}

	return nil
}

// ValidateOffer validates an Offer according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - WeeklyHours must not be negative
//   - Capacity must not be negative
func ValidateOffer(offer *Offer) error {
	if offer == nil {
		return fmt.Errorf("%w: offer is nil", ErrInvalidOffer)
	}

	if offer.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidOffer, ErrEmptyID)
	}

	if offer.WeeklyHours < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOffer, ErrNegativeHours)
	}

	if offer.Capacity < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOffer, ErrNegativeCapacity)
	}

	return nil
}
