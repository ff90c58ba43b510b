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


package scoring

import "errors"

var (
	// ErrUnknownProfile is returned when a scoring profile name is not registered.
	ErrUnknownProfile = errors.New("unknown scoring profile")

	// ErrInvalidProfile is returned when a profile has negative weights or no gate.
	ErrInvalidProfile = errors.New("invalid scoring profile")

	// ErrUnknownPredictor is returned when a predictor name is not recognized.
	ErrUnknownPredictor = errors.New("unknown acceptance predictor")

	// ErrUnknownFeature is returned when a model references a feature the scorer doesn't produce.
	ErrUnknownFeature = errors.New("unknown model feature")

	// ErrModelFileRequired is returned when the logistic predictor has no model file.
	ErrModelFileRequired = errors.New("model file required")
)
