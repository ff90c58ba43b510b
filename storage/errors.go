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

import "errors"

var (
	// ErrNotFound is returned when a seeker, offer or embedding is absent.
	ErrNotFound = errors.New("record not found")

	// ErrTransactionFailed wraps a failed Badger read or write.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrStorageClosed is returned by repositories after Close.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidQuery rejects malformed lookups, such as an unknown entity kind.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrSerializationFailed wraps a record that could not be decoded.
	ErrSerializationFailed = errors.New("record encoding failed")

	// ErrTruncatedData is returned when a record ends mid-field.
	ErrTruncatedData = errors.New("truncated record")
)
