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

import (
	"fmt"
	"net/url"
)

// ValidateRecord validates a Record according to domain rules.
//
// Validation rules:
//   - Identifier must not be empty
//   - URL must parse and use the http or https scheme
//
// NOT validated (optional catalog metadata):
//   - Title and ReleaseDate (the upstream catalog frequently omits them)
//   - ListedAt (populated by the lister)
func ValidateRecord(record *Record) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.Identifier == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyIdentifier)
	}

	if !IsValidURL(record.URL) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidRecord, ErrInvalidURL, record.URL)
	}

	return nil
}

// ValidateStatus validates that a MirrorStatus has a valid value.
func ValidateStatus(status MirrorStatus) error {
	switch status {
	case MirrorStatusPending, MirrorStatusUploaded, MirrorStatusSkipped, MirrorStatusFailed:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidStatus, status)
	}
}

// IsValidURL reports whether raw is an absolute http(s) URL with a host.
func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
