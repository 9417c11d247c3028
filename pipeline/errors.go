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


package pipeline

import "errors"

var (
	// ErrDownloaderRequired indicates that no downloader was provided.
	ErrDownloaderRequired = errors.New("downloader is required")

	// ErrStoreRequired indicates that no object store was provided.
	ErrStoreRequired = errors.New("object store is required")

	// ErrLedgerRequired indicates that no ledger was provided.
	ErrLedgerRequired = errors.New("ledger is required")
)
