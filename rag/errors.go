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


package rag

import "errors"

var (
	// ErrIndexRequired indicates that no search index was provided.
	ErrIndexRequired = errors.New("search index is required")

	// ErrCompleterRequired indicates that no completer was provided.
	ErrCompleterRequired = errors.New("completer is required")

	// ErrEmptyQuestion indicates that the question was empty.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrNoResults indicates that the index returned no elements for the
	// question.
	ErrNoResults = errors.New("no matching elements in the index")

	// ErrIndexUnavailable indicates that the index endpoint could not be
	// queried.
	ErrIndexUnavailable = errors.New("index unavailable")
)
