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


package ledger

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/declass/core"
)

// MirrorEntry values are stored in MUS format: fields in declaration
// order, timestamps as Unix microseconds.

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalMirrorEntry serializes a MirrorEntry to bytes.
func MarshalMirrorEntry(entry *core.MirrorEntry) []byte {
	size := varint.Uint64.Size(uint64(entry.RecordId)) +
		ord.String.Size(entry.Identifier) +
		ord.String.Size(entry.URL) +
		ord.String.Size(entry.ObjectKey) +
		varint.Int.Size(int(entry.Status)) +
		varint.Int64.Size(entry.Size) +
		varint.Int.Size(entry.Attempts) +
		ord.String.Size(entry.LastError) +
		varint.Int64.Size(entry.UpdatedAt.UnixMicro())

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(entry.RecordId), buf)
	n += ord.String.Marshal(entry.Identifier, buf[n:])
	n += ord.String.Marshal(entry.URL, buf[n:])
	n += ord.String.Marshal(entry.ObjectKey, buf[n:])
	n += varint.Int.Marshal(int(entry.Status), buf[n:])
	n += varint.Int64.Marshal(entry.Size, buf[n:])
	n += varint.Int.Marshal(entry.Attempts, buf[n:])
	n += ord.String.Marshal(entry.LastError, buf[n:])
	varint.Int64.Marshal(entry.UpdatedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalMirrorEntry deserializes a MirrorEntry from bytes.
func UnmarshalMirrorEntry(data []byte) (*core.MirrorEntry, error) {
	var (
		entry core.MirrorEntry
		off   int
	)

	recordID, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: record id: %w", ErrSerializationFailed, err)
	}
	entry.RecordId = core.ID(recordID)
	off += n

	strFields := []struct {
		name string
		dst  *string
	}{
		{"identifier", &entry.Identifier},
		{"url", &entry.URL},
		{"object key", &entry.ObjectKey},
	}
	for _, f := range strFields {
		v, n, err := ord.String.Unmarshal(data[off:])
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSerializationFailed, f.name, err)
		}
		*f.dst = v
		off += n
	}

	status, n, err := varint.Int.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: status: %w", ErrSerializationFailed, err)
	}
	entry.Status = core.MirrorStatus(status)
	off += n

	entry.Size, n, err = varint.Int64.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: size: %w", ErrSerializationFailed, err)
	}
	off += n

	entry.Attempts, n, err = varint.Int.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: attempts: %w", ErrSerializationFailed, err)
	}
	off += n

	entry.LastError, n, err = ord.String.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: last error: %w", ErrSerializationFailed, err)
	}
	off += n

	micros, _, err := varint.Int64.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: updated at: %w", ErrSerializationFailed, err)
	}
	entry.UpdatedAt = time.UnixMicro(micros).UTC()

	return &entry, nil
}
