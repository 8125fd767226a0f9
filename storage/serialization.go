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

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/docrag/core"
)

// float32Size is the encoded size of one vector component.
const float32Size = 4

// EntrySize returns the encoded size of an IndexEntry.
func EntrySize(entry *core.IndexEntry) int {
	size := varint.Uint64.Size(uint64(entry.Chunk.Id))
	size += ord.String.Size(entry.Chunk.Origin)
	size += varint.PositiveInt.Size(entry.Chunk.Index)
	size += ord.String.Size(entry.Chunk.Text)
	size += varint.PositiveInt.Size(len(entry.Vector))
	size += len(entry.Vector) * float32Size
	return size
}

// MarshalEntry serializes an IndexEntry to bytes.
func MarshalEntry(entry *core.IndexEntry) []byte {
	buf := make([]byte, EntrySize(entry))
	n := varint.Uint64.Marshal(uint64(entry.Chunk.Id), buf)
	n += ord.String.Marshal(entry.Chunk.Origin, buf[n:])
	n += varint.PositiveInt.Marshal(entry.Chunk.Index, buf[n:])
	n += ord.String.Marshal(entry.Chunk.Text, buf[n:])
	n += varint.PositiveInt.Marshal(len(entry.Vector), buf[n:])
	for _, v := range entry.Vector {
		n += raw.Float32.Marshal(v, buf[n:])
	}
	return buf
}

// UnmarshalEntry deserializes an IndexEntry from bytes.
func UnmarshalEntry(data []byte) (*core.IndexEntry, error) {
	var (
		entry core.IndexEntry
		n     int
	)

	id, m, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	entry.Chunk.Id = core.ID(id)
	n += m

	entry.Chunk.Origin, m, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: origin: %w", ErrSerializationFailed, err)
	}
	n += m

	entry.Chunk.Index, m, err = varint.PositiveInt.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: index: %w", ErrSerializationFailed, err)
	}
	n += m

	entry.Chunk.Text, m, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: text: %w", ErrSerializationFailed, err)
	}
	n += m

	length, m, err := varint.PositiveInt.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: vector length: %w", ErrSerializationFailed, err)
	}
	n += m

	if length < 0 || length*float32Size > len(data)-n {
		return nil, fmt.Errorf("%w: vector of %d components in %d bytes", ErrTruncatedData, length, len(data)-n)
	}

	entry.Vector = make([]float32, length)
	for i := range entry.Vector {
		entry.Vector[i], m, err = raw.Float32.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: vector: %w", ErrSerializationFailed, err)
		}
		n += m
	}

	return &entry, nil
}
