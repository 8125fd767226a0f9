package badger

import (
	"encoding/binary"
	"errors"
)

// Key prefixes for different data types
const (
	indexEntryPrefix = "idxent:"
	indexMetaKey     = "idxmeta"
)

// indexMeta describes the visible generation of an index.
// Generation 0 means nothing has been built yet.
type indexMeta struct {
	generation uint64
	count      uint64
	dimensions uint64
}

const indexMetaSize = 24

var errCorruptMeta = errors.New("corrupt index metadata")

func (m indexMeta) marshal() []byte {
	buf := make([]byte, indexMetaSize)
	binary.BigEndian.PutUint64(buf[0:], m.generation)
	binary.BigEndian.PutUint64(buf[8:], m.count)
	binary.BigEndian.PutUint64(buf[16:], m.dimensions)
	return buf
}

func unmarshalIndexMeta(data []byte) (indexMeta, error) {
	if len(data) != indexMetaSize {
		return indexMeta{}, errCorruptMeta
	}
	return indexMeta{
		generation: binary.BigEndian.Uint64(data[0:]),
		count:      binary.BigEndian.Uint64(data[8:]),
		dimensions: binary.BigEndian.Uint64(data[16:]),
	}, nil
}

// makeGenerationPrefix generates the key prefix shared by all entries of a generation.
// Format: prefix:generation
func makeGenerationPrefix(generation uint64) []byte {
	prefixBytes := []byte(indexEntryPrefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], generation)
	return buf
}

// makeEntryKey generates a composite key for an index entry.
// Format: prefix:generation:position
func makeEntryKey(generation uint64, position int) []byte {
	prefixBytes := []byte(indexEntryPrefix)
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort matches insertion order
	binary.BigEndian.PutUint64(buf[offset:], generation)
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(position))
	return buf
}
