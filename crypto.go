package main

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

const (
	// ChunkSize is the number of bytes sharing one chunk counter
	ChunkSize = 7
	// KeySize is the length of the repeating key
	KeySize = 4
)

// keyPlacement maps the n-th qualifying byte to its key slot.
// The order is fixed by the lock format and is not derivable from anything else.
var keyPlacement = [KeySize]int{0, 2, 3, 1}

// Key is the 4-byte XOR key recovered from a lock file
type Key [KeySize]byte

// parseKey accepts 8 hex digits, optionally written as 0x-prefixed bytes
// separated by commas or spaces ("31214211", "0x31, 0x21, 0x42, 0x11")
func parseKey(s string) (Key, error) {
	clean := strings.NewReplacer("0x", "", "0X", "", ",", "", " ", "").Replace(s)
	raw, err := hex.DecodeString(clean)
	if err != nil {
		return Key{}, errors.Wrapf(ErrBadKey, "%q: %v", s, err)
	}
	if len(raw) != KeySize {
		return Key{}, errors.Wrapf(ErrBadKey, "%q: need %d bytes, got %d", s, KeySize, len(raw))
	}

	var k Key
	copy(k[:], raw)
	return k, nil
}

// keyRecovery accumulates key bytes while scanning a lock file
type keyRecovery struct {
	slots [KeySize]byte
	found int
}

func newKeyRecovery() *keyRecovery {
	r := &keyRecovery{}
	for i := range r.slots {
		r.slots[i] = 0xff
	}
	return r
}

// add places the byte read at absolute index i. It reports whether the key is complete.
func (r *keyRecovery) add(i int, b byte) bool {
	if r.found == KeySize {
		return true
	}
	r.slots[keyPlacement[r.found]] = b ^ byte(i/ChunkSize+1)
	r.found++
	return r.found == KeySize
}

// key returns the slots in reverse order, the order used for decoding
func (r *keyRecovery) key() Key {
	var k Key
	for i := range r.slots {
		k[i] = r.slots[KeySize-1-i]
	}
	return k
}

// recoverKey reads the key from the high bytes of the UTF-16LE text that
// follows the BOM. Plain ASCII text has zero high bytes, so each odd byte is
// a key byte masked only by its chunk counter.
//
// The second return value is the number of key bytes found. When it is below
// KeySize the missing slots keep their 0xff default.
func recoverKey(data []byte) (Key, int) {
	r := newKeyRecovery()
	for i := KeySize - 1; i < len(data); i++ {
		if i%2 == 0 {
			continue
		}
		if r.add(i, data[i]) {
			break
		}
	}
	return r.key(), r.found
}

// chunkMask returns the XOR mask of the byte at offset o of chunk index
func chunkMask(key Key, index, o int) byte {
	return key[o%KeySize] ^ byte(index+1)
}

// decodeChunks decodes data chunk by chunk. obs may be nil.
func decodeChunks(data []byte, key Key, obs Observer) []byte {
	decoded := make([]byte, 0, len(data))
	for index := 0; index*ChunkSize < len(data); index++ {
		start := index * ChunkSize
		end := min(start+ChunkSize, len(data))

		for o, b := range data[start:end] {
			decoded = append(decoded, b^chunkMask(key, index, o))
		}

		if obs != nil {
			obs.ChunkDecoded(index, decoded[start:end])
		}
	}
	return decoded
}

// encodeChunks is the inverse of decodeChunks
func encodeChunks(plain []byte, key Key) []byte {
	// XOR with the same mask undoes itself
	return decodeChunks(plain, key, nil)
}
