package main

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const randSeed = 0x5a025ca11825a5e7

// chunkRecorder collects decoded chunks
type chunkRecorder struct {
	key    Key
	chunks [][]byte
	text   string
}

func (r *chunkRecorder) KeyRecovered(key Key) { r.key = key }

func (r *chunkRecorder) ChunkDecoded(index int, decoded []byte) {
	r.chunks = append(r.chunks, append([]byte(nil), decoded...))
}

func (r *chunkRecorder) TextDecoded(text string) { r.text = text }

func TestRecoverKeyPlacement(t *testing.T) {
	data := []byte{
		0xaa, 0xbb, 0xcc, // BOM region, ignored
		0x10, 0x01, // 3: a, chunk index 1
		0x20, 0x02, // 5: b, chunk index 1
		0x30, 0x03, // 7: c, chunk index 2
		0x40, 0x04, // 9: d, chunk index 2
		0x50, 0x05, // past the fourth qualifying byte, ignored
	}

	key, found := recoverKey(data)
	require.Equal(t, KeySize, found)

	// slots [a^1, d^2, b^1, c^2], reversed
	assert.Equal(t, Key{0x30 ^ 2, 0x20 ^ 1, 0x40 ^ 2, 0x10 ^ 1}, key)
}

func TestKeyRecoveryPlacementOrder(t *testing.T) {
	// Qualifying bytes 0x10, 0x20, 0x30, 0x40 with chunk indices 1, 1, 1, 2
	r := newKeyRecovery()
	assert.False(t, r.add(3, 0x10))
	assert.False(t, r.add(4, 0x20))
	assert.False(t, r.add(5, 0x30))
	assert.True(t, r.add(7, 0x40))

	assert.Equal(t, [KeySize]byte{0x11, 0x42, 0x21, 0x31}, r.slots)

	key := r.key()
	assert.Equal(t, Key{0x31, 0x21, 0x42, 0x11}, key)

	// The key stays fixed once complete
	assert.True(t, r.add(9, 0x99))
	assert.Equal(t, key, r.key())

	plain := []byte{0xff, 0xfe, 'L', 0x00, 'o', 0x00, 'c'}
	assert.Equal(t, plain, decodeChunks(encodeChunks(plain, key), key, nil))
}

func TestRecoverKeyUnderrun(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		found int
	}{
		{"empty", 0, 0},
		{"bom only", 3, 0},
		{"one qualifying byte", 4, 1},
		{"three qualifying bytes", 3 + 2*KeySize - 2, 3},
		{"exactly enough", 3 + 2*KeySize - 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]byte, tt.size)
			key, found := recoverKey(data)
			assert.Equal(t, tt.found, found)

			// Unfilled slots, in placement order, keep their default
			for n := tt.found; n < KeySize; n++ {
				assert.Equal(t, byte(0xff), key[KeySize-1-keyPlacement[n]], "placement %d", n)
			}
		})
	}
}

func TestRecoverKeyDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(randSeed))
	data := make([]byte, 64)
	rng.Read(data)

	first, _ := recoverKey(data)
	for i := 0; i < 10; i++ {
		key, found := recoverKey(data)
		assert.Equal(t, KeySize, found)
		assert.Equal(t, first, key)
	}
}

func TestDecodeChunksLastChunk(t *testing.T) {
	key := Key{0x31, 0x21, 0x42, 0x11}
	data := make([]byte, 2*ChunkSize+3)
	for i := range data {
		data[i] = byte(i * 13)
	}

	rec := &chunkRecorder{}
	decoded := decodeChunks(data, key, rec)
	require.Len(t, decoded, len(data))

	require.Len(t, rec.chunks, 3)
	assert.Len(t, rec.chunks[0], ChunkSize)
	assert.Len(t, rec.chunks[1], ChunkSize)
	assert.Len(t, rec.chunks[2], len(data)%ChunkSize)

	// Offsets restart in each chunk; only the counter carries the chunk index
	for i, b := range data {
		index, o := i/ChunkSize, i%ChunkSize
		want := b ^ key[o%KeySize] ^ byte(index+1)
		assert.Equal(t, want, decoded[i], "byte %d", i)
	}
	assert.Equal(t, data[14]^key[0]^3, rec.chunks[2][0])
	assert.Equal(t, data[16]^key[2]^3, rec.chunks[2][2])
}

func TestDecodeChunksEmpty(t *testing.T) {
	rec := &chunkRecorder{}
	assert.Empty(t, decodeChunks(nil, Key{}, rec))
	assert.Empty(t, rec.chunks)
}

func TestEncodeChunksInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(randSeed))

	for iter := 0; iter < 20; iter++ {
		var key Key
		rng.Read(key[:])
		plain := make([]byte, rng.Intn(200))
		rng.Read(plain)

		locked := encodeChunks(plain, key)
		assert.Equal(t, plain, decodeChunks(locked, key, nil))
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want Key
		err  bool
	}{
		{in: "31214211", want: Key{0x31, 0x21, 0x42, 0x11}},
		{in: "0x31,0x21,0x42,0x11", want: Key{0x31, 0x21, 0x42, 0x11}},
		{in: "0x31, 0x21, 0x42, 0x11, ", want: Key{0x31, 0x21, 0x42, 0x11}},
		{in: "DEADBEEF", want: Key{0xde, 0xad, 0xbe, 0xef}},
		{in: "312142", err: true},
		{in: "3121421100", err: true},
		{in: "zz214211", err: true},
		{in: "", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			key, err := parseKey(tt.in)
			if tt.err {
				assert.True(t, errors.Is(err, ErrBadKey), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, key)
		})
	}
}
