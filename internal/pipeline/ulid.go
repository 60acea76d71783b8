package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Section keys are ULIDs: 26-character Crockford Base32 strings with a
// millisecond timestamp prefix, so a prefix scan returns sections in the
// order they were published.

var (
	idMu   sync.Mutex
	lastMs uint64
	seq    uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// newSectionID returns a ULID. IDs generated in the same millisecond carry
// an increasing counter ahead of their random bytes.
func newSectionID() string {
	idMu.Lock()
	defer idMu.Unlock()

	ms := uint64(time.Now().UnixMilli())
	if ms == lastMs {
		seq++
	} else {
		lastMs, seq = ms, 0
	}

	var b [16]byte
	var msBytes [8]byte
	binary.BigEndian.PutUint64(msBytes[:], ms)
	copy(b[:6], msBytes[2:])
	binary.BigEndian.PutUint16(b[6:8], seq)
	rand.Read(b[8:])

	return encode(b)
}

// encode writes the 128 bits left-padded to 130, five bits per character.
func encode(b [16]byte) string {
	var out [26]byte
	for i := range out {
		var v byte
		for k := range 5 {
			pos := i*5 + k - 2
			v <<= 1
			if pos >= 0 {
				v |= (b[pos/8] >> (7 - pos%8)) & 1
			}
		}
		out[i] = crockford[v]
	}
	return string(out[:])
}
