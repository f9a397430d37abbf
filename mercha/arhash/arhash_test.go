package arhash_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/go-mercha/mercha/mercha/arhash"
)

func TestMergeHashIsPure(t *testing.T) {
	var a, b [64]byte
	rand.Read(a[:])
	rand.Read(b[:])

	first := arhash.MergeHash(a, b)
	second := arhash.MergeHash(a, b)

	if first != second {
		t.Errorf("MergeHash is not deterministic: %x != %x", first, second)
	}
}

func TestMergeHashZeroBlocksYieldZero(t *testing.T) {
	var a, b [64]byte // both all-zero

	got := arhash.MergeHash(a, b)

	var want [64]byte
	if got != want {
		t.Errorf("MergeHash(0,0) = %x, want all-zero", got)
	}
}

func TestMergeHashNonCommutative(t *testing.T) {
	var a, b [64]byte
	for i := range a {
		a[i] = byte(i)
		b[i] = byte(255 - i)
	}

	ab := arhash.MergeHash(a, b)
	ba := arhash.MergeHash(b, a)

	if ab == ba {
		t.Error("MergeHash(a,b) == MergeHash(b,a) for distinct a, b; expected non-commutativity")
	}
}

func TestMergeHashDoesNotAliasInputs(t *testing.T) {
	var a, b [64]byte
	rand.Read(a[:])
	rand.Read(b[:])
	aCopy, bCopy := a, b

	_ = arhash.MergeHash(a, b)

	if !bytes.Equal(a[:], aCopy[:]) || !bytes.Equal(b[:], bCopy[:]) {
		t.Error("MergeHash mutated one of its inputs")
	}
}

func TestMergeHashSensitiveToEachInput(t *testing.T) {
	var a, b [64]byte
	rand.Read(a[:])
	rand.Read(b[:])

	base := arhash.MergeHash(a, b)

	aFlipped := a
	aFlipped[0] ^= 0x01
	if arhash.MergeHash(aFlipped, b) == base {
		t.Error("flipping a single bit of block1 did not change the output")
	}

	bFlipped := b
	bFlipped[63] ^= 0x80
	if arhash.MergeHash(a, bFlipped) == base {
		t.Error("flipping a single bit of block2 did not change the output")
	}
}
