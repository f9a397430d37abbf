// Package simd provides the pipeline's only hardware-dependent decision: a
// once-initialized CPU-feature descriptor and the wide-stride XOR that
// consults it. Every path it can take produces byte-identical output; the
// feature probe only ever changes latency, never the result.
package simd

import (
	"encoding/binary"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// wideStride is the number of bytes folded together per iteration of the
// accelerated path (4 uint64 lanes, the width an AVX2 YMM register holds).
const wideStride = 32

// forceMode overrides the AVX2 probe when non-zero. It exists so that tests
// (and internal/config's force_simd knob) can exercise both paths
// deterministically on any machine.
type forceMode int32

const (
	forceAuto forceMode = iota
	forceOn
	forceOff
)

var (
	once        sync.Once
	hasAVX2Auto bool
	override    forceMode
	overrideMu  sync.RWMutex
)

func detect() {
	hasAVX2Auto = cpuid.CPU.Supports(cpuid.AVX2)
}

// HasWidePath reports whether XorInto will use the accelerated 32-byte-stride
// path for this process, honoring any SetForceMode override.
func HasWidePath() bool {
	overrideMu.RLock()
	mode := override
	overrideMu.RUnlock()

	switch mode {
	case forceOn:
		return true
	case forceOff:
		return false
	default:
		once.Do(detect)
		return hasAVX2Auto
	}
}

// SetForceMode forces the wide path on or off regardless of the CPU probe.
// Passing "" or "auto" restores the probed behavior. It is meant for tests
// and for internal/config's force_simd knob, not for use on the hot path.
func SetForceMode(mode string) {
	overrideMu.Lock()
	defer overrideMu.Unlock()

	switch mode {
	case "on":
		override = forceOn
	case "off":
		override = forceOff
	default:
		override = forceAuto
	}
}

// XorInto performs dst[i] ^= src[i] for every i in range, where n =
// len(dst) = len(src). It uses the wide-stride path when available,
// folding wideStride bytes at a time and finishing the remainder byte by
// byte. When the wide path is unavailable the whole buffer goes through the
// scalar path (8 bytes at a time, then a byte-at-a-time tail). Both paths
// are required to produce identical
// bytes; see xor_test.go's differential test.
func XorInto(dst, src []byte) {
	n := len(dst)
	if len(src) < n {
		panic("simd: XorInto src shorter than dst")
	}

	if HasWidePath() {
		xorWide(dst, src)
		return
	}
	xorScalar(dst, src)
}

// xorWide folds wideStride bytes per iteration using uint64 lane arithmetic
// equivalent to an AVX2 256-bit XOR, then hands the remainder to the scalar
// path.
func xorWide(dst, src []byte) {
	n := len(dst)
	full := n - n%wideStride

	for i := 0; i < full; i += wideStride {
		for lane := 0; lane < wideStride; lane += 8 {
			d := binary.LittleEndian.Uint64(dst[i+lane : i+lane+8])
			s := binary.LittleEndian.Uint64(src[i+lane : i+lane+8])
			binary.LittleEndian.PutUint64(dst[i+lane:i+lane+8], d^s)
		}
	}
	xorScalarTail(dst, src, full)
}

// xorScalar is the portable, unaccelerated path: 8 bytes at a time where
// possible, then a byte-at-a-time tail.
func xorScalar(dst, src []byte) {
	n := len(dst)
	full := n - n%8

	for i := 0; i < full; i += 8 {
		d := binary.LittleEndian.Uint64(dst[i : i+8])
		s := binary.LittleEndian.Uint64(src[i : i+8])
		binary.LittleEndian.PutUint64(dst[i:i+8], d^s)
	}
	xorScalarTail(dst, src, full)
}

func xorScalarTail(dst, src []byte, from int) {
	for i := from; i < len(dst); i++ {
		dst[i] ^= src[i]
	}
}
