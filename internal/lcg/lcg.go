// Package lcg generates deterministic test-vector byte streams using the
// linear congruential generator the original mercha tool used: a byte
// stream seeded by "Generate info" in the metafile, reproducing exactly
// what tool.c wrote so existing metafiles/result vectors stay valid.
package lcg

const (
	a = 1103515245
	c = 12345
	m = 1 << 31 // 2^31
)

// Generator produces the LCG byte stream byte = state mod 255, state =
// (a*state + c) mod m, advancing state before each byte (matching tool.c:
// the seed itself is never emitted).
type Generator struct {
	state uint64
}

// New creates a Generator seeded with the "Generate info" value from a
// metafile.
func New(seed uint64) *Generator {
	return &Generator{state: seed % m}
}

// Next advances the generator and returns the next byte.
func (g *Generator) Next() byte {
	g.state = (a*g.state + c) % m
	return byte(g.state % 255)
}

// Fill writes len(buf) LCG-generated bytes into buf, advancing the
// generator's state once per byte.
func (g *Generator) Fill(buf []byte) {
	for i := range buf {
		buf[i] = g.Next()
	}
}

// Generate returns a length-byte slice from a fresh Generator seeded with
// seed.
func Generate(seed uint64, length int) []byte {
	buf := make([]byte, length)
	New(seed).Fill(buf)
	return buf
}
