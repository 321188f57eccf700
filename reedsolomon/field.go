// Package reedsolomon implements Reed-Solomon error correction over
// GF(2^n): encoding appends parity codewords to a message, decoding
// detects and repairs corrupted codewords using syndrome computation,
// the Euclidean algorithm, and Chien/Forney-style error location and
// magnitude solving.
package reedsolomon

import "fmt"

// Field is a Galois field GF(2^n) defined by a primitive polynomial, with
// precomputed exponent/log tables for fast multiplication and inversion.
type Field struct {
	exp, log      []int
	zeroPoly      *Poly
	onePoly       *Poly
	size          int
	primitive     int
	generatorBase int
}

// Predefined fields for the symbologies that use Reed-Solomon coding.
var (
	QRCodeField256     = NewField(0x011D, 256, 0) // x^8 + x^4 + x^3 + x^2 + 1
	DataMatrixField256 = NewField(0x012D, 256, 1) // x^8 + x^5 + x^3 + x^2 + 1
	AztecData12        = NewField(0x1069, 4096, 1)
	AztecData10        = NewField(0x0409, 1024, 1)
	AztecData8         = DataMatrixField256
	AztecData6         = NewField(0x0043, 64, 1)
	AztecParam         = NewField(0x0013, 16, 1)
	MaxiCodeField64    = AztecData6
)

// NewField builds GF(size) from the given primitive polynomial. generatorBase
// is the field element the generator polynomial's roots start counting from;
// QR codes use 0, most other symbologies use 1.
func NewField(primitive, size, generatorBase int) *Field {
	f := &Field{
		primitive:     primitive,
		size:          size,
		generatorBase: generatorBase,
		exp:           make([]int, size),
		log:           make([]int, size),
	}
	f.buildTables()
	f.zeroPoly = newPoly(f, []int{0})
	f.onePoly = newPoly(f, []int{1})
	return f
}

// buildTables fills the exponent and discrete-log tables by walking the
// multiplicative group generated by x=2, reducing modulo the primitive
// polynomial whenever a step overflows the field.
func (f *Field) buildTables() {
	x := 1
	for i := range f.exp {
		f.exp[i] = x
		x <<= 1
		if x >= f.size {
			x = (x ^ f.primitive) & (f.size - 1)
		}
	}
	for i := 0; i < f.size-1; i++ {
		f.log[f.exp[i]] = i
	}
}

// Zero returns this field's zero polynomial.
func (f *Field) Zero() *Poly { return f.zeroPoly }

// One returns this field's polynomial representing 1.
func (f *Field) One() *Poly { return f.onePoly }

// BuildMonomial returns the single-term polynomial coefficient*x^degree.
func (f *Field) BuildMonomial(degree, coefficient int) *Poly {
	if degree < 0 {
		panic("reedsolomon: negative degree")
	}
	if coefficient == 0 {
		return f.zeroPoly
	}
	coeffs := make([]int, degree+1)
	coeffs[0] = coefficient
	return newPoly(f, coeffs)
}

// AddOrSubtract adds (equivalently, subtracts) two field elements; in
// characteristic-2 fields the two operations coincide and are just XOR.
func AddOrSubtract(a, b int) int {
	return a ^ b
}

// Exp returns the field element 2^a.
func (f *Field) Exp(a int) int {
	return f.exp[a]
}

// Log returns the discrete log of a nonzero field element, base 2.
func (f *Field) Log(a int) int {
	if a == 0 {
		panic("reedsolomon: log of zero")
	}
	return f.log[a]
}

// Inverse returns the multiplicative inverse of a nonzero field element.
func (f *Field) Inverse(a int) int {
	if a == 0 {
		panic("reedsolomon: inverse of zero")
	}
	return f.exp[f.size-f.log[a]-1]
}

// Multiply returns a*b in this field.
func (f *Field) Multiply(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return f.exp[(f.log[a]+f.log[b])%(f.size-1)]
}

// Size returns the number of elements in the field.
func (f *Field) Size() int { return f.size }

// GeneratorBase returns the field element the generator roots start at.
func (f *Field) GeneratorBase() int { return f.generatorBase }

func (f *Field) String() string {
	return fmt.Sprintf("GF(0x%x,%d)", f.primitive, f.size)
}
