package reedsolomon

import (
	"errors"

	qrforge "github.com/qrforge/qrforge"
)

// ErrReedSolomon indicates that received codewords could not be corrected
// with the available error-correction budget.
var ErrReedSolomon = errors.New("reedsolomon: decoding error")

// Decoder corrects errors in a codeword stream over a fixed Field.
type Decoder struct {
	field *Field
}

// NewDecoder creates a Decoder over the given field.
func NewDecoder(field *Field) *Decoder {
	return &Decoder{field: field}
}

// Decode corrects errors in received in place and returns how many
// codewords it fixed. twoS is the number of error-correction codewords
// present, which bounds how many symbol errors can be located and fixed
// (at most twoS/2). A nil error with a zero result means the syndrome was
// already all-zero: the codewords arrived intact.
func (d *Decoder) Decode(received []int, twoS int) (int, error) {
	syndrome, clean := d.computeSyndrome(received, twoS)
	if clean {
		return 0, nil
	}

	sigma, omega, err := d.solveErrorPolynomials(syndrome, twoS)
	if err != nil {
		qrforge.Logger.Warn("reed-solomon decode failed solving error locator", "ec_codewords", twoS, "error", err)
		return 0, err
	}

	locations, err := d.locateErrors(sigma)
	if err != nil {
		qrforge.Logger.Warn("reed-solomon decode failed locating errors", "ec_codewords", twoS, "error", err)
		return 0, err
	}

	magnitudes := d.errorMagnitudes(omega, locations)
	for i, loc := range locations {
		position := len(received) - 1 - d.field.Log(loc)
		if position < 0 {
			qrforge.Logger.Warn("reed-solomon decode found an error location outside the message", "position", position)
			return 0, ErrReedSolomon
		}
		received[position] = AddOrSubtract(received[position], magnitudes[i])
	}
	return len(locations), nil
}

// computeSyndrome evaluates the received polynomial at each of the twoS
// roots the generator polynomial was built from. All-zero syndrome
// coefficients mean every root is still a root of the received polynomial,
// i.e. no errors occurred.
func (d *Decoder) computeSyndrome(received []int, twoS int) (*Poly, bool) {
	poly := newPoly(d.field, received)
	coeffs := make([]int, twoS)
	clean := true
	for i := 0; i < twoS; i++ {
		eval := poly.EvaluateAt(d.field.Exp(i + d.field.GeneratorBase()))
		coeffs[twoS-1-i] = eval
		if eval != 0 {
			clean = false
		}
	}
	return newPoly(d.field, coeffs), clean
}

// solveErrorPolynomials runs the Euclidean algorithm against x^twoS and the
// syndrome polynomial to split out the error locator (sigma) and error
// evaluator (omega) polynomials.
func (d *Decoder) solveErrorPolynomials(syndrome *Poly, twoS int) (sigma, omega *Poly, err error) {
	a := d.field.BuildMonomial(twoS, 1)
	b := syndrome
	if a.Degree() < b.Degree() {
		a, b = b, a
	}

	rLast, r := a, b
	tLast, t := d.field.Zero(), d.field.One()

	for 2*r.Degree() >= twoS {
		prevR, prevT := rLast, tLast
		rLast, tLast = r, t

		if rLast.IsZero() {
			return nil, nil, ErrReedSolomon
		}

		r = prevR
		q := d.field.Zero()
		inverseLead := d.field.Inverse(rLast.GetCoefficient(rLast.Degree()))
		for r.Degree() >= rLast.Degree() && !r.IsZero() {
			degreeDiff := r.Degree() - rLast.Degree()
			scale := d.field.Multiply(r.GetCoefficient(r.Degree()), inverseLead)
			q = q.AddOrSubtractPoly(d.field.BuildMonomial(degreeDiff, scale))
			r = r.AddOrSubtractPoly(rLast.MultiplyByMonomial(degreeDiff, scale))
		}

		t = q.MultiplyPoly(tLast).AddOrSubtractPoly(prevT)
		if r.Degree() >= rLast.Degree() {
			return nil, nil, ErrReedSolomon
		}
	}

	sigmaTildeAtZero := t.GetCoefficient(0)
	if sigmaTildeAtZero == 0 {
		return nil, nil, ErrReedSolomon
	}

	inverse := d.field.Inverse(sigmaTildeAtZero)
	return t.MultiplyScalar(inverse), r.MultiplyScalar(inverse), nil
}

// locateErrors finds the roots of the error locator polynomial by brute
// force (Chien search): trying every nonzero field element and checking
// which ones evaluate it to zero, then inverting each root to recover the
// corresponding codeword position.
func (d *Decoder) locateErrors(sigma *Poly) ([]int, error) {
	numErrors := sigma.Degree()
	if numErrors == 1 {
		return []int{sigma.GetCoefficient(1)}, nil
	}

	locations := make([]int, 0, numErrors)
	for i := 1; i < d.field.Size() && len(locations) < numErrors; i++ {
		if sigma.EvaluateAt(i) == 0 {
			locations = append(locations, d.field.Inverse(i))
		}
	}
	if len(locations) != numErrors {
		return nil, ErrReedSolomon
	}
	return locations, nil
}

// errorMagnitudes applies Forney's formula at each error location to find
// how much each corrupted codeword needs to be XORed with to repair it.
func (d *Decoder) errorMagnitudes(omega *Poly, locations []int) []int {
	magnitudes := make([]int, len(locations))
	for i, loc := range locations {
		xiInverse := d.field.Inverse(loc)

		denominator := 1
		for j, other := range locations {
			if i == j {
				continue
			}
			term := d.field.Multiply(other, xiInverse)
			termPlusOne := term | 1
			if term&1 != 0 {
				termPlusOne = term &^ 1
			}
			denominator = d.field.Multiply(denominator, termPlusOne)
		}

		magnitudes[i] = d.field.Multiply(omega.EvaluateAt(xiInverse), d.field.Inverse(denominator))
		if d.field.GeneratorBase() != 0 {
			magnitudes[i] = d.field.Multiply(magnitudes[i], xiInverse)
		}
	}
	return magnitudes
}
