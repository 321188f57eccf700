package reedsolomon

// Poly is an immutable polynomial over a Field. Coefficients are stored
// highest-degree first, since that is the order the generator, syndrome,
// and error-locator polynomials all get built in.
type Poly struct {
	field  *Field
	coeffs []int
}

// newPoly builds a polynomial from coeffs (highest degree first), trimming
// any leading zero terms so the stored degree always matches the true one.
func newPoly(field *Field, coeffs []int) *Poly {
	if len(coeffs) == 0 {
		panic("reedsolomon: empty coefficient list")
	}
	trimmed := coeffs
	if len(coeffs) > 1 && coeffs[0] == 0 {
		lead := 1
		for lead < len(coeffs) && coeffs[lead] == 0 {
			lead++
		}
		if lead == len(coeffs) {
			trimmed = []int{0}
		} else {
			trimmed = append([]int(nil), coeffs[lead:]...)
		}
	}
	return &Poly{field: field, coeffs: trimmed}
}

// Coefficients returns the polynomial's coefficients, highest degree first.
func (p *Poly) Coefficients() []int {
	return p.coeffs
}

// Degree returns the polynomial's degree.
func (p *Poly) Degree() int {
	return len(p.coeffs) - 1
}

// IsZero reports whether this is the zero polynomial.
func (p *Poly) IsZero() bool {
	return p.coeffs[0] == 0
}

// GetCoefficient returns the coefficient of x^degree.
func (p *Poly) GetCoefficient(degree int) int {
	return p.coeffs[len(p.coeffs)-1-degree]
}

// EvaluateAt evaluates the polynomial at a using Horner's method, with a
// fast path for a==0 (just the constant term) and a==1 (a plain XOR-sum,
// since multiplying by the field's unit element is a no-op).
func (p *Poly) EvaluateAt(a int) int {
	switch a {
	case 0:
		return p.GetCoefficient(0)
	case 1:
		sum := 0
		for _, c := range p.coeffs {
			sum = AddOrSubtract(sum, c)
		}
		return sum
	}
	result := p.coeffs[0]
	for _, c := range p.coeffs[1:] {
		result = AddOrSubtract(p.field.Multiply(a, result), c)
	}
	return result
}

// AddOrSubtractPoly adds (equivalently, subtracts) another polynomial over
// the same field.
func (p *Poly) AddOrSubtractPoly(other *Poly) *Poly {
	if p.IsZero() {
		return other
	}
	if other.IsZero() {
		return p
	}

	short, long := p.coeffs, other.coeffs
	if len(short) > len(long) {
		short, long = long, short
	}

	sum := make([]int, len(long))
	offset := len(long) - len(short)
	copy(sum, long[:offset])
	for i := offset; i < len(long); i++ {
		sum[i] = AddOrSubtract(short[i-offset], long[i])
	}
	return newPoly(p.field, sum)
}

// MultiplyPoly multiplies by another polynomial over the same field.
func (p *Poly) MultiplyPoly(other *Poly) *Poly {
	if p.IsZero() || other.IsZero() {
		return p.field.Zero()
	}
	product := make([]int, len(p.coeffs)+len(other.coeffs)-1)
	for i, a := range p.coeffs {
		for j, b := range other.coeffs {
			product[i+j] = AddOrSubtract(product[i+j], p.field.Multiply(a, b))
		}
	}
	return newPoly(p.field, product)
}

// MultiplyScalar multiplies every coefficient by a single field element.
func (p *Poly) MultiplyScalar(scalar int) *Poly {
	switch scalar {
	case 0:
		return p.field.Zero()
	case 1:
		return p
	}
	product := make([]int, len(p.coeffs))
	for i, c := range p.coeffs {
		product[i] = p.field.Multiply(c, scalar)
	}
	return newPoly(p.field, product)
}

// MultiplyByMonomial multiplies by coefficient*x^degree.
func (p *Poly) MultiplyByMonomial(degree, coefficient int) *Poly {
	if degree < 0 {
		panic("reedsolomon: negative degree")
	}
	if coefficient == 0 {
		return p.field.Zero()
	}
	product := make([]int, len(p.coeffs)+degree)
	for i, c := range p.coeffs {
		product[i] = p.field.Multiply(c, coefficient)
	}
	return newPoly(p.field, product)
}

// polyQuotRem is the quotient and remainder of dividing one polynomial by
// another; Encoder.Encode keeps the remainder as its parity codewords.
type polyQuotRem struct {
	quotient, remainder *Poly
}

// Divide performs polynomial long division over the field: quotient and
// remainder such that p == quotient*other + remainder.
func (p *Poly) Divide(other *Poly) polyQuotRem {
	if other.IsZero() {
		panic("reedsolomon: division by zero polynomial")
	}

	quotient := p.field.Zero()
	remainder := p

	inverseLead := p.field.Inverse(other.GetCoefficient(other.Degree()))
	for remainder.Degree() >= other.Degree() && !remainder.IsZero() {
		degreeDiff := remainder.Degree() - other.Degree()
		scale := p.field.Multiply(remainder.GetCoefficient(remainder.Degree()), inverseLead)
		quotient = quotient.AddOrSubtractPoly(p.field.BuildMonomial(degreeDiff, scale))
		remainder = remainder.AddOrSubtractPoly(other.MultiplyByMonomial(degreeDiff, scale))
	}

	return polyQuotRem{quotient: quotient, remainder: remainder}
}
