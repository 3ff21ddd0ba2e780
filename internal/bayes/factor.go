package bayes

// Factor is a non-negative function over a set of discrete variables, stored as
// a dense table in row-major order (the last variable varies fastest).
type Factor struct {
	vars   []string
	cards  []int
	values []float64
}

// NewFactor creates a factor over vars with the given cardinalities and values.
// The values slice is copied.
func NewFactor(vars []string, cards []int, values []float64) Factor {
	f := Factor{
		vars:   append([]string(nil), vars...),
		cards:  append([]int(nil), cards...),
		values: append([]float64(nil), values...),
	}
	return f
}

// Vars returns the variables the factor is defined over.
func (f Factor) Vars() []string {
	return append([]string(nil), f.vars...)
}

// Values returns a copy of the factor table.
func (f Factor) Values() []float64 {
	return append([]float64(nil), f.values...)
}

// Scalar reports whether the factor has no variables left.
func (f Factor) Scalar() bool {
	return len(f.vars) == 0
}

func (f Factor) indexOf(name string) int {
	for i, v := range f.vars {
		if v == name {
			return i
		}
	}
	return -1
}

// strides returns the table stride of each variable.
func (f Factor) strides() []int {
	s := make([]int, len(f.cards))
	step := 1
	for i := len(f.cards) - 1; i >= 0; i-- {
		s[i] = step
		step *= f.cards[i]
	}
	return s
}

// Reduce fixes every observed variable of the factor to its evidence state and
// drops it from the scope. Variables not in the factor are ignored.
func (f Factor) Reduce(evidence Assignment) Factor {
	var keepVars []string
	var keepCards []int
	fixed := make(map[int]int)
	for i, v := range f.vars {
		if state, ok := evidence[v]; ok {
			fixed[i] = state
			continue
		}
		keepVars = append(keepVars, v)
		keepCards = append(keepCards, f.cards[i])
	}
	if len(fixed) == 0 {
		return NewFactor(f.vars, f.cards, f.values)
	}

	out := Factor{vars: keepVars, cards: keepCards, values: make([]float64, product(keepCards))}
	states := make([]int, len(f.vars))
	for idx := range f.values {
		decode(idx, f.cards, states)
		match := true
		for pos, state := range fixed {
			if states[pos] != state {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		j, step := 0, 1
		for i := len(f.vars) - 1; i >= 0; i-- {
			if _, ok := fixed[i]; ok {
				continue
			}
			j += states[i] * step
			step *= f.cards[i]
		}
		out.values[j] = f.values[idx]
	}
	return out
}

// Product multiplies two factors. The scope of the result is f's variables
// followed by g's variables that f does not contain.
func (f Factor) Product(g Factor) Factor {
	vars := append([]string(nil), f.vars...)
	cards := append([]int(nil), f.cards...)
	for i, v := range g.vars {
		if f.indexOf(v) < 0 {
			vars = append(vars, v)
			cards = append(cards, g.cards[i])
		}
	}

	out := Factor{vars: vars, cards: cards, values: make([]float64, product(cards))}
	fPos := make([]int, len(f.vars))
	for i, v := range f.vars {
		fPos[i] = indexIn(vars, v)
	}
	gPos := make([]int, len(g.vars))
	for i, v := range g.vars {
		gPos[i] = indexIn(vars, v)
	}
	fStrides, gStrides := f.strides(), g.strides()

	states := make([]int, len(vars))
	for idx := range out.values {
		decode(idx, cards, states)
		fi, gi := 0, 0
		for i, p := range fPos {
			fi += states[p] * fStrides[i]
		}
		for i, p := range gPos {
			gi += states[p] * gStrides[i]
		}
		out.values[idx] = f.values[fi] * g.values[gi]
	}
	return out
}

// SumOut marginalizes name out of the factor. A factor that does not contain
// name is returned unchanged.
func (f Factor) SumOut(name string) Factor {
	pos := f.indexOf(name)
	if pos < 0 {
		return f
	}

	vars := make([]string, 0, len(f.vars)-1)
	cards := make([]int, 0, len(f.cards)-1)
	for i := range f.vars {
		if i != pos {
			vars = append(vars, f.vars[i])
			cards = append(cards, f.cards[i])
		}
	}

	out := Factor{vars: vars, cards: cards, values: make([]float64, product(cards))}
	states := make([]int, len(f.vars))
	for idx, val := range f.values {
		decode(idx, f.cards, states)
		j, step := 0, 1
		for i := len(f.vars) - 1; i >= 0; i-- {
			if i == pos {
				continue
			}
			j += states[i] * step
			step *= f.cards[i]
		}
		out.values[j] += val
	}
	return out
}

// Normalize scales the factor so its values sum to one. It returns false when
// the total mass is zero, in which case the factor is left unchanged.
func (f Factor) Normalize() (Factor, bool) {
	total := 0.0
	for _, v := range f.values {
		total += v
	}
	if total <= 0 {
		return f, false
	}
	out := NewFactor(f.vars, f.cards, f.values)
	for i := range out.values {
		out.values[i] /= total
	}
	return out, true
}

// decode writes the per-variable states of a row-major table index into states.
func decode(idx int, cards []int, states []int) {
	for i := len(cards) - 1; i >= 0; i-- {
		states[i] = idx % cards[i]
		idx /= cards[i]
	}
}

func product(cards []int) int {
	n := 1
	for _, c := range cards {
		n *= c
	}
	return n
}

func indexIn(list []string, name string) int {
	for i, v := range list {
		if v == name {
			return i
		}
	}
	return -1
}
