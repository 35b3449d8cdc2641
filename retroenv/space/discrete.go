package space

// Combos are the legal button combinations of one control group (e.g. the
// d-pad), each entry already resolved to a bitmask. A space built on combo
// tables can only ever produce legal masks.

// Discrete is the single-index space. Its domain is [0, n^P) where n is the
// product of the group combo counts and P the player count. Each player owns
// one base-n digit of the index; within a player the index is decomposed in
// mixed radix over the groups, first group least significant.
type Discrete struct {
	combos  [][]EncodedAction
	players int
	n       int // combos per player
	total   int // n^players
}

// NewDiscrete creates the single-index combo space.
func NewDiscrete(combos [][]EncodedAction, players int) (*Discrete, error) {
	n, err := comboProduct("discrete", combos)
	if err != nil {
		return nil, err
	}
	if players < 1 {
		return nil, encodingErrorf("discrete", "players must be >= 1, got %d", players)
	}
	total := 1
	for p := 0; p < players; p++ {
		total *= n
	}
	return &Discrete{combos: combos, players: players, n: n, total: total}, nil
}

// N returns the total index domain size.
func (d *Discrete) N() int {
	return d.total
}

func (d *Discrete) Spec() Spec {
	return uniformSpec(1, 0, float64(d.total-1))
}

func (d *Discrete) Sample(src Sampler) []int {
	return []int{src.Intn(d.total)}
}

func (d *Discrete) Encode(value []int, player int) (EncodedAction, error) {
	if len(value) != 1 {
		return 0, encodingErrorf("discrete", "value length %d, want 1", len(value))
	}
	if err := checkPlayer("discrete", player, d.players); err != nil {
		return 0, err
	}
	index := value[0]
	if index < 0 || index >= d.total {
		return 0, encodingErrorf("discrete", "index %d out of range [0, %d)", index, d.total)
	}

	// Strip the lower players' digits, then decompose this player's digit
	// over the groups.
	sub := index
	for p := 0; p < player; p++ {
		sub /= d.n
	}
	sub %= d.n

	var mask EncodedAction
	for _, group := range d.combos {
		mask |= group[sub%len(group)]
		sub /= len(group)
	}
	return mask, nil
}

// MultiDiscrete is the per-group index space: one combo index per group per
// player, no mixed-radix packing. The value layout is player-major, i.e.
// player p owns the slice [G·p, G·p+G) for G groups.
type MultiDiscrete struct {
	combos  [][]EncodedAction
	players int
}

// NewMultiDiscrete creates the per-group combo space.
func NewMultiDiscrete(combos [][]EncodedAction, players int) (*MultiDiscrete, error) {
	if _, err := comboProduct("multi-discrete", combos); err != nil {
		return nil, err
	}
	if players < 1 {
		return nil, encodingErrorf("multi-discrete", "players must be >= 1, got %d", players)
	}
	return &MultiDiscrete{combos: combos, players: players}, nil
}

func (m *MultiDiscrete) Spec() Spec {
	groups := len(m.combos)
	lo := make([]float64, groups*m.players)
	hi := make([]float64, groups*m.players)
	for p := 0; p < m.players; p++ {
		for g, group := range m.combos {
			hi[groups*p+g] = float64(len(group) - 1)
		}
	}
	return uniformSpecFrom(lo, hi)
}

func (m *MultiDiscrete) Sample(src Sampler) []int {
	groups := len(m.combos)
	value := make([]int, groups*m.players)
	for p := 0; p < m.players; p++ {
		for g, group := range m.combos {
			value[groups*p+g] = src.Intn(len(group))
		}
	}
	return value
}

func (m *MultiDiscrete) Encode(value []int, player int) (EncodedAction, error) {
	groups := len(m.combos)
	if len(value) != groups*m.players {
		return 0, encodingErrorf("multi-discrete", "value length %d, want %d", len(value), groups*m.players)
	}
	if err := checkPlayer("multi-discrete", player, m.players); err != nil {
		return 0, err
	}

	var mask EncodedAction
	for g, group := range m.combos {
		index := value[groups*player+g]
		if index < 0 || index >= len(group) {
			return 0, encodingErrorf("multi-discrete", "group %d index %d out of range [0, %d)", g, index, len(group))
		}
		mask |= group[index]
	}
	return mask, nil
}

func comboProduct(space string, combos [][]EncodedAction) (int, error) {
	if len(combos) == 0 {
		return 0, encodingErrorf(space, "no combo groups")
	}
	n := 1
	for g, group := range combos {
		if len(group) == 0 {
			return 0, encodingErrorf(space, "combo group %d is empty", g)
		}
		n *= len(group)
	}
	return n, nil
}
