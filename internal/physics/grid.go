package physics

import "github.com/Zombieliu/coinpusher/internal/protocol"

// cellKey identifies one bucket of the broad-phase grid, keyed on the
// coin's X/Z table position; vertical overlap is checked by the narrow
// phase (resolveCoinCoin).
type cellKey struct {
	x, z int64
}

// broadGrid is a uniform spatial grid used to cut down the O(n^2)
// coin-coin overlap check to nearby cells only. Adapted from the car
// racer's SpatialGrid: same bucket-and-scan-neighbors shape, repurposed
// from 2D player positions to 3D coin positions projected onto the table
// plane.
type broadGrid struct {
	cellSize float64
	cells    map[cellKey][]protocol.CoinID
}

func newBroadGrid(cellSize float64) *broadGrid {
	return &broadGrid{cellSize: cellSize, cells: make(map[cellKey][]protocol.CoinID)}
}

func (g *broadGrid) keyFor(x, z float32) cellKey {
	return cellKey{
		x: int64(float64(x) / g.cellSize),
		z: int64(float64(z) / g.cellSize),
	}
}

// rebuild clears and repopulates the grid from the current coin set.
func (g *broadGrid) rebuild(coins map[protocol.CoinID]*coinBody) {
	for k := range g.cells {
		delete(g.cells, k)
	}
	for id, c := range coins {
		k := g.keyFor(c.Pos[0], c.Pos[2])
		g.cells[k] = append(g.cells[k], id)
	}
}

// pairKey packs two coin ids into a comparable, order-independent key.
type pairKey struct {
	a, b protocol.CoinID
}

func makePairKey(a, b protocol.CoinID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// potentialPairs returns every candidate coin-coin pair that shares a cell
// or occupies adjacent cells, deduplicated.
func (g *broadGrid) potentialPairs() []pairKey {
	seen := make(map[pairKey]bool)
	var pairs []pairKey

	add := func(a, b protocol.CoinID) {
		if a == b {
			return
		}
		pk := makePairKey(a, b)
		if !seen[pk] {
			seen[pk] = true
			pairs = append(pairs, pk)
		}
	}

	for key, ids := range g.cells {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				add(ids[i], ids[j])
			}
		}
		for dx := int64(-1); dx <= 1; dx++ {
			for dz := int64(-1); dz <= 1; dz++ {
				if dx == 0 && dz == 0 {
					continue
				}
				neighbor := cellKey{x: key.x + dx, z: key.z + dz}
				for _, a := range ids {
					for _, b := range g.cells[neighbor] {
						add(a, b)
					}
				}
			}
		}
	}
	return pairs
}
