package hnsw

// LevelStats summarizes one layer of the graph.
type LevelStats struct {
	Level          int
	Nodes          int
	Connections    int
	AvgConnections int
}

// Stats summarizes the graph.
type Stats struct {
	Nodes    int
	MaxLevel int
	M        int
	M0       int
	Levels   []LevelStats
}

// Stats returns per-layer node and link counts.
func (g *Graph) Stats() Stats {
	levels := make([]LevelStats, g.maxLevel+1)
	for i := range levels {
		levels[i].Level = i
	}
	for _, nodeLinks := range g.links {
		for l, conns := range nodeLinks {
			levels[l].Nodes++
			levels[l].Connections += len(conns)
		}
	}
	for i := range levels {
		if levels[i].Nodes > 0 {
			levels[i].AvgConnections = levels[i].Connections / levels[i].Nodes
		}
	}
	return Stats{
		Nodes:    len(g.vectors),
		MaxLevel: g.maxLevel,
		M:        g.maxM,
		M0:       g.maxM0,
		Levels:   levels,
	}
}
