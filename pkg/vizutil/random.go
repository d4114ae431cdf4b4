package vizutil

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/topochart/pkg/topology"
)

// Defaults of the random helpers when called with zero arguments.
const (
	DefaultRndMin     = 100
	DefaultRndMax     = 500
	DefaultRndLen     = 50
	DefaultRndNumsMax = 100
)

// Kit bundles the helpers with a seeded random source and a resize bus.
// It is safe for concurrent use.
type Kit struct {
	mu     sync.Mutex
	source *rand.ChaCha8
	rnd    *rand.Rand

	Resizer *Resizer
}

// NewKit creates a kit whose random output is fully determined by seed.
func NewKit(seed uint64, logger *log.Logger) *Kit {
	var s [32]byte
	binary.LittleEndian.PutUint64(s[:], seed)
	src := rand.NewChaCha8(s)
	return &Kit{
		source:  src,
		rnd:     rand.New(src),
		Resizer: NewResizer(logger),
	}
}

// RndNum returns a random integer in [lo, hi). Zero arguments fall back
// to 100 and 500. Draws below lo are raised to lo.
func (k *Kit) RndNum(lo, hi int) int {
	if lo == 0 {
		lo = DefaultRndMin
	}
	if hi == 0 {
		hi = DefaultRndMax
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	return max(int(k.rnd.Float64()*float64(hi)), lo)
}

// RndNumbers returns a slice of random length below length (default 50)
// holding integers in [0, hi) (default 100).
func (k *Kit) RndNumbers(length, hi int) []int {
	if length == 0 {
		length = DefaultRndLen
	}
	if hi == 0 {
		hi = DefaultRndNumsMax
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	n := int(k.rnd.Float64() * float64(length))
	nums := make([]int, n)
	for i := range nums {
		nums[i] = int(k.rnd.Float64() * float64(hi))
	}
	return nums
}

// =============================================================================
// Random topologies
// =============================================================================

// TopologyOptions sizes a generated topology.
type TopologyOptions struct {
	Routers    int
	Networks   int
	Ports      int
	Connectors int // network connectors, each with one endpoint
}

// RandomTopology builds a K5 style topology: networks hang off routers,
// ports off networks, and every connector endpoint attaches to a router
// and to its connector, which belongs to a single connector pool.
// Resource IDs are UUIDs drawn from the kit's source.
func (k *Kit) RandomTopology(opts TopologyOptions) (*topology.Dataset, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	g := &generator{rnd: k.rnd, ids: k.source, data: &topology.Dataset{}}
	routers, err := g.add(topology.NodeTypeRouter, "router", opts.Routers, nil)
	if err != nil {
		return nil, err
	}
	networks, err := g.add(topology.NodeTypeNetwork, "network", opts.Networks, func(i int) map[string]any {
		return map[string]any{"cidr": fmt.Sprintf("10.0.%d.0/24", i)}
	})
	if err != nil {
		return nil, err
	}
	ports, err := g.add(topology.NodeTypePort, "port", opts.Ports, nil)
	if err != nil {
		return nil, err
	}
	g.attach(networks, routers)
	g.attach(ports, networks)

	if opts.Connectors > 0 {
		pool, err := g.add(topology.NodeTypeNCPool, "ncpool", 1, nil)
		if err != nil {
			return nil, err
		}
		ncs, err := g.add(topology.NodeTypeNC, "nc", opts.Connectors, nil)
		if err != nil {
			return nil, err
		}
		eps, err := g.add(topology.NodeTypeNCEP, "ncep", opts.Connectors, nil)
		if err != nil {
			return nil, err
		}
		g.attach(ncs, pool)
		for i, ep := range eps {
			g.link(ep, ncs[i])
		}
		g.attach(eps, routers)
	}
	return g.data, nil
}

type generator struct {
	rnd  *rand.Rand
	ids  io.Reader
	data *topology.Dataset
}

func (g *generator) add(t topology.NodeType, prefix string, n int, meta func(i int) map[string]any) ([]*topology.Node, error) {
	out := make([]*topology.Node, 0, n)
	for i := range n {
		id, err := uuid.NewRandomFromReader(g.ids)
		if err != nil {
			return nil, fmt.Errorf("generate id: %w", err)
		}
		node := &topology.Node{
			ID:    id.String(),
			Type:  t,
			Label: fmt.Sprintf("%s-%d", prefix, i),
			Meta:  map[string]any{"status": "ACTIVE"},
		}
		if meta != nil {
			for k, v := range meta(i) {
				node.Meta[k] = v
			}
		}
		out = append(out, node)
		g.data.Nodes = append(g.data.Nodes, node)
	}
	return out, nil
}

// attach links every child to a random parent. Children stay unlinked
// when there are no parents.
func (g *generator) attach(children, parents []*topology.Node) {
	if len(parents) == 0 {
		return
	}
	for _, c := range children {
		g.link(c, parents[g.rnd.IntN(len(parents))])
	}
}

func (g *generator) link(source, target *topology.Node) {
	g.data.Links = append(g.data.Links, &topology.Link{Source: source.ID, Target: target.ID})
}
