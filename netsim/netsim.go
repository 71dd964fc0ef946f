// Package netsim is a representative consumer of package vsim: a
// virtual-time network simulator whose channels and ports are built
// entirely out of vsim signals and computations, the way
// _examples/original_source/pset2/netsim.hh builds its coroutine-based
// simulator out of cotamer primitives (spec.md §6, "Representative
// consumer"). Message routing and delivery ordering follow
// dedis-tlc/go/dist/node.go's Peer/Message/Broadcast shape.
package netsim

import (
	"encoding/binary"
	"log"
	"math/rand"
	"time"

	"github.com/cespare/xxhash/v2"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/AnatoleLucet/vsim"
)

// ID identifies a server in the network.
type ID = int

// Default per-hop delays, matching pset2/netsim.hh's channel<T> defaults.
const (
	DefaultLinkDelay = 20 * time.Millisecond
	DefaultSendDelay = 1 * time.Millisecond
)

// Port is a server's input interface: a FIFO queue of pending messages
// plus the one-shot signal senders trigger on delivery
// (pset2/netsim.hh port<T>).
type Port[T any] struct {
	id      ID
	verbose bool
	queue   []T
	arrived *vsim.Signal
}

func newPort[T any](id ID) *Port[T] {
	return &Port[T]{id: id, arrived: vsim.NewSignal()}
}

// ID returns the port's server id.
func (p *Port[T]) ID() ID { return p.id }

func (p *Port[T]) enqueue(m T) {
	p.queue = append(p.queue, m)
	woken := p.arrived
	p.arrived = vsim.NewSignal()
	woken.Trigger()
}

// Receive suspends until a message is available, then dequeues and
// returns it (pset2/netsim.hh port<T>::receive).
func (p *Port[T]) Receive() *vsim.Computation[T] {
	return vsim.Go(func(self *vsim.Computation[T]) (T, error) {
		for len(p.queue) == 0 {
			if err := self.Await(p.arrived); err != nil {
				var zero T
				return zero, err
			}
		}

		m := p.queue[0]
		p.queue = p.queue[1:]
		if p.verbose {
			log.Printf("netsim: %s: %v -> port %d", vsim.Now().Format(time.RFC3339Nano), m, p.id)
		}
		return m, nil
	})
}

// Close wakes any blocked Receive calls without delivering a message,
// mirroring pset2/netsim.hh's port destructor: "wake up any `receive`
// coroutines so that the driver cleanup code will free their memory."
func (p *Port[T]) Close() { p.arrived.Trigger() }

// Channel is a one-way, lossy, delayed link from one server to
// another's port (pset2/netsim.hh channel<T>).
type Channel[T any] struct {
	from ID
	port *Port[T]
	net  networkRand

	linkDelay time.Duration
	sendDelay time.Duration
	dropRate  float64
	verbose   bool
}

// networkRand is the slice of *Network a Channel needs, kept narrow so
// Channel doesn't have to know its own message type's Network.
type networkRand interface {
	jitter() time.Duration
	dropped(p float64) bool
}

// Source returns the sending server id.
func (c *Channel[T]) Source() ID { return c.from }

// Destination returns the receiving server id.
func (c *Channel[T]) Destination() ID { return c.port.id }

// SetDelays overrides the link and send delays (defaults DefaultLinkDelay
// and DefaultSendDelay).
func (c *Channel[T]) SetDelays(link, send time.Duration) {
	c.linkDelay = link
	c.sendDelay = send
}

// SetDropRate sets the probability, in [0,1], that a message sent on
// this channel never arrives (original_source/pset2 supplement: the
// distilled spec has no lossy-link notion, but netsim.hh's network<T>
// carries the randomness to model one).
func (c *Channel[T]) SetDropRate(p float64) { c.dropRate = p }

// SetVerbose toggles per-message trace logging.
func (c *Channel[T]) SetVerbose(v bool) { c.verbose = v }

// Send transmits m. The returned computation resolves once the sender
// is free to send its next message (after sendDelay), not once m has
// arrived: delivery itself runs as a detached computation that fires
// after linkDelay plus any simulated jitter (pset2/netsim.hh
// channel<T>::send/send_after).
func (c *Channel[T]) Send(m T) *vsim.Computation[struct{}] {
	return vsim.Go(func(self *vsim.Computation[struct{}]) (struct{}, error) {
		if c.verbose {
			log.Printf("netsim: %s: %d -> %d: %v", vsim.Now().Format(time.RFC3339Nano), c.from, c.port.id, m)
		}

		drop := c.net.dropped(c.dropRate)
		delay := c.linkDelay + c.net.jitter()

		delivery := vsim.Go(func(self *vsim.Computation[struct{}]) (struct{}, error) {
			if err := self.Await(vsim.After(delay)); err != nil {
				return struct{}{}, err
			}
			if !drop {
				c.port.enqueue(m)
			}
			return struct{}{}, nil
		})
		delivery.Detach()

		if err := self.Await(vsim.After(c.sendDelay)); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
}

// Network looks up channels and ports by integer server id, creating
// them lazily, and is the source of the simulator's randomness
// (pset2/netsim.hh network<T>).
type Network[T any] struct {
	links map[uint64]*Channel[T]
	ports map[ID]*Port[T]
	known mapset.Set[ID]

	rng     *rand.Rand
	jitterσ time.Duration
	verbose bool
}

// NewNetwork returns an empty network seeded deterministically so
// packet loss and jitter are reproducible across runs (spec.md's
// "Configuration" determinism requirement, generalized from signals to
// this consumer's own randomness).
func NewNetwork[T any](seed int64) *Network[T] {
	return &Network[T]{
		links: make(map[uint64]*Channel[T]),
		ports: make(map[ID]*Port[T]),
		known: mapset.NewSet[ID](),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// SetVerbose toggles trace logging on every channel and port created
// from this point on.
func (n *Network[T]) SetVerbose(v bool) { n.verbose = v }

// SetJitter sets the jitter scale: every link's delivery delay gets the
// absolute value of a Gaussian sample with this standard deviation
// added, so jitter never shortens a delay; zero disables jitter.
func (n *Network[T]) SetJitter(stddev time.Duration) { n.jitterσ = stddev }

func linkKey(src, dst ID) uint64 {
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[0:4], uint32(src))
	binary.BigEndian.PutUint32(buf[4:8], uint32(dst))
	return xxhash.Sum64(buf[:])
}

// Link returns the channel from src to dst, creating it on first use.
func (n *Network[T]) Link(src, dst ID) *Channel[T] {
	key := linkKey(src, dst)
	if ch, ok := n.links[key]; ok {
		return ch
	}

	ch := &Channel[T]{
		from:      src,
		port:      n.Input(dst),
		net:       n,
		linkDelay: DefaultLinkDelay,
		sendDelay: DefaultSendDelay,
		verbose:   n.verbose,
	}
	n.links[key] = ch
	n.known.Add(src)
	n.known.Add(dst)
	return ch
}

// Input returns the port accepting messages addressed to id, creating
// it on first use.
func (n *Network[T]) Input(id ID) *Port[T] {
	if p, ok := n.ports[id]; ok {
		return p
	}
	p := newPort[T](id)
	p.verbose = n.verbose
	n.ports[id] = p
	n.known.Add(id)
	return p
}

// KnownPeers returns every server id that has appeared as a link
// endpoint or port so far, in no particular order.
func (n *Network[T]) KnownPeers() []ID { return n.known.ToSlice() }

// Broadcast sends m from src to every known peer, mirroring the
// default Broadcast in dedis-tlc/go/dist/node.go ("by default, this
// simply calls peer.Send on each peer individually"). The returned
// slice lets the caller await every send's completion with vsim.All.
func (n *Network[T]) Broadcast(src ID, m T) []*vsim.Computation[struct{}] {
	peers := n.known.ToSlice()
	sends := make([]*vsim.Computation[struct{}], 0, len(peers))
	for _, dst := range peers {
		sends = append(sends, n.Link(src, dst).Send(m))
	}
	return sends
}

// Clear drops every channel and port, waking any blocked Receive
// calls so the next vsim.Clear/Loop pass unwinds them cleanly
// (pset2/netsim.hh network<T>::clear: "this may trigger some events,
// so it should be followed by cotamer::clear()").
func (n *Network[T]) Clear() {
	for _, p := range n.ports {
		p.Close()
	}
	n.links = make(map[uint64]*Channel[T])
	n.ports = make(map[ID]*Port[T])
	n.known = mapset.NewSet[ID]()
}

// CoinFlip returns true with probability 0.5.
func (n *Network[T]) CoinFlip() bool { return n.rng.Float64() < 0.5 }

// CoinFlipP returns true with the given probability.
func (n *Network[T]) CoinFlipP(p float64) bool { return n.rng.Float64() < p }

// UniformDuration returns a uniformly distributed duration in [min, max).
func (n *Network[T]) UniformDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(n.rng.Int63n(int64(max-min)))
}

// Exponential returns an exponentially distributed duration with the
// given mean, useful for modeling occasional long-tailed link delay.
func (n *Network[T]) Exponential(mean time.Duration) time.Duration {
	return time.Duration(n.rng.ExpFloat64() * float64(mean))
}

func (n *Network[T]) jitter() time.Duration {
	if n.jitterσ <= 0 {
		return 0
	}
	d := time.Duration(n.rng.NormFloat64() * float64(n.jitterσ))
	if d < 0 {
		d = -d
	}
	return d
}

func (n *Network[T]) dropped(p float64) bool {
	if p <= 0 {
		return false
	}
	return n.rng.Float64() < p
}
