package replay

import (
	"github.com/flier/gopq/pkg/pq"
	"github.com/flier/gopq/pkg/slab"
	"github.com/flier/gopq/pkg/trace"

	"github.com/flier/gopq/pkg/pq/explicit"
	"github.com/flier/gopq/pkg/pq/fibonacci"
	"github.com/flier/gopq/pkg/pq/implicit"
	"github.com/flier/gopq/pkg/pq/pairing"
	"github.com/flier/gopq/pkg/pq/quake"
	"github.com/flier/gopq/pkg/pq/rankpairing"
	"github.com/flier/gopq/pkg/pq/violation"
)

// builder constructs a type-erased runner for one variant, sized from a
// trace header.
type builder func(trace.Header) queueRunner

// variants registers every measurable queue. The quake entry doubles the
// pool: linking clones nodes, so peak record usage is twice the number of
// live elements.
var variants = map[string]builder{
	"implicit2":  implicitVariant(2),
	"implicit4":  implicitVariant(4),
	"implicit8":  implicitVariant(8),
	"implicit16": implicitVariant(16),

	"explicit2":  explicitVariant(2),
	"explicit4":  explicitVariant(4),
	"explicit8":  explicitVariant(8),
	"explicit16": explicitVariant(16),

	"pairing": func(h trace.Header) queueRunner {
		return newRunner(h, 1, func(p *slab.Pool[pairing.Node]) pq.Queue[pairing.Node] {
			return pairing.New(p)
		})
	},
	"fibonacci": func(h trace.Header) queueRunner {
		return newRunner(h, 1, func(p *slab.Pool[fibonacci.Node]) pq.Queue[fibonacci.Node] {
			return fibonacci.New(p)
		})
	},
	"rankpairing": func(h trace.Header) queueRunner {
		return newRunner(h, 1, func(p *slab.Pool[rankpairing.Node]) pq.Queue[rankpairing.Node] {
			return rankpairing.New(p)
		})
	},
	"violation": func(h trace.Header) queueRunner {
		return newRunner(h, 1, func(p *slab.Pool[violation.Node]) pq.Queue[violation.Node] {
			return violation.New(p)
		})
	},
	"quake": func(h trace.Header) queueRunner {
		return newRunner(h, 2, func(p *slab.Pool[quake.Node]) pq.Queue[quake.Node] {
			return quake.New(p)
		})
	},
}

func implicitVariant(arity uint32) builder {
	return func(h trace.Header) queueRunner {
		return newRunner(h, 1, func(p *slab.Pool[implicit.Node]) pq.Queue[implicit.Node] {
			return implicit.New(p, arity)
		})
	}
}

func explicitVariant(arity uint32) builder {
	return func(h trace.Header) queueRunner {
		return newRunner(h, 1, func(p *slab.Pool[explicit.Node]) pq.Queue[explicit.Node] {
			return explicit.New(p, arity)
		})
	}
}
