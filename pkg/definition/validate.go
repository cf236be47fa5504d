package definition

import (
	"fmt"

	"github.com/aretw0/bpmngen/pkg/domain"
)

// Result is a successfully validated definition plus its non-fatal findings.
type Result struct {
	Definition *domain.WorkflowDefinition
	Warnings   []*ValidationError
}

// Validate parses raw definition text and checks its structure.
//
// A parse failure is reported as a single *SyntaxError. Structural problems are
// all collected and returned together as an *AggregateError so they can be fixed
// in one pass. Unknown element types only produce warnings.
//
// Validate has no side effects and is safe to call on every edit.
func Validate(raw []byte) (*Result, error) {
	rd, err := parse(raw)
	if err != nil {
		return nil, err
	}

	c := &checker{
		elementPool:  make(map[string]string),
		elementLines: make(map[string]int),
		poolIDs:      make(map[string]bool),
	}
	def := c.build(rd)
	def.Source = string(raw)

	if len(c.errs) > 0 {
		return nil, &AggregateError{Errors: c.errs}
	}
	return &Result{Definition: def, Warnings: c.warnings}, nil
}

type checker struct {
	errs     []error
	warnings []*ValidationError

	elementPool  map[string]string // element id -> owning pool id
	elementLines map[string]int
	poolIDs      map[string]bool
}

func (c *checker) fail(kind Kind, ref string, line int, format string, args ...any) {
	c.errs = append(c.errs, &ValidationError{
		Kind:    kind,
		Ref:     ref,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
	})
}

func (c *checker) build(rd *rawDefinition) *domain.WorkflowDefinition {
	def := &domain.WorkflowDefinition{
		Name:  rd.Name,
		Pools: make([]domain.Pool, 0, len(rd.Pools)),
	}

	// Element ids are global, so they are registered for every pool first and
	// flows are resolved afterwards.
	for i := range rd.Pools {
		def.Pools = append(def.Pools, c.buildPool(&rd.Pools[i], i))
	}
	for i := range rd.Pools {
		ref := poolRef(&rd.Pools[i], i)
		def.Pools[i].Flows = c.buildFlows(&rd.Pools[i], ref)
		c.checkGatewayDefaults(&def.Pools[i], ref)
	}
	return def
}

// poolRef names a pool in messages, falling back to its position when it has no id.
func poolRef(rp *rawPool, index int) string {
	if rp.ID == "" {
		return fmt.Sprintf("pools[%d]", index)
	}
	return rp.ID
}

func (c *checker) buildPool(rp *rawPool, index int) domain.Pool {
	ref := poolRef(rp, index)
	switch {
	case rp.ID == "":
		c.fail(KindMissingField, ref, rp.line, "pool %s has no id", ref)
	case c.poolIDs[rp.ID]:
		c.fail(KindDuplicateID, rp.ID, rp.line, "pool id %q is used more than once", rp.ID)
	default:
		c.poolIDs[rp.ID] = true
	}

	if len(rp.Lanes) == 0 {
		c.fail(KindEmptyPool, ref, rp.line, "pool %q must contain at least one lane", ref)
	}

	pool := domain.Pool{
		ID:    rp.ID,
		Name:  rp.Name,
		Lanes: make([]domain.Lane, 0, len(rp.Lanes)),
	}
	laneIDs := make(map[string]bool, len(rp.Lanes))
	for i := range rp.Lanes {
		rl := &rp.Lanes[i]
		switch {
		case rl.ID == "":
			c.fail(KindMissingField, ref, rl.line, "lane %d of pool %q has no id", i, ref)
		case laneIDs[rl.ID]:
			c.fail(KindDuplicateID, rl.ID, rl.line, "lane id %q is used more than once in pool %q", rl.ID, ref)
		default:
			laneIDs[rl.ID] = true
		}
		pool.Lanes = append(pool.Lanes, c.buildLane(rl, ref))
	}
	return pool
}

func (c *checker) buildLane(rl *rawLane, poolRef string) domain.Lane {
	lane := domain.Lane{
		ID:       rl.ID,
		Name:     rl.Name,
		Elements: make([]domain.Element, 0, len(rl.Elements)),
	}
	for i := range rl.Elements {
		re := &rl.Elements[i]
		switch {
		case re.ID == "":
			c.fail(KindMissingField, rl.ID, re.line, "element %d of lane %q has no id", i, rl.ID)
		case c.elementPool[re.ID] != "":
			c.fail(KindDuplicateID, re.ID, re.line, "element id %q is used more than once", re.ID)
		default:
			c.elementPool[re.ID] = poolRef
			c.elementLines[re.ID] = re.line
		}

		switch {
		case re.Type == "":
			c.fail(KindMissingField, re.ID, re.line, "element %q has no type", re.ID)
		case !domain.IsKnownElementType(re.Type):
			c.warnings = append(c.warnings, &ValidationError{
				Kind:    KindUnknownType,
				Ref:     re.ID,
				Message: fmt.Sprintf("element %q has unknown type %q", re.ID, re.Type),
				Line:    re.line,
			})
		}

		el := domain.Element{ID: re.ID, Type: re.Type, Name: re.Name}
		if len(re.Attributes) > 0 {
			el.Attributes = re.Attributes
		}
		lane.Elements = append(lane.Elements, el)
	}
	return lane
}

func (c *checker) buildFlows(rp *rawPool, poolRef string) []domain.Flow {
	if len(rp.Flows) == 0 {
		return nil
	}

	flows := make([]domain.Flow, 0, len(rp.Flows))
	flowIDs := make(map[string]bool, len(rp.Flows))
	for i := range rp.Flows {
		rf := &rp.Flows[i]
		ref := rf.ID
		switch {
		case rf.ID == "":
			ref = fmt.Sprintf("%s.flows[%d]", poolRef, i)
			c.fail(KindMissingField, ref, rf.line, "flow %s has no id", ref)
		case flowIDs[rf.ID]:
			c.fail(KindDuplicateID, rf.ID, rf.line, "flow id %q is used more than once in pool %q", rf.ID, poolRef)
		default:
			flowIDs[rf.ID] = true
		}

		c.resolve(ref, "source", rf.Source, poolRef, rf.line)
		c.resolve(ref, "target", rf.Target, poolRef, rf.line)

		flows = append(flows, domain.Flow{
			ID:        rf.ID,
			Name:      rf.Name,
			Source:    rf.Source,
			Target:    rf.Target,
			Condition: rf.Condition,
		})
	}
	return flows
}

func (c *checker) resolve(flowRef, field, elementID, poolRef string, line int) {
	if elementID == "" {
		c.fail(KindMissingField, flowRef, line, "flow %q has no %s", flowRef, field)
		return
	}
	owner, ok := c.elementPool[elementID]
	switch {
	case !ok:
		c.fail(KindDanglingReference, flowRef, line, "flow %q %s %q does not match any element", flowRef, field, elementID)
	case owner != poolRef:
		c.fail(KindDanglingReference, flowRef, line, "flow %q %s %q belongs to pool %q, not %q", flowRef, field, elementID, owner, poolRef)
	}
}

// checkGatewayDefaults verifies that a gateway's default flow exists in its
// pool and leaves that gateway.
func (c *checker) checkGatewayDefaults(pool *domain.Pool, poolRef string) {
	flowSource := make(map[string]string, len(pool.Flows))
	for _, f := range pool.Flows {
		if f.ID != "" {
			flowSource[f.ID] = f.Source
		}
	}
	for _, lane := range pool.Lanes {
		for _, el := range lane.Elements {
			if !domain.IsGateway(el.Type) || len(el.Attributes) == 0 {
				continue
			}
			line := c.elementLines[el.ID]
			var attrs domain.GatewayAttributes
			if err := el.DecodeAttributes(&attrs); err != nil {
				c.fail(KindInvalidAttribute, el.ID, line, "gateway %q has invalid attributes: %v", el.ID, err)
				continue
			}
			if attrs.DefaultFlow == "" {
				continue
			}
			source, ok := flowSource[attrs.DefaultFlow]
			switch {
			case !ok:
				c.fail(KindDanglingReference, el.ID, line, "gateway %q default flow %q does not match any flow in pool %q", el.ID, attrs.DefaultFlow, poolRef)
			case source != el.ID:
				c.fail(KindDanglingReference, el.ID, line, "gateway %q default flow %q does not leave the gateway", el.ID, attrs.DefaultFlow)
			}
		}
	}
}
