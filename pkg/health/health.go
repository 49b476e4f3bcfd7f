// Package health implements the compositional health rollup: every
// component exposes a name and an async probe, and probes compose via
// Singular/Additive/Composite/Intrinsic nodes into a single Status along
// the Ok <= Degraded <= Down lattice.
package health

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Reporter describes a component that can be health checked.
type Reporter interface {
	Name() string
	HealthCheck(ctx context.Context) ComponentHealth
}

// Report pairs a component's name with its health at the moment of check.
type Report struct {
	Name   string
	Health ComponentHealth
}

// OverallStatus recursively folds the report's ComponentHealth into a
// single Status.
func (r Report) OverallStatus() Status { return r.Health.recursiveStatus() }

// Reported runs a Reporter's probe and wraps the result in a Report.
func Reported(ctx context.Context, r Reporter) Report {
	return Report{Name: r.Name(), Health: r.HealthCheck(ctx)}
}

type componentHealthKind int

const (
	kindComposite componentHealthKind = iota
	kindAdditive
	kindSingular
	kindIntrinsicallyUp
	kindIntrinsicallyDown
)

// ComponentHealth is one of Composite, Additive, Singular,
// IntrinsicallyUp, or IntrinsicallyDown.
type ComponentHealth struct {
	kind      componentHealthKind
	composite CompositeHealth
	additive  AdditiveHealth
	singular  SingularHealth
}

// IntrinsicallyUp reports a component that cannot statefully fail.
func IntrinsicallyUp() ComponentHealth { return ComponentHealth{kind: kindIntrinsicallyUp} }

// IntrinsicallyDown reports a component that is permanently unavailable.
func IntrinsicallyDown() ComponentHealth { return ComponentHealth{kind: kindIntrinsicallyDown} }

// Singular wraps a health status tied to a single dependency.
func Singular(status Status) ComponentHealth {
	return ComponentHealth{kind: kindSingular, singular: SingularHealth{Status: status}}
}

// Additive wraps the reports of this component's children; the rollup is
// the merge of all of them.
func Additive(children ...Report) ComponentHealth {
	return ComponentHealth{kind: kindAdditive, additive: AdditiveHealth{Components: children}}
}

// AdditiveFromContext runs every Reporter concurrently and folds the
// results into an Additive ComponentHealth. errgroup bounds goroutine
// lifetime against ctx; it does not serialize the probes against each
// other.
func AdditiveFromContext(ctx context.Context, reporters ...Reporter) ComponentHealth {
	reports := make([]Report, len(reporters))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range reporters {
		i, r := i, r
		g.Go(func() error {
			reports[i] = Reported(gctx, r)
			return nil
		})
	}
	_ = g.Wait()
	return Additive(reports...)
}

// Composite wraps both a set of self-checks and the additive rollup of
// this component's children.
func Composite(selfChecks AdditiveHealth, children ...Report) ComponentHealth {
	return ComponentHealth{
		kind: kindComposite,
		composite: CompositeHealth{
			CompositeStatuses: selfChecks.Components,
			Additive:          AdditiveHealth{Components: children},
		},
	}
}

func (c ComponentHealth) recursiveStatus() Status {
	switch c.kind {
	case kindComposite:
		status := StatusOk()
		for _, r := range c.composite.CompositeStatuses {
			status = status.Merge(r.OverallStatus())
		}
		return status.Merge(c.composite.Additive.recursiveStatus())
	case kindAdditive:
		return c.additive.recursiveStatus()
	case kindSingular:
		return c.singular.Status
	case kindIntrinsicallyUp:
		return StatusOk()
	case kindIntrinsicallyDown:
		return Down()
	default:
		return StatusOk()
	}
}

func (a AdditiveHealth) recursiveStatus() Status {
	status := StatusOk()
	for _, r := range a.Components {
		status = status.Merge(r.OverallStatus())
	}
	return status
}

// CompositeHealth is the health of a component described as itself plus
// its constituents.
type CompositeHealth struct {
	CompositeStatuses []Report
	Additive          AdditiveHealth
}

// AdditiveHealth is the health of a component described purely as the sum
// of its constituents.
type AdditiveHealth struct {
	Components []Report
}

// Add appends a child report and returns the updated AdditiveHealth.
func (a AdditiveHealth) Add(r Report) AdditiveHealth {
	a.Components = append(a.Components, r)
	return a
}

// SingularHealth is the health of a component fully tied to one status.
type SingularHealth struct {
	Status Status
}
