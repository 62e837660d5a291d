package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/tharunK03/RealEstate/internal/domain"
)

// Compile-time check: Authority implements domain.TransitionAuthority.
var _ domain.TransitionAuthority = (*Authority)(nil)

// events converts domain.Transitions into looplab/fsm EventDesc format,
// consolidating transitions that share an action and destination.
var events = buildEvents()

// roles indexes the role required by each (action, source) edge.
var roles = buildRoles()

// callbacks registers checkRole as the before_<action> hook of every action.
var callbacks = buildCallbacks()

type edge struct {
	action string
	src    string
}

func buildEvents() []loopfsm.EventDesc {
	type key struct {
		action string
		dst    string
	}
	grouped := make(map[key][]string)
	order := make([]key, 0)

	for _, t := range domain.Transitions {
		k := key{action: string(t.Action), dst: string(t.Dst)}
		if _, exists := grouped[k]; !exists {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], string(t.Src))
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, k := range order {
		out = append(out, loopfsm.EventDesc{
			Name: k.action,
			Src:  grouped[k],
			Dst:  k.dst,
		})
	}
	return out
}

func buildCallbacks() loopfsm.Callbacks {
	out := make(loopfsm.Callbacks, len(events))
	for _, e := range events {
		out["before_"+e.Name] = checkRole
	}
	return out
}

func buildRoles() map[edge]domain.Role {
	out := make(map[edge]domain.Role, len(domain.Transitions))
	for _, t := range domain.Transitions {
		out[edge{action: string(t.Action), src: string(t.Src)}] = t.Role
	}
	return out
}

// Authority implements domain.TransitionAuthority using looplab/fsm.
// looplab/fsm is stateful, so each Decide call builds a short-lived machine
// positioned at the listing's current status. The role check runs in the
// machine's before_<action> callbacks, which cancel the event on a mismatch.
type Authority struct{}

// New creates a new FSM-backed transition authority.
func New() *Authority {
	return &Authority{}
}

// Decide returns the status a listing in current moves to when role applies
// action. It returns *domain.ForbiddenError when the role is not allowed and
// *domain.TransitionError when the action has no edge from current.
func (a *Authority) Decide(ctx context.Context, current domain.Status, action domain.Action, role domain.Role) (domain.Status, error) {
	if !domain.KnownAction(action) {
		return "", &domain.TransitionError{Action: action, Current: current}
	}

	// Roles that can never perform the action are refused before the
	// listing's status is consulted.
	if !domain.Permits(role, action) {
		return "", &domain.ForbiddenError{Role: role, Action: string(action)}
	}

	machine := loopfsm.NewFSM(string(current), events, callbacks)

	if err := machine.Event(ctx, string(action), role); err != nil {
		var canceled loopfsm.CanceledError
		if errors.As(err, &canceled) && canceled.Err != nil {
			return "", canceled.Err
		}

		var invalidEvent loopfsm.InvalidEventError
		var noTransition loopfsm.NoTransitionError
		var unknownEvent loopfsm.UnknownEventError
		if errors.As(err, &invalidEvent) || errors.As(err, &noTransition) || errors.As(err, &unknownEvent) {
			return "", &domain.TransitionError{
				Action:  action,
				Current: current,
			}
		}
		return "", err
	}

	return domain.Status(machine.Current()), nil
}

func checkRole(_ context.Context, e *loopfsm.Event) {
	var role domain.Role
	if len(e.Args) > 0 {
		role, _ = e.Args[0].(domain.Role)
	}

	if required := roles[edge{action: e.Event, src: e.Src}]; required != role {
		e.Cancel(&domain.ForbiddenError{Role: role, Action: e.Event})
	}
}
