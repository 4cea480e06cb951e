// Package blocks implements the Built-in Block Library: control, data,
// operators, and events categories. Grounded directly on
// original_source/engine/blocks/default/{control,data,operators,events}.py
// — the per-block contract there is the concrete specification for what
// each block type does; this package is its idiomatic Go translation
// against the execctx.Context/Args facade instead of Python kwargs.
//
// Eagerness convention: every block's Next/Recurse/substack call
// defaults to ctx.Eager — the eagerness this invocation itself is
// running under — so a straight-line chain of blocks inherits whatever
// eagerness its first block was invoked with, exactly as the original's
// create_callable_block(block, is_eager_call) binds next()/recurse()/
// substack()'s default argument to the call's own is_eager. One
// deliberate divergence: control_forever, control_wait_until and
// control_repeat_until always force their looping ctx.Recurse(false)
// regardless of ctx.Eager, instead of inheriting it like the original
// does. Under is_eager=True (i.e. from Complete), inheriting eagerness
// would recurse the loop body on the raw Go call stack with no
// opportunity for the scheduler's iteration-limit check to ever run —
// it only runs between dequeues — turning a runaway loop into a stack
// overflow instead of a clean IterationLimitExceeded. See DESIGN.md.
package blocks

import (
	"time"

	"github.com/blockrt/blockrt/internal/execctx"
	"github.com/blockrt/blockrt/internal/registry"
	"github.com/blockrt/blockrt/internal/value"
)

func controlWait(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	duration, err := args.Number("duration")
	if err != nil {
		return value.Nil, err
	}
	time.Sleep(time.Duration(duration * float64(time.Second)))
	return ctx.Next(ctx.Eager)
}

func controlRepeat(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	times, err := args.Number("times")
	if err != nil {
		return value.Nil, err
	}
	substack := args.Statement("substack")
	for i := 0; i < int(times); i++ {
		if _, err := substack(ctx.Eager); err != nil {
			return value.Nil, err
		}
	}
	return ctx.Next(ctx.Eager)
}

func controlForever(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	substack := args.Statement("substack")
	if _, err := substack(ctx.Eager); err != nil {
		return value.Nil, err
	}
	// Forced non-eager: see the package-level divergence note above.
	return ctx.Recurse(false)
}

func controlIf(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	cond, err := args.Bool("condition")
	if err != nil {
		return value.Nil, err
	}
	if cond {
		if _, err := args.Statement("substack")(ctx.Eager); err != nil {
			return value.Nil, err
		}
	}
	return ctx.Next(ctx.Eager)
}

func controlIfElse(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	cond, err := args.Bool("condition")
	if err != nil {
		return value.Nil, err
	}
	if cond {
		if _, err := args.Statement("substack")(ctx.Eager); err != nil {
			return value.Nil, err
		}
	} else {
		if _, err := args.Statement("substack2")(ctx.Eager); err != nil {
			return value.Nil, err
		}
	}
	return ctx.Next(ctx.Eager)
}

func controlWaitUntil(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	cond, err := args.Bool("condition")
	if err != nil {
		return value.Nil, err
	}
	if !cond {
		// Forced non-eager: see the package-level divergence note above.
		return ctx.Recurse(false)
	}
	return ctx.Next(ctx.Eager)
}

// controlRepeatUntil loops while condition is true, stopping once it
// turns false — matching the original's control_repeat_until (if
// condition: substack(); recurse() else: next()).
func controlRepeatUntil(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	cond, err := args.Bool("condition")
	if err != nil {
		return value.Nil, err
	}
	if cond {
		if _, err := args.Statement("substack")(ctx.Eager); err != nil {
			return value.Nil, err
		}
		// Forced non-eager: see the package-level divergence note above.
		return ctx.Recurse(false)
	}
	return ctx.Next(ctx.Eager)
}

func controlStop(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	return value.Nil, nil
}

// RegisterControl installs the control-category blocks.
func RegisterControl(r *registry.Registry) error {
	defs := []registry.BlockDefinition{
		{Type: "control_wait", Category: "control", IsPredefined: true, Executor: controlWait,
			Arguments: []registry.Argument{{Name: "duration", Kind: registry.ArgInputValue}}},
		{Type: "control_repeat", Category: "control", IsPredefined: true, Executor: controlRepeat,
			Arguments: []registry.Argument{{Name: "times", Kind: registry.ArgInputValue}, {Name: "substack", Kind: registry.ArgInputStatement}}},
		{Type: "control_forever", Category: "control", IsPredefined: true, Executor: controlForever,
			Arguments: []registry.Argument{{Name: "substack", Kind: registry.ArgInputStatement}}},
		{Type: "control_if", Category: "control", IsPredefined: true, Executor: controlIf,
			Arguments: []registry.Argument{{Name: "condition", Kind: registry.ArgInputValue}, {Name: "substack", Kind: registry.ArgInputStatement}}},
		{Type: "control_if_else", Category: "control", IsPredefined: true, Executor: controlIfElse,
			Arguments: []registry.Argument{
				{Name: "condition", Kind: registry.ArgInputValue},
				{Name: "substack", Kind: registry.ArgInputStatement},
				{Name: "substack2", Kind: registry.ArgInputStatement},
			}},
		{Type: "control_wait_until", Category: "control", IsPredefined: true, Executor: controlWaitUntil,
			Arguments: []registry.Argument{{Name: "condition", Kind: registry.ArgInputValue}}},
		{Type: "control_repeat_until", Category: "control", IsPredefined: true, Executor: controlRepeatUntil,
			Arguments: []registry.Argument{{Name: "condition", Kind: registry.ArgInputValue}, {Name: "substack", Kind: registry.ArgInputStatement}}},
		{Type: "control_stop", Category: "control", IsPredefined: true, Executor: controlStop},
	}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}
