package blocks

import (
	"strings"

	"github.com/blockrt/blockrt/internal/execctx"
	"github.com/blockrt/blockrt/internal/registry"
	"github.com/blockrt/blockrt/internal/value"
)

func eventWhenFlagClicked(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	eager := ctx.Eager
	ctx.Listen(func(topic, message string) (interface{}, error) {
		if topic == "executor" && message == "start" {
			return ctx.Next(eager)
		}
		return nil, nil
	})
	return value.Nil, nil
}

func eventWhenKeyPressed(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	keyOption, err := args.String("key_option")
	if err != nil {
		return value.Nil, err
	}
	eager := ctx.Eager
	ctx.Listen(func(topic, message string) (interface{}, error) {
		listenKey := strings.ReplaceAll(keyOption, " arrow", "")
		if topic == "keyboard" && (keyOption == "any" || message == listenKey) {
			return ctx.Next(eager)
		}
		return nil, nil
	})
	return value.Nil, nil
}

func eventWhenBroadcastReceived(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	broadcastValue, err := value.ToString(ctx.GetVariable(args.VarRef("broadcast_option")))
	if err != nil {
		return value.Nil, err
	}
	eager := ctx.Eager
	ctx.Listen(func(topic, message string) (interface{}, error) {
		if topic == "broadcast" && message == broadcastValue {
			return ctx.Next(eager)
		}
		return nil, nil
	})
	return value.Nil, nil
}

func eventBroadcast(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	broadcastValue, err := value.ToString(ctx.GetVariable(args.VarRef("broadcast_input")))
	if err != nil {
		return value.Nil, err
	}
	ctx.Broadcast("broadcast", broadcastValue)
	return ctx.Next(ctx.Eager)
}

// RegisterEvents installs the events-category blocks.
func RegisterEvents(r *registry.Registry) error {
	defs := []registry.BlockDefinition{
		{Type: "event_whenflagclicked", Category: "events", IsPredefined: true, CanRun: true, Executor: eventWhenFlagClicked},
		{Type: "event_whenkeypressed", Category: "events", IsPredefined: true, CanRun: true, Executor: eventWhenKeyPressed,
			Arguments: []registry.Argument{{Name: "key_option", Kind: registry.ArgFieldDropdown}}},
		{Type: "event_whenbroadcastreceived", Category: "events", IsPredefined: true, CanRun: true, Executor: eventWhenBroadcastReceived,
			Arguments: []registry.Argument{{Name: "broadcast_option", Kind: registry.ArgFieldVariable, VariableTypes: []string{"broadcast_msg"}}}},
		{Type: "event_broadcast", Category: "events", IsPredefined: true, Executor: eventBroadcast,
			Arguments: []registry.Argument{{Name: "broadcast_input", Kind: registry.ArgFieldVariable, VariableTypes: []string{"broadcast_msg"}}}},
	}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}
