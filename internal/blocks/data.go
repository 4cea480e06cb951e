package blocks

import (
	"fmt"

	"github.com/blockrt/blockrt/internal/execctx"
	"github.com/blockrt/blockrt/internal/registry"
	"github.com/blockrt/blockrt/internal/value"
)

// listIndex converts the block XML's 1-based, editor-facing list index
// to this package's 0-based internal convention. The boundary is here,
// and only here, per spec's list-index invariant.
func listIndex(n float64) int { return int(n) - 1 }

func getList(ctx *execctx.Context, args execctx.Args, name string) []value.Value {
	v := ctx.GetVariable(args.VarRef(name))
	return value.ToList(v)
}

func dataSetVariableTo(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	ctx.SetVariable(args.VarRef("variable"), args.Value("value"))
	return ctx.Next(ctx.Eager)
}

func dataChangeVariableBy(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	ref := args.VarRef("variable")
	current, err := value.ToNumber(ctx.GetVariable(ref))
	if err != nil {
		return value.Nil, err
	}
	delta, err := args.Number("value")
	if err != nil {
		return value.Nil, err
	}
	ctx.SetVariable(ref, value.Number(current+delta))
	return ctx.Next(ctx.Eager)
}

func dataVariable(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	return ctx.GetVariable(args.VarRef("variable")), nil
}

func dataShowVariable(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	return ctx.Next(ctx.Eager)
}

func dataHideVariable(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	return ctx.Next(ctx.Eager)
}

func dataAddToList(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	items := getList(ctx, args, "param_list")
	items = append(items, args.Value("item"))
	ctx.SetVariable(args.VarRef("param_list"), value.List(items))
	return ctx.Next(ctx.Eager)
}

func dataInsertAtList(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	items := getList(ctx, args, "param_list")
	idxF, err := args.Number("index")
	if err != nil {
		return value.Nil, err
	}
	idx := listIndex(idxF)
	if idx < 0 || idx > len(items) {
		return value.Nil, fmt.Errorf("list index %d out of range", idx+1)
	}
	items = append(items[:idx], append([]value.Value{args.Value("item")}, items[idx:]...)...)
	ctx.SetVariable(args.VarRef("param_list"), value.List(items))
	return ctx.Next(ctx.Eager)
}

func dataDeleteOfList(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	items := getList(ctx, args, "param_list")
	idxF, err := args.Number("index")
	if err != nil {
		return value.Nil, err
	}
	idx := listIndex(idxF)
	if idx < 0 || idx >= len(items) {
		return value.Nil, fmt.Errorf("list index %d out of range", idx+1)
	}
	items = append(items[:idx], items[idx+1:]...)
	ctx.SetVariable(args.VarRef("param_list"), value.List(items))
	return ctx.Next(ctx.Eager)
}

func dataReplaceItemOfList(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	items := getList(ctx, args, "param_list")
	idxF, err := args.Number("index")
	if err != nil {
		return value.Nil, err
	}
	idx := listIndex(idxF)
	if idx < 0 || idx >= len(items) {
		return value.Nil, fmt.Errorf("list index %d out of range", idx+1)
	}
	items[idx] = args.Value("item")
	ctx.SetVariable(args.VarRef("param_list"), value.List(items))
	return ctx.Next(ctx.Eager)
}

func dataItemOfList(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	items := getList(ctx, args, "param_list")
	idxF, err := args.Number("index")
	if err != nil {
		return value.Nil, err
	}
	idx := listIndex(idxF)
	if idx < 0 || idx >= len(items) {
		return value.Nil, fmt.Errorf("list index %d out of range", idx+1)
	}
	return items[idx], nil
}

func dataItemNumOfList(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	items := getList(ctx, args, "param_list")
	item := args.Value("item")
	for i, el := range items {
		if el.Equal(item) {
			return value.Number(float64(i + 1)), nil
		}
	}
	return value.Number(-1), nil
}

func dataLengthOfList(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	return value.Number(float64(len(getList(ctx, args, "param_list")))), nil
}

func dataListContents(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	return value.List(getList(ctx, args, "param_list")), nil
}

func dataListContainsItem(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	item := args.Value("item")
	for _, el := range getList(ctx, args, "param_list") {
		if el.Equal(item) {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

func dataDeleteAllOfList(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	ctx.SetVariable(args.VarRef("param_list"), value.List(nil))
	return ctx.Next(ctx.Eager)
}

func dataShowList(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	return ctx.Next(ctx.Eager)
}

func dataHideList(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	return ctx.Next(ctx.Eager)
}

// RegisterData installs the data-category blocks.
func RegisterData(r *registry.Registry) error {
	variableArg := registry.Argument{Name: "variable", Kind: registry.ArgFieldVariable}
	listArg := registry.Argument{Name: "param_list", Kind: registry.ArgFieldVariable, VariableTypes: []string{"list"}}
	valueArg := func(name string) registry.Argument { return registry.Argument{Name: name, Kind: registry.ArgInputValue} }

	defs := []registry.BlockDefinition{
		{Type: "data_setvariableto", Category: "data", IsPredefined: true, Executor: dataSetVariableTo,
			Arguments: []registry.Argument{variableArg, valueArg("value")}},
		{Type: "data_changevariableby", Category: "data", IsPredefined: true, Executor: dataChangeVariableBy,
			Arguments: []registry.Argument{variableArg, valueArg("value")}},
		{Type: "data_variable", Category: "data", IsPredefined: true, Executor: dataVariable,
			Arguments: []registry.Argument{variableArg}},
		{Type: "data_showvariable", Category: "data", IsPredefined: true, Executor: dataShowVariable,
			Arguments: []registry.Argument{variableArg}},
		{Type: "data_hidevariable", Category: "data", IsPredefined: true, Executor: dataHideVariable,
			Arguments: []registry.Argument{variableArg}},
		{Type: "data_addtolist", Category: "data", IsPredefined: true, Executor: dataAddToList,
			Arguments: []registry.Argument{listArg, valueArg("item")}},
		{Type: "data_insertatlist", Category: "data", IsPredefined: true, Executor: dataInsertAtList,
			Arguments: []registry.Argument{listArg, valueArg("item"), valueArg("index")}},
		{Type: "data_deleteoflist", Category: "data", IsPredefined: true, Executor: dataDeleteOfList,
			Arguments: []registry.Argument{listArg, valueArg("index")}},
		{Type: "data_replaceitemoflist", Category: "data", IsPredefined: true, Executor: dataReplaceItemOfList,
			Arguments: []registry.Argument{listArg, valueArg("index"), valueArg("item")}},
		{Type: "data_itemoflist", Category: "data", IsPredefined: true, Executor: dataItemOfList,
			Arguments: []registry.Argument{listArg, valueArg("index")}},
		{Type: "data_itemnumoflist", Category: "data", IsPredefined: true, Executor: dataItemNumOfList,
			Arguments: []registry.Argument{listArg, valueArg("item")}},
		{Type: "data_lengthoflist", Category: "data", IsPredefined: true, Executor: dataLengthOfList,
			Arguments: []registry.Argument{listArg}},
		{Type: "data_listcontents", Category: "data", IsPredefined: true, Executor: dataListContents,
			Arguments: []registry.Argument{listArg}},
		{Type: "data_listcontainsitem", Category: "data", IsPredefined: true, Executor: dataListContainsItem,
			Arguments: []registry.Argument{listArg, valueArg("item")}},
		{Type: "data_deletealloflist", Category: "data", IsPredefined: true, Executor: dataDeleteAllOfList,
			Arguments: []registry.Argument{listArg}},
		{Type: "data_showlist", Category: "data", IsPredefined: true, Executor: dataShowList,
			Arguments: []registry.Argument{listArg}},
		{Type: "data_hidelist", Category: "data", IsPredefined: true, Executor: dataHideList,
			Arguments: []registry.Argument{listArg}},
	}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}
