package blocks

import (
	"math"
	"math/rand"
	"strings"

	"github.com/blockrt/blockrt/internal/execctx"
	"github.com/blockrt/blockrt/internal/registry"
	"github.com/blockrt/blockrt/internal/value"
)

func numPair(args execctx.Args) (float64, float64, error) {
	a, err := args.Number("operand1")
	if err != nil {
		return 0, 0, err
	}
	b, err := args.Number("operand2")
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func operatorAdd(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	a, b, err := numPair(args)
	if err != nil {
		return value.Nil, err
	}
	return value.Number(a + b), nil
}

func operatorSubtract(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	a, b, err := numPair(args)
	if err != nil {
		return value.Nil, err
	}
	return value.Number(a - b), nil
}

func operatorMultiply(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	a, b, err := numPair(args)
	if err != nil {
		return value.Nil, err
	}
	return value.Number(a * b), nil
}

func operatorDivide(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	a, b, err := numPair(args)
	if err != nil {
		return value.Nil, err
	}
	return value.Number(a / b), nil
}

func operatorMod(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	a, b, err := numPair(args)
	if err != nil {
		return value.Nil, err
	}
	return value.Number(math.Mod(a, b)), nil
}

func operatorRandom(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	from, err := args.Number("from")
	if err != nil {
		return value.Nil, err
	}
	to, err := args.Number("to")
	if err != nil {
		return value.Nil, err
	}
	lo, hi := int(from), int(to)
	if hi <= lo {
		return value.Number(float64(lo)), nil
	}
	return value.Number(float64(lo + rand.Intn(hi-lo))), nil
}

func operatorLt(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	a, b, err := numPair(args)
	if err != nil {
		return value.Nil, err
	}
	return value.Bool(a < b), nil
}

func operatorEquals(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	a, b, err := numPair(args)
	if err != nil {
		return value.Nil, err
	}
	return value.Bool(a == b), nil
}

func operatorGt(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	a, b, err := numPair(args)
	if err != nil {
		return value.Nil, err
	}
	return value.Bool(a > b), nil
}

func operatorRound(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	v, err := args.Number("value")
	if err != nil {
		return value.Nil, err
	}
	return value.Number(math.Round(v)), nil
}

func operatorAnd(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	a, err := args.Bool("operand1")
	if err != nil {
		return value.Nil, err
	}
	b, err := args.Bool("operand2")
	if err != nil {
		return value.Nil, err
	}
	return value.Bool(a && b), nil
}

func operatorOr(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	a, err := args.Bool("operand1")
	if err != nil {
		return value.Nil, err
	}
	b, err := args.Bool("operand2")
	if err != nil {
		return value.Nil, err
	}
	return value.Bool(a || b), nil
}

func operatorNot(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	a, err := args.Bool("operand1")
	if err != nil {
		return value.Nil, err
	}
	return value.Bool(!a), nil
}

func operatorJoin(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	a, err := args.String("operand1")
	if err != nil {
		return value.Nil, err
	}
	b, err := args.String("operand2")
	if err != nil {
		return value.Nil, err
	}
	return value.String(a + b), nil
}

func operatorLetterOf(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	idxF, err := args.Number("letter")
	if err != nil {
		return value.Nil, err
	}
	s, err := args.String("string")
	if err != nil {
		return value.Nil, err
	}
	runes := []rune(s)
	idx := listIndex(idxF)
	if idx < 0 || idx >= len(runes) {
		return value.String(""), nil
	}
	return value.String(string(runes[idx])), nil
}

func operatorLength(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	s, err := args.String("value")
	if err != nil {
		return value.Nil, err
	}
	return value.Number(float64(len([]rune(s)))), nil
}

func operatorContains(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	s1, err := args.String("string1")
	if err != nil {
		return value.Nil, err
	}
	s2, err := args.String("string2")
	if err != nil {
		return value.Nil, err
	}
	return value.Bool(strings.Contains(s1, s2)), nil
}

func operatorMathop(ctx *execctx.Context, args execctx.Args) (value.Value, error) {
	op, err := args.String("operator")
	if err != nil {
		return value.Nil, err
	}
	num, err := args.Number("num")
	if err != nil {
		return value.Nil, err
	}
	switch op {
	case "abs":
		return value.Number(math.Abs(num)), nil
	case "floor":
		return value.Number(math.Floor(num)), nil
	case "ceiling":
		return value.Number(math.Ceil(num)), nil
	case "sqrt":
		return value.Number(math.Sqrt(num)), nil
	case "sin":
		return value.Number(math.Sin(num)), nil
	case "cos":
		return value.Number(math.Cos(num)), nil
	case "tan":
		return value.Number(math.Tan(num)), nil
	case "asin":
		return value.Number(math.Asin(num)), nil
	case "acos":
		return value.Number(math.Acos(num)), nil
	case "atan":
		return value.Number(math.Atan(num)), nil
	case "ln":
		return value.Number(math.Log(num)), nil
	case "log":
		return value.Number(math.Log10(num)), nil
	case "e ^":
		return value.Number(math.Exp(num)), nil
	case "10 ^":
		return value.Number(math.Pow(10, num)), nil
	default:
		return value.Nil, nil
	}
}

// RegisterOperators installs the operators-category blocks.
func RegisterOperators(r *registry.Registry) error {
	v := func(name string) registry.Argument { return registry.Argument{Name: name, Kind: registry.ArgInputValue} }
	pair := []registry.Argument{v("operand1"), v("operand2")}

	defs := []registry.BlockDefinition{
		{Type: "operator_add", Category: "operators", IsPredefined: true, Executor: operatorAdd, Arguments: pair},
		{Type: "operator_subtract", Category: "operators", IsPredefined: true, Executor: operatorSubtract, Arguments: pair},
		{Type: "operator_multiply", Category: "operators", IsPredefined: true, Executor: operatorMultiply, Arguments: pair},
		{Type: "operator_divide", Category: "operators", IsPredefined: true, Executor: operatorDivide, Arguments: pair},
		{Type: "operator_mod", Category: "operators", IsPredefined: true, Executor: operatorMod, Arguments: pair},
		{Type: "operator_random", Category: "operators", IsPredefined: true, Executor: operatorRandom, Arguments: []registry.Argument{v("from"), v("to")}},
		{Type: "operator_lt", Category: "operators", IsPredefined: true, Executor: operatorLt, Arguments: pair},
		{Type: "operator_equals", Category: "operators", IsPredefined: true, Executor: operatorEquals, Arguments: pair},
		{Type: "operator_gt", Category: "operators", IsPredefined: true, Executor: operatorGt, Arguments: pair},
		{Type: "operator_round", Category: "operators", IsPredefined: true, Executor: operatorRound, Arguments: []registry.Argument{v("value")}},
		{Type: "operator_and", Category: "operators", IsPredefined: true, Executor: operatorAnd, Arguments: pair},
		{Type: "operator_or", Category: "operators", IsPredefined: true, Executor: operatorOr, Arguments: pair},
		{Type: "operator_not", Category: "operators", IsPredefined: true, Executor: operatorNot, Arguments: []registry.Argument{v("operand1")}},
		{Type: "operator_join", Category: "operators", IsPredefined: true, Executor: operatorJoin, Arguments: pair},
		{Type: "operator_letter_of", Category: "operators", IsPredefined: true, Executor: operatorLetterOf, Arguments: []registry.Argument{v("letter"), v("string")}},
		{Type: "operator_length", Category: "operators", IsPredefined: true, Executor: operatorLength, Arguments: []registry.Argument{v("value")}},
		{Type: "operator_contains", Category: "operators", IsPredefined: true, Executor: operatorContains, Arguments: []registry.Argument{v("string1"), v("string2")}},
		{Type: "operator_mathop", Category: "operators", IsPredefined: true, Executor: operatorMathop,
			Arguments: []registry.Argument{
				{Name: "operator", Kind: registry.ArgFieldDropdown, Options: [][2]string{
					{"abs", "abs"}, {"floor", "floor"}, {"ceiling", "ceiling"}, {"sqrt", "sqrt"},
					{"sin", "sin"}, {"cos", "cos"}, {"tan", "tan"}, {"asin", "asin"}, {"acos", "acos"},
					{"atan", "atan"}, {"ln", "ln"}, {"log", "log"}, {"e ^", "e ^"}, {"10 ^", "10 ^"},
				}},
				v("num"),
			}},
	}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}
