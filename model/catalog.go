package model

import "sort"

// Category groups built-in functions.
type Category string

const (
	Math    Category = "math"
	Strings Category = "string"
	Lists   Category = "list"
	Dates   Category = "date"
	Misc    Category = "misc"
)

var catalog = map[Category][]string{
	Math: {
		"pi", "e", "floor", "ceil", "abs", "mod", "sqrt", "cbrt", "pow", "log10", "log2", "ln", "exp",
		"unaryMinus", "unaryPlus", "max", "min", "round", "add", "subtract", "multiply", "divide",
		"sign", "median", "mean", "sum", "toNumber",
	},
	Strings: {
		"concat", "join", "substring", "length", "format", "contains", "replace", "replaceAll",
		"test", "empty", "match", "repeat", "link", "style", "unstyle", "parseDate", "split",
		"padStart", "padEnd", "lower", "upper", "trim",
	},
	Lists: {
		"map", "filter", "find", "findIndex", "some", "every", "count", "at", "first", "last",
		"slice", "reverse", "sort", "unique", "includes", "flat",
	},
	Dates: {
		"dateStart", "dateEnd", "now", "today", "timestamp", "fromTimestamp", "dateAdd",
		"dateSubtract", "dateBetween", "dateRange", "formatDate", "minute", "hour", "day", "date",
		"week", "month", "year",
	},
	Misc: {
		"id", "and", "or", "not", "equal", "unequal", "larger", "largerEq", "smaller", "smallerEq",
		"name", "email", "let", "lets", "ifs",
	},
}

var builtins = func() map[string]Category {
	m := make(map[string]Category)
	for cat, names := range catalog {
		for _, n := range names {
			m[n] = cat
		}
	}
	return m
}()

// constants are built-ins written without a call in the flat grammar.
var constants = map[string]bool{"pi": true, "e": true}

// callbacks are list functions whose last argument is a lambda over
// index and current.
var callbacks = map[string]bool{
	"map": true, "filter": true, "find": true, "findIndex": true,
	"some": true, "every": true, "count": true,
}

// IsBuiltinFunc reports whether name is a catalog function.
func IsBuiltinFunc(name string) bool {
	_, ok := builtins[name]
	return ok
}

// CategoryOf returns the category of a built-in function.
func CategoryOf(name string) (Category, bool) {
	c, ok := builtins[name]
	return c, ok
}

// IsConstant reports whether name is a built-in constant such as pi.
func IsConstant(name string) bool { return constants[name] }

// TakesCallback reports whether name is a list function taking a lambda.
func TakesCallback(name string) bool { return callbacks[name] }

// BuiltinNames returns every catalog function name, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
