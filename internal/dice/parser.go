package dice

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Expression is a parsed roll formula ready to evaluate.
//
// Invariant after a successful Parse: Count >= 1, Sides >= 2, and
// 0 <= KeepHighest < Count (0 means keep all).
type Expression struct {
	Raw         string
	Count       int // number of dice
	Sides       int // faces per die
	Modifier    int // flat modifier (may be negative)
	KeepHighest int // keep only the N highest dice, e.g. "2d20kh1"
}

// Supported forms: "d20", "2d6", "2d6+3", "4d8-2", "4d6kh3",
// "2d20kh1+5". Case-insensitive.
var formulaRe = regexp.MustCompile(`^(\d*)d(\d+)(?:kh(\d+))?([+-]\d+)?$`)

// Parse parses a roll formula.
//
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(formula string) (Expression, error) {
	raw := formula
	m := formulaRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(formula)))
	if m == nil {
		return Expression{}, fmt.Errorf("dice: %q is not a roll formula (try \"d20\" or \"2d6+3\")", raw)
	}

	count := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q", raw)
		}
		count = n
	}

	sides, err := strconv.Atoi(m[2])
	if err != nil || sides < 2 {
		return Expression{}, fmt.Errorf("dice: die sides in %q must be >= 2", raw)
	}

	keep := 0
	if m[3] != "" {
		keep, err = strconv.Atoi(m[3])
		if err != nil || keep < 1 || keep >= count {
			return Expression{}, fmt.Errorf("dice: kh value in %q must be >= 1 and < the die count", raw)
		}
	}

	modifier := 0
	if m[4] != "" {
		modifier, err = strconv.Atoi(m[4])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q", raw)
		}
	}

	return Expression{Raw: raw, Count: count, Sides: sides, Modifier: modifier, KeepHighest: keep}, nil
}

// Roll evaluates expr using src.
//
// Precondition: expr comes from Parse; src is non-nil.
// Postcondition: len(result.Dice) == expr.Count, or expr.KeepHighest
// when that is set; result.Total() == sum(result.Dice) + expr.Modifier.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}

	kept := rolled
	if expr.KeepHighest > 0 {
		sorted := append([]int(nil), rolled...)
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		kept = sorted[:expr.KeepHighest]
	}

	return RollResult{Expression: expr.Raw, Dice: kept, Modifier: expr.Modifier}
}

// RollExpr parses and rolls formula in one call.
func RollExpr(formula string, src Source) (RollResult, error) {
	expr, err := Parse(formula)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(expr, src), nil
}
