package csvimport

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// FieldType is the expected type of a cell
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeBool    FieldType = "bool"
)

// FieldRule describes the constraints on one column
type FieldRule struct {
	Column    string
	Type      FieldType
	Required  bool
	MaxLength int
	MinValue  *decimal.Decimal
	MaxValue  *decimal.Decimal
	Unique    bool
	Check     func(value string) error
}

// FieldRuleBuilder builds a FieldRule fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field starts a string rule for column
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{Column: column, Type: TypeString}}
}

func (b *FieldRuleBuilder) Required() *FieldRuleBuilder { b.rule.Required = true; return b }
func (b *FieldRuleBuilder) Int() *FieldRuleBuilder      { b.rule.Type = TypeInt; return b }
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder  { b.rule.Type = TypeDecimal; return b }
func (b *FieldRuleBuilder) Bool() *FieldRuleBuilder     { b.rule.Type = TypeBool; return b }
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder   { b.rule.Unique = true; return b }

// MaxLength limits the value to n characters
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// Min sets an inclusive lower bound for numeric values
func (b *FieldRuleBuilder) Min(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &v
	return b
}

// Max sets an inclusive upper bound for numeric values
func (b *FieldRuleBuilder) Max(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MaxValue = &v
	return b
}

// Check adds a custom validation
func (b *FieldRuleBuilder) Check(fn func(value string) error) *FieldRuleBuilder {
	b.rule.Check = fn
	return b
}

// Build returns the rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator applies rules to rows and collects every violation
type FieldValidator struct {
	rules  []FieldRule
	seen   map[string]map[string]int
	errors *ErrorCollection
}

// NewFieldValidator creates a validator; rules are checked in the given order
func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	return &FieldValidator{
		rules:  rules,
		seen:   make(map[string]map[string]int),
		errors: NewErrorCollection(maxErrors),
	}
}

// ValidateRow checks row and reports whether it passed every rule
func (v *FieldValidator) ValidateRow(row *Row) bool {
	before := v.errors.TotalCount()
	for _, rule := range v.rules {
		v.validateCell(row.LineNumber, rule, row.Get(rule.Column))
	}
	return v.errors.TotalCount() == before
}

func (v *FieldValidator) validateCell(line int, rule FieldRule, value string) {
	col := rule.Column
	if value == "" {
		if rule.Required {
			v.errors.addf(line, col, ErrCodeRequiredField, "", "field '%s' is required", col)
		}
		return
	}

	if err := checkType(value, rule.Type); err != nil {
		v.errors.addf(line, col, ErrCodeInvalidType, value, "expected %s", rule.Type)
		return
	}
	if rule.MaxLength > 0 && utf8.RuneCountInString(value) > rule.MaxLength {
		v.errors.addf(line, col, ErrCodeInvalidLength, "", "length must be at most %d", rule.MaxLength)
	}
	if rule.MinValue != nil || rule.MaxValue != nil {
		d := decimal.RequireFromString(value)
		if (rule.MinValue != nil && d.LessThan(*rule.MinValue)) || (rule.MaxValue != nil && d.GreaterThan(*rule.MaxValue)) {
			v.errors.addf(line, col, ErrCodeInvalidRange, value, "value must be within %s", describeRange(rule.MinValue, rule.MaxValue))
		}
	}
	if rule.Unique {
		if v.seen[col] == nil {
			v.seen[col] = make(map[string]int)
		}
		if first, dup := v.seen[col][value]; dup {
			v.errors.addf(line, col, ErrCodeDuplicate, value, "duplicate value (first seen in row %d)", first)
		} else {
			v.seen[col][value] = line
		}
	}
	if rule.Check != nil {
		if err := rule.Check(value); err != nil {
			v.errors.addf(line, col, ErrCodeInvalidValue, value, "%s", err.Error())
		}
	}
}

// Errors returns the collected violations
func (v *FieldValidator) Errors() *ErrorCollection {
	return v.errors
}

func checkType(value string, t FieldType) error {
	switch t {
	case TypeInt:
		_, err := strconv.ParseInt(value, 10, 64)
		return err
	case TypeDecimal:
		_, err := decimal.NewFromString(value)
		return err
	case TypeBool:
		_, err := parseBool(value)
		return err
	}
	return nil
}

// parseBool accepts the spellings spreadsheet exports commonly use
func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n", "":
		return false, nil
	}
	return false, strconv.ErrSyntax
}

func describeRange(min, max *decimal.Decimal) string {
	switch {
	case min != nil && max != nil:
		return "[" + min.String() + ", " + max.String() + "]"
	case min != nil:
		return "[" + min.String() + ", ∞)"
	default:
		return "(-∞, " + max.String() + "]"
	}
}
