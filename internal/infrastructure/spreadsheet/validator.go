package spreadsheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FieldType is the expected type of a cell
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeBool    FieldType = "bool"
	TypeUUID    FieldType = "uuid"
)

// FieldRule describes how a column is validated
type FieldRule struct {
	Column    string
	Type      FieldType
	Required  bool
	MaxLength int
	MinValue  *decimal.Decimal
	Unique    bool
}

// FieldRuleBuilder builds a FieldRule fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field starts a rule for column, typed as string
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{Column: column, Type: TypeString}}
}

func (b *FieldRuleBuilder) Required() *FieldRuleBuilder { b.rule.Required = true; return b }
func (b *FieldRuleBuilder) Int() *FieldRuleBuilder      { b.rule.Type = TypeInt; return b }
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder  { b.rule.Type = TypeDecimal; return b }
func (b *FieldRuleBuilder) Bool() *FieldRuleBuilder     { b.rule.Type = TypeBool; return b }
func (b *FieldRuleBuilder) UUID() *FieldRuleBuilder     { b.rule.Type = TypeUUID; return b }
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder   { b.rule.Unique = true; return b }

// MaxLength limits the cell length in bytes
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// NonNegative rejects numbers below zero
func (b *FieldRuleBuilder) NonNegative() *FieldRuleBuilder {
	zero := decimal.Zero
	b.rule.MinValue = &zero
	return b
}

// Build returns the rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator checks rows against a rule set
type FieldValidator struct {
	rules  []FieldRule
	seen   map[string]map[string]int
	errors *ErrorCollection
}

// NewFieldValidator creates a validator collecting up to maxErrors errors
func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	return &FieldValidator{
		rules:  rules,
		seen:   make(map[string]map[string]int),
		errors: NewErrorCollection(maxErrors),
	}
}

// ValidateRow checks every rule and reports whether the row is clean
func (v *FieldValidator) ValidateRow(row *Row) bool {
	ok := true
	for _, rule := range v.rules {
		value := row.Get(rule.Column)
		if value == "" {
			if rule.Required {
				v.fail(row.Number, rule.Column, ErrCodeRequired, "value is required", "")
				ok = false
			}
			continue
		}
		if err := checkType(value, rule.Type); err != nil {
			v.fail(row.Number, rule.Column, ErrCodeInvalidType, fmt.Sprintf("expected %s", rule.Type), value)
			ok = false
			continue
		}
		if rule.MaxLength > 0 && len(value) > rule.MaxLength {
			v.fail(row.Number, rule.Column, ErrCodeInvalidLength, fmt.Sprintf("longer than %d characters", rule.MaxLength), "")
			ok = false
		}
		if rule.MinValue != nil && (rule.Type == TypeInt || rule.Type == TypeDecimal) {
			if d, _ := decimal.NewFromString(value); d.LessThan(*rule.MinValue) {
				v.fail(row.Number, rule.Column, ErrCodeInvalidRange, "must be at least "+rule.MinValue.String(), value)
				ok = false
			}
		}
		if rule.Unique {
			if v.seen[rule.Column] == nil {
				v.seen[rule.Column] = make(map[string]int)
			}
			key := strings.ToLower(value)
			if first, dup := v.seen[rule.Column][key]; dup {
				v.fail(row.Number, rule.Column, ErrCodeDuplicate, fmt.Sprintf("duplicate of row %d", first), value)
				ok = false
			} else {
				v.seen[rule.Column][key] = row.Number
			}
		}
	}
	return ok
}

// Errors returns the collected errors
func (v *FieldValidator) Errors() *ErrorCollection {
	return v.errors
}

func (v *FieldValidator) fail(row int, column, code, message, value string) {
	v.errors.Add(RowError{Row: row, Column: column, Code: code, Message: message, Value: value})
}

func checkType(value string, t FieldType) error {
	switch t {
	case TypeInt:
		_, err := strconv.Atoi(value)
		return err
	case TypeDecimal:
		_, err := decimal.NewFromString(value)
		return err
	case TypeBool:
		_, err := ParseBool(value)
		return err
	case TypeUUID:
		_, err := uuid.Parse(value)
		return err
	}
	return nil
}

// ParseBool accepts true/false, 1/0, yes/no and y/n in any case
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value: %s", value)
}
