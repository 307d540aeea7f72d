package validation_test

import (
	"testing"

	"github.com/km-arc/go-laravel-db/framework/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

// pass asserts the validator passes for the given data/rules.
func pass(t *testing.T, label string, data map[string]string, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		if v.Fails() {
			t.Errorf("expected PASS, got FAIL, errors: %+v", v.Errors().Bag)
		}
	})
}

// fail asserts the validator fails with an error on the given field.
func fail(t *testing.T, label, field string, data map[string]string, rules validation.Rules) {
	t.Helper()
	t.Run(label, func(t *testing.T) {
		v := validation.Make(data, rules)
		if v.Passes() {
			t.Errorf("expected FAIL on field %q, but validator PASSED", field)
		}
		if v.Errors().First(field) == "" {
			t.Errorf("expected error on field %q, but none found. Errors: %+v", field, v.Errors().Bag)
		}
	})
}

func TestValidation_Required(t *testing.T) {
	r := validation.Rules{"dsn": "required"}
	pass(t, "present", map[string]string{"dsn": "file.db"}, r)
	fail(t, "empty", "dsn", map[string]string{"dsn": ""}, r)
	fail(t, "blank", "dsn", map[string]string{"dsn": "   "}, r)
	fail(t, "missing", "dsn", map[string]string{}, r)
}

func TestValidation_In(t *testing.T) {
	r := validation.Rules{"driver": "required|in:pgx, sqlite3"}
	pass(t, "pgx", map[string]string{"driver": "pgx"}, r)
	pass(t, "sqlite3", map[string]string{"driver": "sqlite3"}, r)
	fail(t, "mysql", "driver", map[string]string{"driver": "mysql"}, r)
}

func TestValidation_AlphaDash(t *testing.T) {
	r := validation.Rules{"tag": "alpha_dash"}
	pass(t, "camel", map[string]string{"tag": "databaseModel"}, r)
	pass(t, "dashes", map[string]string{"tag": "db-model_1"}, r)
	fail(t, "dots", "tag", map[string]string{"tag": "db.model"}, r)
}

func TestValidation_Regex(t *testing.T) {
	r := validation.Rules{"ns": `regex:^[A-Za-z0-9_.-]+$`}
	pass(t, "dotted", map[string]string{"ns": "database.models"}, r)
	fail(t, "spaces", "ns", map[string]string{"ns": "data base"}, r)
}

func TestValidation_NullableIntegerGte(t *testing.T) {
	r := validation.Rules{"conns": "nullable|integer|gte:0"}
	pass(t, "empty", map[string]string{"conns": ""}, r)
	pass(t, "zero", map[string]string{"conns": "0"}, r)
	pass(t, "ten", map[string]string{"conns": "10"}, r)
	fail(t, "negative", "conns", map[string]string{"conns": "-1"}, r)
	fail(t, "word", "conns", map[string]string{"conns": "ten"}, r)
}

func TestValidation_BooleanAndMax(t *testing.T) {
	r := validation.Rules{"lazy": "boolean", "name": "max:5"}
	pass(t, "ok", map[string]string{"lazy": "true", "name": "abc"}, r)
	fail(t, "bad bool", "lazy", map[string]string{"lazy": "maybe", "name": "abc"}, r)
	fail(t, "too long", "name", map[string]string{"lazy": "false", "name": "abcdef"}, r)
}

func TestValidation_Err(t *testing.T) {
	v := validation.Make(map[string]string{"a": "", "b": ""}, validation.Rules{"a": "required", "b": "required"})
	err := v.Err()
	if err == nil {
		t.Fatal("Err(): expected error")
	}
	want := "The a field is required. The b field is required."
	if err.Error() != want {
		t.Errorf("Err(): got %q, want %q", err.Error(), want)
	}

	if err := validation.Make(map[string]string{"a": "x"}, validation.Rules{"a": "required"}).Err(); err != nil {
		t.Errorf("Err(): got %v, want nil", err)
	}
}

func TestValidation_BailsOnFirstFailure(t *testing.T) {
	v := validation.Make(map[string]string{"x": ""}, validation.Rules{"x": "required|integer"})
	v.Fails()
	if got := len(v.Errors().Bag["x"]); got != 1 {
		t.Errorf("errors for x: got %d, want 1", got)
	}
}

func TestValidation_IntegerRange(t *testing.T) {
	r := validation.Rules{"take": "integer|gte:1|lte:500"}
	pass(t, "lower bound", map[string]string{"take": "1"}, r)
	pass(t, "upper bound", map[string]string{"take": "500"}, r)
	fail(t, "zero", "take", map[string]string{"take": "0"}, r)
	fail(t, "above cap", "take", map[string]string{"take": "1000000000"}, r)
}
