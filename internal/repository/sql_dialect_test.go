package repository

import (
	"strings"
	"testing"
)

func TestJSONTextExprByDialectSQLite(t *testing.T) {
	got := jsonTextExprByDialect("sqlite", "item_details", "name")
	want := "json_extract(item_details, '$.\"name\"')"
	if got != want {
		t.Fatalf("sqlite json expr mismatch, want %s got %s", want, got)
	}
}

func TestJSONTextExprByDialectPostgres(t *testing.T) {
	got := jsonTextExprByDialect("postgres", "item_details", "name")
	want := "(item_details::jsonb ->> 'name')"
	if got != want {
		t.Fatalf("postgres json expr mismatch, want %s got %s", want, got)
	}
}

func TestBuildItemSearchCondition(t *testing.T) {
	condition, argCount := buildItemSearchCondition(nil, []string{"fan_name", "creator_name"})
	if argCount != 5 {
		t.Fatalf("arg count want 5 got %d", argCount)
	}
	if !strings.Contains(condition, "fan_name LIKE ?") {
		t.Fatalf("condition should contain fan_name LIKE, got %s", condition)
	}
	if !strings.Contains(condition, "json_extract(item_details, '$.\"name\"') LIKE ?") {
		t.Fatalf("condition should contain item name LIKE, got %s", condition)
	}
	if !strings.Contains(condition, "json_extract(item_details, '$.\"category\"') LIKE ?") {
		t.Fatalf("condition should contain item category LIKE, got %s", condition)
	}
}

func TestBuildItemSearchConditionPostgresOperator(t *testing.T) {
	condition, _ := buildItemSearchConditionByDialect("postgres", []string{"fan_name"})
	if !strings.Contains(condition, "fan_name ILIKE ?") {
		t.Fatalf("postgres condition should use ILIKE, got %s", condition)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%test%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%test%" {
			t.Fatalf("args[%d] want %%test%% got %v", idx, arg)
		}
	}
}
