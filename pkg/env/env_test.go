package env

import "testing"

func TestGetTrimsValue(t *testing.T) {
	t.Setenv("VITRINE_TEST_VAR", "  valor  ")

	if got := Get("VITRINE_TEST_VAR", "padrao"); got != "valor" {
		t.Fatalf("Get() = %q", got)
	}
}

func TestGetFallsBackWhenBlank(t *testing.T) {
	t.Setenv("VITRINE_TEST_VAR", "   ")

	if got := Get("VITRINE_TEST_VAR", "padrao"); got != "padrao" {
		t.Fatalf("Get() = %q, want fallback", got)
	}
}

func TestGetFallsBackWhenUnset(t *testing.T) {
	if got := Get("VITRINE_TEST_VAR_MISSING", "padrao"); got != "padrao" {
		t.Fatalf("Get() = %q, want fallback", got)
	}
}
