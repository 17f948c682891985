package validation

import "testing"

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.vn", "user.name@example.com"}
	invalid := []string{"", "not-an-email", "a@b", "a b@c.vn"}

	for _, s := range valid {
		if !IsValidEmail(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range invalid {
		if IsValidEmail(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestIsValidPhone(t *testing.T) {
	valid := []string{"0912345678", "+84912345678", "84912345678", "0912 345 678"}
	invalid := []string{"", "12345", "abc", "+1555123456"}

	for _, s := range valid {
		if !IsValidPhone(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range invalid {
		if IsValidPhone(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello  ", 100); got != "hello" {
		t.Errorf("expected trimmed string, got %q", got)
	}
	if got := SanitizeString("abcdef", 3); got != "abc" {
		t.Errorf("expected truncation, got %q", got)
	}
	if got := SanitizeString("a\x00b", 100); got != "ab" {
		t.Errorf("expected null bytes removed, got %q", got)
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("unexpected empty message: %q", errs.Error())
	}

	errs = errs.Add("phone", "invalid phone number")
	if errs.Error() != "phone: invalid phone number" {
		t.Errorf("unexpected message: %q", errs.Error())
	}
}
