package utils

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      int
		wantErr bool
	}{
		{"zero", 0, false},
		{"positive", 69, false},
		{"negative", -1, false},
		{"max int32", 2147483647, false},
		{"min int32", -2147483648, false},
		{"overflow", 2147483648, true},
		{"underflow", -2147483649, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%d) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStrategyName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"empty", "", false},
		{"regular", "New Strategy", false},
		{"exactly 50", strings.Repeat("s", 50), false},
		{"51 chars", strings.Repeat("s", 51), true},
		{"50 cyrillic runes", strings.Repeat("я", 50), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStrategyName(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStrategyName(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrNameTooLong) {
				t.Errorf("expected ErrNameTooLong, got %v", err)
			}
		})
	}
}

func TestValidateBotName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"regular", "Great Bot!", false},
		{"exactly 20", strings.Repeat("b", 20), false},
		{"21 chars", strings.Repeat("b", 21), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBotName(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBotName(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTimeframe(t *testing.T) {
	tests := []struct {
		name      string
		timeframe string
		wantErr   bool
	}{
		{"1h", "1h", false},
		{"15m", "15m", false},
		{"empty", "", false},
		{"5 chars", "12345", false},
		{"too long", "weekly", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimeframe(tt.timeframe)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTimeframe(%q) error = %v, wantErr %v", tt.timeframe, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrTimeframeTooLong) {
				t.Errorf("expected ErrTimeframeTooLong, got %v", err)
			}
		})
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors

	errs.Add("field1", "error1")
	errs.Add("field2", "error2")

	if !errs.HasErrors() {
		t.Error("ValidationErrors.HasErrors() = false, want true")
	}

	errStr := errs.Error()
	if !strings.Contains(errStr, "field1: error1") || !strings.Contains(errStr, "field2: error2") {
		t.Errorf("ValidationErrors.Error() = %q, should contain both errors", errStr)
	}

	if len(errs) != 2 {
		t.Errorf("ValidationErrors length = %d, want 2", len(errs))
	}
}

func TestValidationErrorsAddError(t *testing.T) {
	var errs ValidationErrors

	errs.AddError("field1", nil)
	if errs.HasErrors() {
		t.Error("ValidationErrors.AddError(nil) should not add error")
	}

	errs.AddError("field2", ErrNameTooLong)
	if !errs.HasErrors() {
		t.Error("ValidationErrors.AddError(err) should add error")
	}
}

func BenchmarkValidateStrategyName(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ValidateStrategyName("New Strategy")
	}
}
