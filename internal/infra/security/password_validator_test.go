package security

import (
	"errors"
	"testing"
)

func TestDefaultPasswordValidatorAcceptsStrongPassword(t *testing.T) {
	validator := DefaultPasswordValidator()

	if err := validator.Validate("s8#Kp2!vQz"); err != nil {
		t.Fatalf("expected strong password to pass, got %v", err)
	}
}

func TestPasswordValidatorRejectsShortPassword(t *testing.T) {
	validator := DefaultPasswordValidator()

	err := validator.Validate("aB1!")
	var verr *PasswordValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected PasswordValidationError, got %v", err)
	}
	if verr.Code != "min_length" {
		t.Fatalf("expected min_length violation, got %q", verr.Code)
	}
}

func TestPasswordValidatorRequiresCharacterClasses(t *testing.T) {
	validator := DefaultPasswordValidator()

	err := validator.Validate("alllowercaseletters")
	var verr *PasswordValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected PasswordValidationError, got %v", err)
	}
	if verr.Code != "character_classes" {
		t.Fatalf("expected character_classes violation, got %q", verr.Code)
	}
}

func TestPasswordValidatorRejectsGuessablePassword(t *testing.T) {
	validator := NewPasswordValidator(MinStrengthRule(2))

	err := validator.Validate("password1")
	var verr *PasswordValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected PasswordValidationError, got %v", err)
	}
	if verr.Code != "strength" {
		t.Fatalf("expected strength violation, got %q", verr.Code)
	}
}

func TestPasswordRulesRunInOrder(t *testing.T) {
	var calls []string
	validator := NewPasswordValidator(
		PasswordRuleFunc(func(string) error {
			calls = append(calls, "first")
			return nil
		}),
		PasswordRuleFunc(func(string) error {
			calls = append(calls, "second")
			return &PasswordValidationError{Code: "stop"}
		}),
		PasswordRuleFunc(func(string) error {
			calls = append(calls, "third")
			return nil
		}),
	)

	if err := validator.Validate("anything"); err == nil {
		t.Fatal("expected validation to fail")
	}
	if len(calls) != 2 || calls[1] != "second" {
		t.Fatalf("expected rules to stop at first violation, got %v", calls)
	}
}
