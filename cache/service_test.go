package cache

import (
	"errors"
	"testing"
)

func TestAs_NilInterface(t *testing.T) {
	type SomeInterface interface {
		DoSomething() string
	}

	result, err := As[SomeInterface](nil)
	if err != nil {
		t.Errorf("expected no error but got: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result but got: %v", result)
	}
}

func TestAs_NilPointer(t *testing.T) {
	result, err := As[*string]((*string)(nil))
	if err != nil {
		t.Errorf("expected no error but got: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result but got: %v", result)
	}
}

func TestAs_PreservesPointerIdentity(t *testing.T) {
	value := "hello"
	result, err := As[*string](&value)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != &value {
		t.Error("expected the same pointer back")
	}
}

func TestAs_TypeMismatch(t *testing.T) {
	_, err := As[string](42)
	if !errors.Is(err, ErrInvalidResultType) {
		t.Errorf("expected ErrInvalidResultType, got %v", err)
	}
}
