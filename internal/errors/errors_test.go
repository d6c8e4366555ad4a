package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestGetCode(t *testing.T) {
	err := New(CodeNotFound, "character 7 does not exist")
	if got := GetCode(err); got != CodeNotFound {
		t.Fatalf("expected %s, got %s", CodeNotFound, got)
	}
	if got := GetCode(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("expected %s for plain error, got %s", CodeUnknown, got)
	}
}

func TestGetCodeWrapped(t *testing.T) {
	err := fmt.Errorf("move character: %w", New(CodeCrossWorld, "area 4 is in world 2"))
	if !IsCode(err, CodeCrossWorld) {
		t.Fatalf("expected wrapped error to carry %s, got %s", CodeCrossWorld, GetCode(err))
	}
}

func TestErrorMessage(t *testing.T) {
	err := Newf(CodeSlotOccupied, "slot %q is occupied", "right hand")
	want := `SLOT_OCCUPIED: slot "right hand" is occupied`
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
