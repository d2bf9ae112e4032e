package errors

import (
	"errors"
	"fmt"
	"testing"
)

type selfClassified struct{}

func (selfClassified) Error() string { return "bad field" }
func (selfClassified) Kind() Kind    { return KindValidation }

func TestError(t *testing.T) {
	err := New(KindCommand, "systemctl failed")
	if err.Error() != "systemctl failed" {
		t.Errorf("expected 'systemctl failed', got '%s'", err.Error())
	}

	wrapped := Wrap(err, KindPermission, "elevation")
	if wrapped.Error() != "elevation: systemctl failed" {
		t.Errorf("expected 'elevation: systemctl failed', got '%s'", wrapped.Error())
	}

	if Wrap(nil, KindCommand, "nothing") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestGetKind(t *testing.T) {
	err := New(KindToolNotFound, "no ip")
	if GetKind(err) != KindToolNotFound {
		t.Errorf("expected KindToolNotFound, got %v", GetKind(err))
	}

	wrapped := Wrap(err, KindCommand, "failed")
	if GetKind(wrapped) != KindCommand {
		t.Errorf("expected KindCommand, got %v", GetKind(wrapped))
	}

	if GetKind(errors.New("std error")) != KindUnknown {
		t.Errorf("expected KindUnknown, got %v", GetKind(errors.New("std error")))
	}

	fmtWrapped := fmt.Errorf("collect: %w", selfClassified{})
	if GetKind(fmtWrapped) != KindValidation {
		t.Errorf("expected KindValidation, got %v", GetKind(fmtWrapped))
	}
}

func TestAttributes(t *testing.T) {
	err := New(KindCommand, "exit status 1")
	err = Attr(err, "cmd", "systemctl")
	err = Attr(err, "exit_code", 1)

	attrs := GetAttributes(err)
	if attrs["cmd"] != "systemctl" {
		t.Errorf("expected systemctl, got %v", attrs["cmd"])
	}
	if attrs["exit_code"] != 1 {
		t.Errorf("expected 1, got %v", attrs["exit_code"])
	}

	classified := Attr(selfClassified{}, "field", "routed")
	if GetKind(classified) != KindValidation {
		t.Errorf("expected attr to keep KindValidation, got %v", GetKind(classified))
	}
}

func TestKindString(t *testing.T) {
	if KindToolNotFound.String() != "tool_not_found" {
		t.Errorf("unexpected: %s", KindToolNotFound)
	}
	if Kind(99).String() != "unknown" {
		t.Errorf("unexpected: %s", Kind(99))
	}
}

func TestAttrKeepsWrapperContext(t *testing.T) {
	inner := New(KindCommand, "mv failed")
	wrapped := fmt.Errorf("install unit: %w", inner)

	err := Attr(wrapped, "unit", "he-tunnel.service")
	if err.Error() != "install unit: mv failed" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if GetKind(err) != KindCommand {
		t.Errorf("expected KindCommand, got %v", GetKind(err))
	}
	if GetAttributes(inner)["unit"] != nil {
		t.Error("inner error must not be mutated")
	}
	if GetAttributes(err)["unit"] != "he-tunnel.service" {
		t.Errorf("missing unit attribute: %v", GetAttributes(err))
	}
}

func TestFields(t *testing.T) {
	err := Attr(Wrap(fmt.Errorf("exit status 1"), KindCommand, "systemctl restart"), "unit", "he.service")
	f := Fields(fmt.Errorf("setup: %w", err))
	if f["kind"] != "command" || f["unit"] != "he.service" {
		t.Errorf("unexpected fields %v", f)
	}
	if Fields(fmt.Errorf("plain"))["kind"] != "unknown" {
		t.Error("expected unknown kind for plain errors")
	}
}
