package xerrors

import (
	"errors"
	"strings"
	"testing"
)

func TestConstructorsTagTheRightKind(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
	}{
		{Fatalf("boom"), Fatal},
		{Sanityf("boom"), Sanity},
		{Recoverablef("boom"), Recoverable},
		{Configf("boom"), Config},
	}
	for _, c := range cases {
		if !Is(c.err, c.kind) {
			t.Errorf("Is(%v, %v) = false, want true", c.err, c.kind)
		}
	}
}

func TestWrapFunctionsPreserveCauseAndKind(t *testing.T) {
	cause := errors.New("underlying")
	err := WrapRecoverable(cause, "context %d", 7)
	if !Is(err, Recoverable) {
		t.Errorf("WrapRecoverable's error should be Recoverable")
	}
	if !errors.Is(err, cause) {
		t.Errorf("WrapRecoverable's error should unwrap to the cause")
	}
}

func TestWrapfNilErrorYieldsNil(t *testing.T) {
	if got := Wrapf(Fatal, nil, "whatever"); got != nil {
		t.Errorf("Wrapf(kind, nil, ...) = %v, want nil", got)
	}
}

func TestIsFalseForPlainError(t *testing.T) {
	if Is(errors.New("plain"), Fatal) {
		t.Errorf("Is should be false for an error that isn't a *xerrors.Error")
	}
}

func TestKindOfDefaultsToFatalForUntaggedError(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != Fatal {
		t.Errorf("KindOf(plain error) = %v, want Fatal", got)
	}
}

func TestKindOfExtractsTaggedKind(t *testing.T) {
	if got := KindOf(Configf("bad config")); got != Config {
		t.Errorf("KindOf(Configf(...)) = %v, want Config", got)
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapFatal(cause, "writing %s", "file.dat")
	msg := err.Error()
	if !strings.Contains(msg, "disk full") || !strings.Contains(msg, "file.dat") {
		t.Errorf("Error() = %q, want it to mention both the context and the cause", msg)
	}
}

func TestKindStringIsLowercase(t *testing.T) {
	for k, want := range map[Kind]string{Fatal: "fatal", Sanity: "sanity", Recoverable: "recoverable", Config: "config"} {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
