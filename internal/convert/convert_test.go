package convert

import (
	"context"
	"os/exec"
	"testing"
)

func TestNewCLIWithBinary(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/magick"))
	if cli.binary != "/opt/magick" {
		t.Fatalf("expected binary override to be applied, got %q", cli.binary)
	}
}

func TestNewCLIDefaults(t *testing.T) {
	cli := NewCLI(WithBinary(""))
	if cli.binary != "magick" {
		t.Fatalf("empty override should keep the default binary, got %q", cli.binary)
	}
}

func TestConvertRequiresInput(t *testing.T) {
	cli := NewCLI()
	if err := cli.Convert(context.Background(), "", "/tmp/out.jpg"); err == nil {
		t.Fatal("expected error when input path is empty")
	}
}

func TestConvertRequiresOutput(t *testing.T) {
	cli := NewCLI()
	if err := cli.Convert(context.Background(), "/tmp/in.heic", ""); err == nil {
		t.Fatal("expected error when output path is empty")
	}
}

func TestConvertPassesSourceAndDestination(t *testing.T) {
	var capturedName string
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedName = name
		capturedArgs = append([]string(nil), args...)
		return exec.CommandContext(ctx, "true")
	}
	t.Cleanup(func() {
		commandContext = original
	})

	cli := NewCLI(WithBinary("magick-test"))
	if err := cli.Convert(context.Background(), "/photos/IMG_0001.heic", "/archive/IMG_0001.jpg"); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	if capturedName != "magick-test" {
		t.Fatalf("expected configured binary to be invoked, got %q", capturedName)
	}
	if len(capturedArgs) != 2 || capturedArgs[0] != "/photos/IMG_0001.heic" || capturedArgs[1] != "/archive/IMG_0001.jpg" {
		t.Fatalf("unexpected arguments: %v", capturedArgs)
	}
}

func TestConvertNonZeroExitIsError(t *testing.T) {
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "false")
	}
	t.Cleanup(func() {
		commandContext = original
	})

	cli := NewCLI()
	if err := cli.Convert(context.Background(), "/photos/IMG_0001.heic", "/archive/IMG_0001.jpg"); err == nil {
		t.Fatal("expected non-zero exit to be reported as an error")
	}
}
