package background_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/dudu/poseperfect/internal/background"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-rembg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExecRemover(t *testing.T) {
	Convey("Given a rembg stand-in that copies its input", t, func() {
		bin := writeScript(t, `[ "$1" = "i" ] || exit 2; cp "$2" "$3"`)
		remover := background.NewExecRemover(background.WithBinary(bin))

		Convey("When bytes are removed", func() {
			out, err := remover.Remove(context.Background(), []byte("payload"))

			Convey("Then the output file content is returned", func() {
				So(err, ShouldBeNil)
				So(string(out), ShouldEqual, "payload")
			})
		})

		Convey("When files are removed", func() {
			dir := t.TempDir()
			in := filepath.Join(dir, "in.png")
			out := filepath.Join(dir, "out.png")
			So(os.WriteFile(in, []byte("x"), 0o600), ShouldBeNil)

			err := remover.RemoveFile(context.Background(), in, out)

			Convey("Then the output path is written", func() {
				So(err, ShouldBeNil)
				_, statErr := os.Stat(out)
				So(statErr, ShouldBeNil)
			})
		})

		So(remover.Close(), ShouldBeNil)
	})

	Convey("Given a rembg stand-in that fails", t, func() {
		bin := writeScript(t, `echo "model download failed" >&2; exit 1`)
		remover := background.NewExecRemover(background.WithBinary(bin))

		Convey("When bytes are removed", func() {
			_, err := remover.Remove(context.Background(), []byte("payload"))

			Convey("Then a removal error carries stderr", func() {
				So(errors.Is(err, background.ErrRemovalFailed), ShouldBeTrue)

				var removalErr *background.RemovalError
				So(errors.As(err, &removalErr), ShouldBeTrue)
				So(removalErr.Stderr, ShouldContainSubstring, "model download failed")
				So(err.Error(), ShouldContainSubstring, "model download failed")
			})
		})
	})

	Convey("Given a stand-in that exits cleanly without output", t, func() {
		bin := writeScript(t, `exit 0`)
		remover := background.NewExecRemover(background.WithBinary(bin))

		Convey("Then removal still fails", func() {
			_, err := remover.Remove(context.Background(), []byte("payload"))
			So(errors.Is(err, background.ErrRemovalFailed), ShouldBeTrue)
		})
	})

	Convey("Given a missing binary", t, func() {
		remover := background.NewExecRemover(background.WithBinary(filepath.Join(t.TempDir(), "nope")))

		Convey("Then removal fails with ErrRemovalFailed", func() {
			_, err := remover.Remove(context.Background(), []byte("payload"))
			So(errors.Is(err, background.ErrRemovalFailed), ShouldBeTrue)
		})
	})

	Convey("Given a cancelled context", t, func() {
		bin := writeScript(t, `sleep 5; cp "$2" "$3"`)
		remover := background.NewExecRemover(background.WithBinary(bin))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Then the process is not left running", func() {
			_, err := remover.Remove(ctx, []byte("payload"))
			So(err, ShouldNotBeNil)
		})
	})
}
