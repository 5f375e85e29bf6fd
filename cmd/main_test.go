package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/hireloop/internal/config"
	"github.com/okian/hireloop/internal/domain/analytics"
	"github.com/okian/hireloop/internal/domain/model"
)

func execute(args ...string) (string, error) {
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	convey.Convey("Given the root command", t, func() {
		root := newRootCmd()

		convey.Convey("Then every task is registered", func() {
			names := map[string]bool{}
			for _, c := range root.Commands() {
				names[c.Name()] = true
			}
			for _, want := range []string{"serve", "rank", "adapt", "rollup", "summary", "export"} {
				convey.So(names[want], convey.ShouldBeTrue)
			}
		})

		convey.Convey("Then --config and --json are persistent", func() {
			convey.So(root.PersistentFlags().Lookup("config"), convey.ShouldNotBeNil)
			convey.So(root.PersistentFlags().Lookup("json"), convey.ShouldNotBeNil)
		})
	})
}

func TestTasks(t *testing.T) {
	convey.Convey("Given the in-memory store", t, func() {
		convey.Convey("When rolling up a day", func() {
			out, err := execute("rollup", "2025-03-01")

			convey.Convey("Then the empty metric row is printed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, `"date": "2025-03-01"`)
				convey.So(out, convey.ShouldContainSubstring, `"applications": 0`)
			})
		})

		convey.Convey("When the date is malformed", func() {
			_, err := execute("rollup", "03/01/2025")

			convey.Convey("Then the command fails", func() {
				convey.So(errors.Is(err, analytics.ErrInvalidDate), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When adapting without feedback", func() {
			out, err := execute("adapt", "--trigger", "cli")

			convey.Convey("Then the run is skipped", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, `"status": "skipped"`)
				convey.So(out, convey.ShouldContainSubstring, "insufficient_data")
			})
		})

		convey.Convey("When summarizing a range", func() {
			out, err := execute("summary", "--from", "2025-03-01", "--to", "2025-03-03")

			convey.Convey("Then the bounds are echoed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, `"from": "2025-03-01"`)
				convey.So(out, convey.ShouldContainSubstring, `"to": "2025-03-03"`)
			})
		})

		convey.Convey("When ranking or exporting an unknown job", func() {
			_, rankErr := execute("rank", "nope")
			_, exportErr := execute("export", "nope", "-o", "-")

			convey.Convey("Then both fail with not found", func() {
				convey.So(errors.Is(rankErr, model.ErrNotFound), convey.ShouldBeTrue)
				convey.So(errors.Is(exportErr, model.ErrNotFound), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When rank is called without a job id", func() {
			_, err := execute("rank")

			convey.Convey("Then argument validation fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestConfigFlag(t *testing.T) {
	convey.Convey("Given a YAML config with an invalid provider", t, func() {
		path := filepath.Join(t.TempDir(), "hireloop.yaml")
		convey.So(os.WriteFile(path, []byte("provider: openai\n"), 0o600), convey.ShouldBeNil)
		defer func() { _ = os.Unsetenv(configFileEnv) }()

		convey.Convey("Then loading through --config rejects it", func() {
			_, err := execute("--config", path, "rollup", "2025-03-01")
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
