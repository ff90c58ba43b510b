package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Soo0803/ternswipe-matcher/config"
	"github.com/smartystreets/goconvey/convey"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matcher.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(config.EnvConfigFile, "")

	convey.Convey("Given no file and no overrides", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then it should load the defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg, convey.ShouldResemble, config.New())
		})
	})
}

func TestLoad_File(t *testing.T) {
	path := writeConfigFile(t, `
log_level: debug
db_path: /var/lib/matcher
k_ann: 150
per_seeker_top_n: 5
scoring_profile: v2-soft-gate
fuzzy_threshold: 88.5
embedding_timeout: 45s
embedding_dimensions: 768
`)
	t.Setenv(config.EnvConfigFile, path)

	convey.Convey("Given a YAML file named by MATCHER_CONFIG", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then file values should override defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			convey.So(cfg.DBPath, convey.ShouldEqual, "/var/lib/matcher")
			convey.So(cfg.KANN, convey.ShouldEqual, 150)
			convey.So(cfg.PerSeekerTopN, convey.ShouldEqual, 5)
			convey.So(cfg.ScoringProfile, convey.ShouldEqual, "v2-soft-gate")
			convey.So(cfg.FuzzyThreshold, convey.ShouldEqual, 88.5)
			convey.So(cfg.EmbeddingTimeout, convey.ShouldEqual, 45*time.Second)
			convey.So(cfg.EmbeddingDimensions, convey.ShouldEqual, 768)
		})

		convey.Convey("And untouched fields should keep their defaults", func() {
			convey.So(cfg.KLexical, convey.ShouldEqual, 100)
			convey.So(cfg.Predictor, convey.ShouldEqual, "blend")
		})
	})
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "k_ann: 150\nresult_limit: 7\n")
	t.Setenv(config.EnvConfigFile, path)
	t.Setenv("MATCHER_K_ANN", "300")
	t.Setenv("MATCHER_PER_SEEKER_TOP_N", "3")
	t.Setenv("MATCHER_EMBEDDING_MODEL", "mxbai-embed-large")

	convey.Convey("Given a file and environment overrides", t, func() {
		cfg, err := config.Load(context.Background())

		convey.Convey("Then the environment should win", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.KANN, convey.ShouldEqual, 300)
			convey.So(cfg.PerSeekerTopN, convey.ShouldEqual, 3)
			convey.So(cfg.EmbeddingModel, convey.ShouldEqual, "mxbai-embed-large")
			convey.So(cfg.ResultLimit, convey.ShouldEqual, 7)
		})
	})
}

func TestLoad_Errors(t *testing.T) {
	convey.Convey("Given a missing config file", t, func() {
		_, err := config.LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))

		convey.Convey("Then loading should fail", func() {
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a file with invalid values", t, func() {
		path := writeConfigFile(t, "k_ann: 0\n")
		_, err := config.LoadFile(context.Background(), path)

		convey.Convey("Then validation should fail", func() {
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := config.LoadFile(ctx, "")

		convey.Convey("Then loading should fail", func() {
			convey.So(err, convey.ShouldEqual, context.Canceled)
		})
	})
}
