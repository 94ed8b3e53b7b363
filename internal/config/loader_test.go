package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/assessrec/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.TopK, convey.ShouldEqual, 10)
				convey.So(cfg.CatalogTTLSeconds, convey.ShouldEqual, 3600)
				convey.So(cfg.CatalogPath, convey.ShouldEqual, "data/assessments.json")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ASSESSREC_ADDR", ":8080")
			_ = os.Setenv("ASSESSREC_TOP_K", "5")
			_ = os.Setenv("ASSESSREC_CATALOG_STORE", "sqlite")
			_ = os.Setenv("ASSESSREC_CATALOG_PATH", "/tmp/catalog.db")
			_ = os.Setenv("ASSESSREC_CRAWL_DETAILS", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.TopK, convey.ShouldEqual, 5)
				convey.So(cfg.CatalogStore, convey.ShouldEqual, config.StoreSQLite)
				convey.So(cfg.CatalogPath, convey.ShouldEqual, "/tmp/catalog.db")
				convey.So(cfg.CrawlDetails, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
# service settings
addr: ":9090"
log_format: json
fallback_size: 5
catalog_ttl_seconds: 60
taxonomy:
  programming: [java, python]
  leadership: [leadership, management]
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("ASSESSREC_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.FallbackSize, convey.ShouldEqual, 5)
				convey.So(cfg.CatalogTTLSeconds, convey.ShouldEqual, 60)
				convey.So(cfg.TopK, convey.ShouldEqual, 10)
				convey.So(cfg.Taxonomy, convey.ShouldResemble, map[string][]string{
					"programming": {"java", "python"},
					"leadership":  {"leadership", "management"},
				})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, "addr: \":9090\"\ntop_k: 3\n")
			_ = os.Setenv("ASSESSREC_CONFIG", tmpFile)
			_ = os.Setenv("ASSESSREC_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.TopK, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("ASSESSREC_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("ASSESSREC_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("ASSESSREC_TOP_K", "many")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When addr is empty", func() {
			cfg.Addr = ""
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
		})

		convey.Convey("When top_k is zero", func() {
			cfg.TopK = 0
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When fallback_size is negative", func() {
			cfg.FallbackSize = -1
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When catalog_store is unknown", func() {
			cfg.CatalogStore = "redis"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When catalog_store is none the path may be empty", func() {
			cfg.CatalogStore = config.StoreNone
			cfg.CatalogPath = ""
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When a taxonomy category has no keywords", func() {
			cfg.Taxonomy = map[string][]string{"sales": {}}
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "sales")
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"ASSESSREC_CONFIG",
		"ASSESSREC_ADDR",
		"ASSESSREC_TOP_K",
		"ASSESSREC_CATALOG_STORE",
		"ASSESSREC_CATALOG_PATH",
		"ASSESSREC_CRAWL_DETAILS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "assessrec-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpFile.Name()
}
