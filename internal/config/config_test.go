package config_test

import (
	"testing"
	"time"

	"github.com/okian/assessrec/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.TopK, convey.ShouldEqual, 10)
			convey.So(cfg.FallbackSize, convey.ShouldEqual, 10)
			convey.So(cfg.CatalogStore, convey.ShouldEqual, config.StoreJSON)
			convey.So(cfg.CatalogTTL(), convey.ShouldEqual, time.Hour)
			convey.So(cfg.FetchTimeout(), convey.ShouldEqual, 15*time.Second)
			convey.So(cfg.FetchMaxBytes, convey.ShouldEqual, int64(2097152))
			convey.So(cfg.ExtractAllKeywords, convey.ShouldBeFalse)
			convey.So(cfg.Taxonomy, convey.ShouldBeNil)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
