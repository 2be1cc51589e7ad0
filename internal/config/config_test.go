package config_test

import (
	"testing"

	"github.com/okian/sensorsink/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, "0.0.0.0:3000")
			convey.So(cfg.UploadsDir, convey.ShouldEqual, "uploads")
			convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, int64(50<<20))
			convey.So(cfg.AllowedOrigins, convey.ShouldEqual, "*")
			convey.So(cfg.ServiceName, convey.ShouldEqual, "Sensor Data Upload Server")
			convey.So(cfg.Version, convey.ShouldEqual, "1.0.0")
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Origins(t *testing.T) {
	convey.Convey("Given a comma separated origin list", t, func() {
		cfg := config.New()
		cfg.AllowedOrigins = " http://a.test , ,http://b.test"

		convey.So(cfg.Origins(), convey.ShouldResemble, []string{"http://a.test", "http://b.test"})
	})
}
