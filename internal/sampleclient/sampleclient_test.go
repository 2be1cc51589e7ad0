package sampleclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/sensorsink/internal/adapters/http/api"
	"github.com/okian/sensorsink/internal/adapters/repository"
	service "github.com/okian/sensorsink/internal/app"
	"github.com/okian/sensorsink/internal/sampleclient"
	"github.com/okian/sensorsink/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// newReceiver starts a real receiver backed by a temp directory.
func newReceiver(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := repository.NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	svc := service.New(store)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc, api.Info{Service: "test", Version: "0", UploadsDir: dir}, 1<<20).Register(context.Background(), mux)
	srv := httptest.NewServer(api.Handler(mux, nil))
	t.Cleanup(srv.Close)
	return srv, dir
}

func TestGenerate(t *testing.T) {
	Convey("Given a two second session", t, func() {
		start := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
		s := sampleclient.Generate(rand.New(rand.NewPCG(1, 2)), start, 2*time.Second)

		Convey("Then each sensor should be sampled at its own rate", func() {
			So(len(s.Accelerometer), ShouldEqual, 200)
			So(len(s.Gyroscope), ShouldEqual, 200)
			So(len(s.Magnetometer), ShouldEqual, 100)
			So(len(s.DeviceMotion), ShouldEqual, 200)
			So(len(s.Altimeter), ShouldEqual, 2)
			So(s.TotalSamples(), ShouldEqual, 702)
		})

		Convey("Then timestamps should advance from the start time", func() {
			t0 := float64(start.Unix())
			So(s.Accelerometer[0].Timestamp, ShouldAlmostEqual, t0)
			So(s.Accelerometer[100].Timestamp, ShouldAlmostEqual, t0+1)
			So(s.Magnetometer[50].Timestamp, ShouldAlmostEqual, t0+1)
			So(s.EndTime.Equal(start.Add(2*time.Second)), ShouldBeTrue)
		})

		Convey("Then the same seed should give the same readings", func() {
			again := sampleclient.Generate(rand.New(rand.NewPCG(1, 2)), start, 2*time.Second)
			So(again.Accelerometer, ShouldResemble, s.Accelerometer)
			So(again.Altimeter, ShouldResemble, s.Altimeter)
			So(again.SessionID, ShouldNotEqual, s.SessionID)
		})

		Convey("Then the JSON should use the watch app keys", func() {
			raw, err := json.Marshal(s)
			So(err, ShouldBeNil)
			var m map[string]any
			So(json.Unmarshal(raw, &m), ShouldBeNil)
			for _, k := range []string{"accelerometer", "gyroscope", "magnetometer", "deviceMotion", "altimeter", "startTime"} {
				So(m, ShouldContainKey, k)
			}
			dm := m["deviceMotion"].([]any)[0].(map[string]any)
			So(dm, ShouldContainKey, "userAcceleration")
			So(dm["attitude"], ShouldContainKey, "roll")
		})
	})

	Convey("Given a negative duration", t, func() {
		s := sampleclient.Generate(rand.New(rand.NewPCG(1, 2)), time.Now(), -time.Second)
		So(s.TotalSamples(), ShouldEqual, 0)
	})
}

func TestSessionFilename(t *testing.T) {
	Convey("Session files should be named after the start time", t, func() {
		start := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
		So(sampleclient.SessionFilename(start), ShouldEqual, "sensor_data_2024-03-09_14-05-07.json")
	})
}

func TestClient(t *testing.T) {
	Convey("Given a running receiver", t, func() {
		srv, dir := newReceiver(t)
		client := sampleclient.NewClient(srv.URL+"/", 5*time.Second)
		ctx := context.Background()

		Convey("Then the health check should pass", func() {
			So(client.Health(ctx), ShouldBeNil)
		})

		Convey("When a session is uploaded", func() {
			s := sampleclient.Generate(rand.New(rand.NewPCG(3, 4)), time.Now(), time.Second)
			payload, err := json.Marshal(s)
			So(err, ShouldBeNil)

			res, err := client.Upload(ctx, "session.json", payload)

			Convey("Then the receiver should report every category", func() {
				So(err, ShouldBeNil)
				So(res.Success, ShouldBeTrue)
				So(res.Filename, ShouldEqual, "session.json")
				So(res.TotalSamples, ShouldEqual, s.TotalSamples())
				So(res.Statistics["accelerometer"], ShouldEqual, 100)
				So(res.Statistics["magnetometer"], ShouldEqual, 50)
				So(res.Statistics["altimeter"], ShouldEqual, 1)
			})

			Convey("Then the file should exist on disk", func() {
				info, err := os.Stat(filepath.Join(dir, "session.json"))
				So(err, ShouldBeNil)
				So(info.Size(), ShouldEqual, res.FileSize)
			})
		})

		Convey("When the receiver rejects the body", func() {
			res, err := client.Upload(ctx, "", []byte(`[]`))

			Convey("Then ErrRejected should carry the server message", func() {
				So(errors.Is(err, sampleclient.ErrRejected), ShouldBeTrue)
				So(res.Success, ShouldBeFalse)
				So(res.Error, ShouldEqual, "No data received")
			})
		})
	})

	Convey("Given a receiver that is down", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		client := sampleclient.NewClient(srv.URL, time.Second)

		So(client.Health(context.Background()), ShouldNotBeNil)
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running receiver and a save directory", t, func() {
		srv, dir := newReceiver(t)
		saveDir := t.TempDir()

		res, err := sampleclient.Run(context.Background(), &sampleclient.Config{
			BaseURL:  srv.URL,
			Duration: 3 * time.Second,
			Filename: "run.json",
			Timeout:  5 * time.Second,
			SaveDir:  saveDir,
			Seed:     7,
		})

		Convey("Then the session should be saved locally and uploaded", func() {
			So(err, ShouldBeNil)
			So(res.TotalSamples, ShouldEqual, 3*(100+100+50+100+1))
			_, err = os.Stat(filepath.Join(saveDir, "run.json"))
			So(err, ShouldBeNil)
			_, err = os.Stat(filepath.Join(dir, "run.json"))
			So(err, ShouldBeNil)
		})
	})
}
