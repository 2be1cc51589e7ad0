package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/okian/sensorsink/internal/adapters/http/api"
	"github.com/okian/sensorsink/internal/adapters/repository"
	service "github.com/okian/sensorsink/internal/app"
	"github.com/okian/sensorsink/internal/domain/upload"
	"github.com/okian/sensorsink/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type stubUploader struct {
	err      error
	panicked bool
}

func (s *stubUploader) Upload(context.Context, string, []byte) (upload.Receipt, error) {
	if s.panicked {
		panic("boom")
	}
	return upload.Receipt{}, s.err
}

type uploadReply struct {
	Success      bool           `json:"success"`
	Message      string         `json:"message"`
	Error        string         `json:"error"`
	Filename     string         `json:"filename"`
	FileSize     int64          `json:"fileSize"`
	Statistics   map[string]int `json:"statistics"`
	TotalSamples int            `json:"totalSamples"`
}

func newTestHandler(t *testing.T, deps api.Uploader, dir string, maxBody int64) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	srv := api.NewServer(deps, api.Info{Service: "Sensor Data Upload Server", Version: "1.0.0", UploadsDir: dir}, maxBody)
	srv.Register(context.Background(), mux)
	return api.Handler(mux, []string{"*"})
}

func newServiceHandler(t *testing.T) (http.Handler, string) {
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
	return newTestHandler(t, svc, dir, 1<<20), dir
}

func postUpload(h http.Handler, filename, body string) (*httptest.ResponseRecorder, uploadReply) {
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if filename != "" {
		req.Header.Set(upload.FilenameHeader, filename)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var reply uploadReply
	_ = json.Unmarshal(w.Body.Bytes(), &reply)
	return w, reply
}

func TestUpload(t *testing.T) {
	Convey("Given the API backed by the upload service", t, func() {
		h, dir := newServiceHandler(t)

		Convey("When posting the reference payload with X-Filename", func() {
			body := `{"accelerometer":[1,2,3],"gyroscope":[1]}`
			w, reply := postUpload(h, "t1.json", body)

			Convey("Then it should report success and the statistics", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
				So(reply.Success, ShouldBeTrue)
				So(reply.Message, ShouldEqual, "File uploaded successfully")
				So(reply.Filename, ShouldEqual, "t1.json")
				So(reply.Statistics, ShouldResemble, map[string]int{
					"accelerometer": 3, "gyroscope": 1, "magnetometer": 0, "deviceMotion": 0, "altimeter": 0,
				})
				So(reply.TotalSamples, ShouldEqual, 4)
			})

			Convey("And the file should exist with the reported size and equal content", func() {
				path := filepath.Join(dir, "t1.json")
				info, err := os.Stat(path)
				So(err, ShouldBeNil)
				So(reply.FileSize, ShouldEqual, info.Size())

				saved, _ := os.ReadFile(path)
				So(string(saved), ShouldContainSubstring, "\n  ")
				var got, want any
				So(json.Unmarshal(saved, &got), ShouldBeNil)
				So(json.Unmarshal([]byte(body), &want), ShouldBeNil)
				So(got, ShouldResemble, want)
			})
		})

		Convey("When posting without X-Filename", func() {
			w, reply := postUpload(h, "", `{"deviceMotion":[{"attitude":{"roll":1}}]}`)

			Convey("Then a timestamped filename is generated", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(regexp.MustCompile(`^sensor_data_\d{8}_\d{6}\.json$`).MatchString(reply.Filename), ShouldBeTrue)
				So(reply.Statistics["deviceMotion"], ShouldEqual, 1)
				_, err := os.Stat(filepath.Join(dir, reply.Filename))
				So(err, ShouldBeNil)
			})
		})

		Convey("When posting an empty object", func() {
			w, reply := postUpload(h, "empty.json", `{}`)

			Convey("Then it is accepted with all-zero statistics", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(reply.Success, ShouldBeTrue)
				So(reply.TotalSamples, ShouldEqual, 0)
				So(reply.Statistics, ShouldHaveLength, 5)
				So(w.Body.String(), ShouldContainSubstring, `"totalSamples":0`)
			})
		})

		Convey("When posting null", func() {
			w, reply := postUpload(h, "null.json", `null`)

			Convey("Then it is rejected with no data received", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(reply.Success, ShouldBeFalse)
				So(reply.Error, ShouldEqual, "No data received")
				So(w.Body.String(), ShouldNotContainSubstring, "statistics")
			})
		})

		Convey("When posting a body that is not JSON", func() {
			w, reply := postUpload(h, "bad.json", `not json`)

			Convey("Then it is rejected as invalid JSON and nothing is written", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(reply.Success, ShouldBeFalse)
				So(reply.Error, ShouldStartWith, "Invalid JSON: ")
				_, err := os.Stat(filepath.Join(dir, "bad.json"))
				So(os.IsNotExist(err), ShouldBeTrue)
			})
		})

		Convey("When posting a non-ASCII payload", func() {
			w, _ := postUpload(h, "utf8.json", `{"label":"Überprüfung – 測試","accelerometer":[]}`)

			Convey("Then the text is written unescaped", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				saved, _ := os.ReadFile(filepath.Join(dir, "utf8.json"))
				So(string(saved), ShouldContainSubstring, "Überprüfung – 測試")
			})
		})

		Convey("When posting numbers outside the float64 range", func() {
			w, reply := postUpload(h, "big.json", `{"altimeter":[{"pressure":1e400}]}`)

			Convey("Then the upload succeeds with the literal kept", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(reply.Success, ShouldBeTrue)
				saved, _ := os.ReadFile(filepath.Join(dir, "big.json"))
				So(string(saved), ShouldContainSubstring, `"pressure": 1e400`)
			})
		})

		Convey("When posting with a path in X-Filename", func() {
			w, reply := postUpload(h, "../outside.json", `{"a":1}`)

			Convey("Then it is rejected as an invalid filename", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(reply.Error, ShouldStartWith, "Invalid filename: ")
			})
		})

		Convey("When sending a preflight request", func() {
			req := httptest.NewRequest(http.MethodOptions, "/upload", nil)
			req.Header.Set("Origin", "http://watch.example")
			req.Header.Set("Access-Control-Request-Method", "POST")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is answered with an empty 200 and CORS headers", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.Len(), ShouldEqual, 0)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
				So(w.Header().Get("Access-Control-Allow-Headers"), ShouldContainSubstring, "X-Filename")
			})
		})

		Convey("When using GET on /upload", func() {
			req := httptest.NewRequest(http.MethodGet, "/upload", nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(w.Header().Get("Allow"), ShouldEqual, "POST, OPTIONS")
		})
	})

	Convey("Given a small body limit", t, func() {
		dir := t.TempDir()
		store, err := repository.NewFileStore(dir)
		So(err, ShouldBeNil)
		h := newTestHandler(t, service.New(store), dir, 16)

		Convey("When the body exceeds it", func() {
			w, reply := postUpload(h, "big.json", `{"accelerometer":[1,2,3,4,5,6,7,8,9]}`)

			Convey("Then the request is rejected as too large", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
				So(reply.Error, ShouldStartWith, "Payload too large")
			})
		})
	})

	Convey("Given an uploader that fails unexpectedly", t, func() {
		h := newTestHandler(t, &stubUploader{err: errors.New("open uploads/x.json: permission denied")}, "uploads", 1<<20)

		Convey("When posting", func() {
			w, reply := postUpload(h, "x.json", `{"a":1}`)

			Convey("Then the raw message is returned with 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(reply.Success, ShouldBeFalse)
				So(reply.Error, ShouldEqual, "open uploads/x.json: permission denied")
			})
		})

		Convey("And subsequent requests are still served", func() {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})

	Convey("Given an uploader that panics", t, func() {
		h := newTestHandler(t, &stubUploader{panicked: true}, "uploads", 1<<20)

		Convey("Then the panic becomes a 500 failure envelope", func() {
			w, reply := postUpload(h, "x.json", `{"a":1}`)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(reply.Success, ShouldBeFalse)
			So(reply.Error, ShouldEqual, "boom")
		})
	})
}

func TestHealthAndRoot(t *testing.T) {
	Convey("Given the API", t, func() {
		h := newTestHandler(t, &stubUploader{}, "/srv/uploads", 1<<20)

		Convey("When requesting /health", func() {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it reports ok, the service and the uploads dir", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["status"], ShouldEqual, "ok")
				So(body["service"], ShouldEqual, "Sensor Data Upload Server")
				So(body["uploads_dir"], ShouldEqual, "/srv/uploads")
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
				So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
			})
		})

		Convey("When requesting /", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it describes the service", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Service   string            `json:"service"`
					Version   string            `json:"version"`
					Endpoints map[string]string `json:"endpoints"`
					Usage     map[string]string `json:"usage"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Service, ShouldEqual, "Sensor Data Upload Server")
				So(body.Version, ShouldEqual, "1.0.0")
				So(body.Endpoints, ShouldContainKey, "POST /upload")
				So(body.Endpoints, ShouldContainKey, "GET /health")
				So(body.Endpoints, ShouldContainKey, "GET /")
				So(body.Endpoints, ShouldContainKey, "GET /api-docs")
				So(body.Usage["example"], ShouldContainSubstring, "X-Filename: test.json")
			})
		})

		Convey("When requesting an unknown path", func() {
			req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When requesting /metrics", func() {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestMiddleware(t *testing.T) {
	Convey("Given a CORS policy with an explicit origin list", t, func() {
		next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
		h := api.CORS([]string{"http://a.test"})(next)

		Convey("When a listed origin calls", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", "http://a.test")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusTeapot)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "http://a.test")
		})

		Convey("When an unlisted origin calls", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", "http://b.test")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
		})
	})

	Convey("Given the request id middleware", t, func() {
		var seen string
		h := api.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = logger.RequestID(r.Context())
		}))

		Convey("When the client supplies an id", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(api.RequestIDHeader, "abc-123")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			So(seen, ShouldEqual, "abc-123")
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "abc-123")
		})

		Convey("When no id is supplied", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			So(seen, ShouldHaveLength, 36)
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, seen)
		})
	})
}

func TestFailureFor(t *testing.T) {
	Convey("Given upload errors of each kind", t, func() {
		status, msg := api.FailureFor(upload.WrapKind("op", upload.ErrInvalidJSON, errors.New("unexpected EOF")))
		So(status, ShouldEqual, http.StatusBadRequest)
		So(msg, ShouldEqual, "Invalid JSON: unexpected EOF")

		status, msg = api.FailureFor(upload.NewKind("op", upload.ErrNoData))
		So(status, ShouldEqual, http.StatusBadRequest)
		So(msg, ShouldEqual, "No data received")

		status, _ = api.FailureFor(upload.WrapKind("op", upload.ErrPayloadTooLarge, errors.New("too big")))
		So(status, ShouldEqual, http.StatusRequestEntityTooLarge)

		status, msg = api.FailureFor(errors.New("disk full"))
		So(status, ShouldEqual, http.StatusInternalServerError)
		So(msg, ShouldEqual, "disk full")
	})
}

func TestRegisterNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		srv := api.NewServer(&stubUploader{}, api.Info{}, 0)
		So(func() { srv.Register(context.Background(), nil) }, ShouldPanic)
	})
}
