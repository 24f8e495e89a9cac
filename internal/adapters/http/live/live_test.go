package live_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/net/websocket"

	"github.com/okian/upright/internal/adapters/http/live"
	"github.com/okian/upright/internal/app"
	"github.com/okian/upright/internal/auth"
	"github.com/okian/upright/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func newFeedFixture() (*httptest.Server, *app.Service) {
	cfg := config.New()
	cfg.PersistSnapshots = false
	svc := app.New(cfg, app.WithAuthManager(auth.NewManager("test-secret", auth.WithBcryptCost(4))))
	mux := http.NewServeMux()
	live.NewHandler(svc).Register(mux)
	return httptest.NewServer(mux), svc
}

func dial(ts *httptest.Server, query string) (*websocket.Conn, error) {
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/posture" + query
	return websocket.Dial(url, "", "http://localhost/")
}

func loginToken(svc *app.Service) string {
	ctx := context.Background()
	_, err := svc.Signup(ctx, map[string]any{"email": "live@example.com", "password": "pw123456"})
	if err != nil {
		panic(err)
	}
	token, err := svc.Login(ctx, "live@example.com", "pw123456")
	if err != nil {
		panic(err)
	}
	return token
}

func TestFeedAuth(t *testing.T) {
	Convey("Given the feed endpoint", t, func() {
		ts, _ := newFeedFixture()
		defer ts.Close()

		Convey("When connecting without a token", func() {
			conn, err := dial(ts, "")
			So(err, ShouldBeNil)
			defer func() { _ = conn.Close() }()

			Convey("Then the server closes before sending anything", func() {
				var msg map[string]any
				So(websocket.JSON.Receive(conn, &msg), ShouldNotBeNil)
			})
		})

		Convey("When connecting with a garbage token", func() {
			conn, err := dial(ts, "?token=not-a-jwt")
			So(err, ShouldBeNil)
			defer func() { _ = conn.Close() }()

			Convey("Then the server closes before sending anything", func() {
				var msg map[string]any
				So(websocket.JSON.Receive(conn, &msg), ShouldNotBeNil)
			})
		})
	})
}

func TestFeedStream(t *testing.T) {
	ctx := context.Background()

	Convey("Given an authenticated feed connection", t, func() {
		ts, svc := newFeedFixture()
		defer ts.Close()
		token := loginToken(svc)

		sess, err := svc.StartSession(ctx, nil, map[string]any{})
		So(err, ShouldBeNil)
		_, err = svc.SubmitEvents(ctx, sess.ID, map[string]any{"label": "earlier", "angle": 7.0})
		So(err, ShouldBeNil)

		conn, err := dial(ts, "?token="+token)
		So(err, ShouldBeNil)
		defer func() { _ = conn.Close() }()

		Convey("When the handshake completes", func() {
			var history map[string]any
			So(websocket.JSON.Receive(conn, &history), ShouldBeNil)

			Convey("Then the first message replays recent events", func() {
				So(history["type"], ShouldEqual, "history")
				events := history["events"].([]any)
				So(events, ShouldHaveLength, 1)
				first := events[0].(map[string]any)
				So(first["label"], ShouldEqual, "earlier")
			})

			Convey("Then client frames are acknowledged", func() {
				So(websocket.Message.Send(conn, `{"hello":"world"}`), ShouldBeNil)
				var ack map[string]any
				So(websocket.JSON.Receive(conn, &ack), ShouldBeNil)
				So(ack["ack"], ShouldEqual, true)
			})

			Convey("Then new events stream as posture messages", func() {
				_, err := svc.SubmitEvents(ctx, sess.ID, map[string]any{"label": "fresh", "angle": 9.0})
				So(err, ShouldBeNil)

				var msg map[string]any
				So(websocket.JSON.Receive(conn, &msg), ShouldBeNil)
				So(msg["type"], ShouldEqual, "posture")
				event := msg["event"].(map[string]any)
				So(event["label"], ShouldEqual, "fresh")
				So(event["session_id"], ShouldEqual, sess.ID)
			})
		})
	})
}
