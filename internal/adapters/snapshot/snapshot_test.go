package snapshot_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/upright/internal/adapters/repository"
	"github.com/okian/upright/internal/adapters/snapshot"
	"github.com/okian/upright/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWriter_FlushAndLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with some state and a writer", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "state.json")

		store := repository.NewMemStore()
		sess, err := store.CreateSession(ctx, nil, nil)
		So(err, ShouldBeNil)
		_, err = store.AppendEvent(ctx, sess.ID, &model.Event{Label: "good"})
		So(err, ShouldBeNil)

		writer := snapshot.NewWriter(store, snapshot.WithPath(path))

		Convey("When flushing and loading into a fresh store", func() {
			So(writer.Flush(ctx), ShouldBeNil)

			fresh := repository.NewMemStore()
			reader := snapshot.NewWriter(fresh, snapshot.WithPath(path))
			So(reader.Load(ctx), ShouldBeNil)

			Convey("Then the state round-trips", func() {
				_, sessions, events := fresh.Counts(ctx)
				So(sessions, ShouldEqual, 1)
				So(events, ShouldEqual, 1)
			})
		})

		Convey("When loading from a missing file", func() {
			fresh := repository.NewMemStore()
			reader := snapshot.NewWriter(fresh, snapshot.WithPath(filepath.Join(dir, "absent.json")))

			Convey("Then the service starts empty without error", func() {
				So(reader.Load(ctx), ShouldBeNil)
				_, sessions, _ := fresh.Counts(ctx)
				So(sessions, ShouldEqual, 0)
			})
		})

		Convey("When loading from a corrupt file", func() {
			corrupt := filepath.Join(dir, "corrupt.json")
			So(os.WriteFile(corrupt, []byte("{not json"), 0o644), ShouldBeNil)

			fresh := repository.NewMemStore()
			reader := snapshot.NewWriter(fresh, snapshot.WithPath(corrupt))

			Convey("Then the corrupt file is ignored", func() {
				So(reader.Load(ctx), ShouldBeNil)
				_, sessions, _ := fresh.Counts(ctx)
				So(sessions, ShouldEqual, 0)
			})
		})
	})
}

func TestWriter_RunCoalesces(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running writer", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "state.json")

		store := repository.NewMemStore()
		writer := snapshot.NewWriter(store, snapshot.WithPath(path))

		runCtx, cancel := context.WithCancel(ctx)
		go writer.Run(runCtx)

		Convey("When triggering after a mutation", func() {
			_, err := store.CreateSession(ctx, nil, nil)
			So(err, ShouldBeNil)
			writer.Trigger()
			writer.Trigger() // coalesces with the first
			writer.Trigger()

			Convey("Then the file appears", func() {
				So(waitForFile(path, time.Second), ShouldBeTrue)
				cancel()
				writer.Wait()
			})
		})

		Convey("When shutting down", func() {
			_, err := store.CreateSession(ctx, nil, nil)
			So(err, ShouldBeNil)
			cancel()
			writer.Wait()

			Convey("Then a final flush ran", func() {
				_, statErr := os.Stat(path)
				So(statErr, ShouldBeNil)
			})
		})
	})
}

func TestWriter_Disabled(t *testing.T) {
	ctx := context.Background()

	Convey("Given a disabled writer", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "state.json")

		store := repository.NewMemStore()
		writer := snapshot.NewWriter(store, snapshot.WithPath(path), snapshot.WithEnabled(false))

		Convey("When flushing and triggering", func() {
			So(writer.Flush(ctx), ShouldBeNil)
			writer.Trigger()

			Convey("Then nothing touches the filesystem", func() {
				_, err := os.Stat(path)
				So(os.IsNotExist(err), ShouldBeTrue)
			})
		})
	})
}

func waitForFile(path string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
