package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	stdsync "sync"
	"sync/atomic"
	"time"

	"github.com/docpilot-cli/docpilot/internal/api"
	"github.com/docpilot-cli/docpilot/internal/clock"
)

// noticeTTL is how long an undismissed upload notice stays visible.
const noticeTTL = 5 * time.Second

// ErrUploadInFlight is returned when an upload is requested while a
// previous one has not finished. The coordinator admits one upload at
// a time.
var ErrUploadInFlight = errors.New("an upload is already in progress")

// Notice is the transient feedback from the last upload.
type Notice struct {
	Message  string
	IsError  bool
	Document *api.Document
	PostedAt time.Time
}

// Uploader submits documents and tracks transient success and failure
// feedback for the presentation layer.
type Uploader struct {
	client  *api.Client
	clk     clock.Clock
	refresh func(context.Context)
	notify  func()

	uploading atomic.Bool

	mu         stdsync.Mutex
	notice     *Notice
	noticeSeq  uint64
	clearTimer clock.Timer
}

// NewUploader creates an upload coordinator. refresh, if not nil, is
// invoked after a successful upload to silently re-fetch the list so
// the new document appears. notify, if not nil, is called whenever
// the notice changes; it must not block.
func NewUploader(client *api.Client, clk clock.Clock, refresh func(context.Context), notify func()) *Uploader {
	if clk == nil {
		clk = clock.Real()
	}
	return &Uploader{client: client, clk: clk, refresh: refresh, notify: notify}
}

// Uploading reports whether an upload is in flight. The presentation
// layer disables its input mechanism while true.
func (u *Uploader) Uploading() bool {
	return u.uploading.Load()
}

// Upload submits the file at path. On success the returned document
// has status pending and a success notice is posted; on failure an
// error notice carries the server's detail message. Either notice
// auto-clears after a fixed delay unless dismissed first.
func (u *Uploader) Upload(ctx context.Context, path string) (*api.Document, error) {
	if !u.uploading.CompareAndSwap(false, true) {
		return nil, ErrUploadInFlight
	}
	defer u.uploading.Store(false)

	doc, err := u.client.UploadDocument(ctx, path)
	if err != nil {
		detail := api.ErrorDetail(err, "Upload failed")
		u.post(&Notice{Message: detail, IsError: true})
		return nil, &api.TransferError{Op: "upload " + filepath.Base(path), Err: err}
	}

	slog.Debug("uploaded document", "id", doc.ID, "filename", doc.OriginalFilename, "status", doc.Status)
	u.post(&Notice{
		Message:  fmt.Sprintf("Successfully uploaded %q", doc.OriginalFilename),
		Document: doc,
	})

	if u.refresh != nil {
		u.refresh(ctx)
	}
	return doc, nil
}

// Notice returns the current notice, reporting false when none is
// active.
func (u *Uploader) Notice() (Notice, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.notice == nil {
		return Notice{}, false
	}
	return *u.notice, true
}

// Dismiss clears the notice ahead of its auto-clear deadline.
func (u *Uploader) Dismiss() {
	u.mu.Lock()
	u.clearLocked()
	u.mu.Unlock()
	u.changed()
}

// post installs a notice and schedules its auto-clear. A newer notice
// supersedes the pending clear of an older one.
func (u *Uploader) post(n *Notice) {
	n.PostedAt = u.clk.Now()

	u.mu.Lock()
	if u.clearTimer != nil {
		u.clearTimer.Stop()
	}
	u.noticeSeq++
	seq := u.noticeSeq
	u.notice = n
	u.clearTimer = u.clk.AfterFunc(noticeTTL, func() {
		u.mu.Lock()
		// Only the notice this timer was armed for is cleared; a
		// replacement posted in the meantime keeps its own timer.
		if u.noticeSeq == seq {
			u.clearLocked()
		}
		u.mu.Unlock()
		u.changed()
	})
	u.mu.Unlock()
	u.changed()
}

func (u *Uploader) clearLocked() {
	if u.clearTimer != nil {
		u.clearTimer.Stop()
		u.clearTimer = nil
	}
	u.notice = nil
}

func (u *Uploader) changed() {
	if u.notify != nil {
		u.notify()
	}
}
