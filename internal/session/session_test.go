package session

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"folio/internal/config"
	"folio/internal/filelist"
	"folio/internal/log"
	"folio/internal/testutil"
	"folio/internal/watch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noticeLog struct {
	notices []Notice
}

func (l *noticeLog) Render(n Notice) { l.notices = append(l.notices, n) }

func (l *noticeLog) kinds() []NoticeKind {
	var out []NoticeKind
	for _, n := range l.notices {
		if n.Kind != NoticeList {
			out = append(out, n.Kind)
		}
	}
	return out
}

func (l *noticeLog) has(kind NoticeKind, name string) bool {
	for _, n := range l.notices {
		if n.Kind == kind && n.Name == name {
			return true
		}
	}
	return false
}

func testConfig(policy config.ReloadPolicy) *config.Config {
	cfg := config.New()
	cfg.Browse.Extensions = []string{"jpg"}
	cfg.Browse.Sort = "lexical"
	cfg.Watch.RenameWindow = 20 * time.Millisecond
	cfg.Reload.Policy = policy
	return cfg
}

func newTestSession(t *testing.T, policy config.ReloadPolicy, names ...string) (*Session, *noticeLog, string) {
	t.Helper()
	dir := testutil.MakeFolder(t, names...)

	notices := &noticeLog{}
	var buf bytes.Buffer
	s, err := New(Options{
		Config:   testConfig(policy),
		Renderer: notices,
		Logger:   log.NewLogger(log.WithOutput(&buf)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, notices, dir
}

// pump dispatches queued events on the test goroutine until cond holds.
func pump(t *testing.T, s *Session, cond func() bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for !cond() {
		_, err := s.Queue().WaitAndDispatch(ctx, 20*time.Millisecond)
		require.NoError(t, err, "condition not reached")
	}
}

func current(s *Session) string {
	name, _ := s.Index().Current()
	return name
}

func TestSessionFollowsFolderChanges(t *testing.T) {
	s, notices, dir := newTestSession(t, config.ReloadAuto, "a.jpg", "b.jpg")

	require.NoError(t, s.Open(filepath.Join(dir, "b.jpg")))
	assert.Equal(t, "b.jpg", current(s))
	assert.Equal(t, 1, s.Index().CurrentIndex())

	// Add shifts the open entry by name
	testutil.WriteFile(t, dir, "0.jpg", "x")
	pump(t, s, func() bool { return s.Index().Len() == 3 })
	assert.Equal(t, "b.jpg", current(s))
	assert.Equal(t, 2, s.Index().CurrentIndex())

	// Content change reloads the open file
	testutil.WriteFile(t, dir, "b.jpg", "changed")
	pump(t, s, func() bool { return notices.has(NoticeReload, "b.jpg") })

	// Rename keeps the file open under its new name
	require.NoError(t, os.Rename(filepath.Join(dir, "b.jpg"), filepath.Join(dir, "z.jpg")))
	pump(t, s, func() bool { return current(s) == "z.jpg" })
	assert.Equal(t, []string{"0.jpg", "a.jpg", "z.jpg"}, s.Index().Entries())

	// Removal closes it
	require.NoError(t, os.Remove(filepath.Join(dir, "z.jpg")))
	pump(t, s, func() bool { return notices.has(NoticeRemoved, "z.jpg") })
	assert.Equal(t, filelist.Unset, s.Index().CurrentIndex())
	assert.Equal(t, []string{"0.jpg", "a.jpg"}, s.Index().Entries())
}

func TestSessionFolderRemoved(t *testing.T) {
	s, _, dir := newTestSession(t, config.ReloadAuto, "a.jpg")
	require.NoError(t, s.Open(dir))

	require.NoError(t, os.RemoveAll(dir))
	pump(t, s, func() bool { return !s.Index().Watched() })
	assert.Equal(t, filelist.Populated, s.Index().State())
	assert.Zero(t, s.Index().FolderID())

	// Reopening a folder that is gone fails and keeps the snapshot
	assert.Error(t, s.Open(dir))
	assert.Equal(t, filelist.Populated, s.Index().State())
}

func TestSessionIgnoresNewSubfolders(t *testing.T) {
	s, _, dir := newTestSession(t, config.ReloadAuto, "a.jpg", "c.jpg")
	require.NoError(t, s.Open(dir))

	require.NoError(t, os.Mkdir(filepath.Join(dir, "b.jpg"), 0o755))
	testutil.WriteFile(t, dir, "d.jpg", "x")
	pump(t, s, func() bool { return s.Index().Len() == 3 })
	assert.Equal(t, []string{"a.jpg", "c.jpg", "d.jpg"}, s.Index().Entries())

	// The live list matches a fresh scan
	other := testutil.MakeFolder(t)
	require.NoError(t, s.Open(other))
	require.NoError(t, s.Open(dir))
	assert.Equal(t, []string{"a.jpg", "c.jpg", "d.jpg"}, s.Index().Entries())
}

func TestSessionSkipsDuplicateAdd(t *testing.T) {
	s, _, dir := newTestSession(t, config.ReloadAuto, "a.jpg")
	require.NoError(t, s.Open(dir))

	s.changes.Push(watch.Change{Folder: s.Index().FolderID(), Op: watch.Add, Name: "a.jpg"})
	s.changes.Push(watch.Change{Folder: s.Index().FolderID(), Op: watch.Add, Name: "b.jpg"})
	assert.Equal(t, 2, s.Queue().Dispatch())
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, s.Index().Entries())
	assert.Equal(t, uint64(1), s.Index().Stats().Duplicates)
}

func TestSessionOpenErrors(t *testing.T) {
	s, _, dir := newTestSession(t, config.ReloadAuto, "a.jpg", "notes.txt")

	assert.Error(t, s.Open(filepath.Join(dir, "missing")))
	assert.Error(t, s.OpenFile(filepath.Join(dir, "notes.txt")))
	assert.Equal(t, filelist.Unset, s.Index().CurrentIndex())
}

func TestSessionAdvanceAndOpenRequests(t *testing.T) {
	s, notices, dir := newTestSession(t, config.ReloadAuto, "a.jpg", "b.jpg", "c.jpg")

	s.RequestOpen(filepath.Join(dir, "b.jpg"))
	s.RequestAdvance(1, false)
	s.Queue().Dispatch()
	assert.Equal(t, "c.jpg", current(s))

	// Without wrap the move fails and is reported
	s.RequestAdvance(1, false)
	s.Queue().Dispatch()
	assert.Equal(t, "c.jpg", current(s))
	assert.Contains(t, notices.kinds(), NoticeStatus)

	s.RequestAdvance(1, true)
	s.Queue().Dispatch()
	assert.Equal(t, "a.jpg", current(s))

	s.RequestAdvance(-1, true)
	s.Queue().Dispatch()
	assert.Equal(t, "c.jpg", current(s))

	s.RequestOpen(filepath.Join(dir, "missing.jpg"))
	s.Queue().Dispatch()
	assert.Equal(t, "c.jpg", current(s))
}

func TestSessionSlideshow(t *testing.T) {
	s, _, dir := newTestSession(t, config.ReloadAuto, "a.jpg", "b.jpg")
	require.NoError(t, s.Open(dir))

	s.StartSlideshow(5 * time.Millisecond)
	assert.True(t, s.SlideshowRunning())
	pump(t, s, func() bool { return current(s) == "b.jpg" })
	pump(t, s, func() bool { return current(s) == "a.jpg" })

	s.StopSlideshow()
	assert.False(t, s.SlideshowRunning())
	s.StopSlideshow()
}

func TestSessionRunReturnsOnInput(t *testing.T) {
	input := make(chan struct{})
	s, err := New(Options{Config: testConfig(config.ReloadAuto), Input: input})
	require.NoError(t, err)
	defer s.Close()

	close(input)
	assert.NoError(t, s.Run(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s2, err := New(Options{Config: testConfig(config.ReloadAuto)})
	require.NoError(t, err)
	defer s2.Close()
	assert.NoError(t, s2.Run(ctx))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.New()
	cfg.Reload.Policy = "never"
	_, err := New(Options{Config: cfg})
	assert.Error(t, err)
}

func TestReloadPolicy(t *testing.T) {
	t.Run("auto", func(t *testing.T) {
		r := &noticeLog{}
		p := newReloadPolicy(config.ReloadAuto, r, log.Default())
		p.OnActiveFileModified("a.jpg")
		assert.Equal(t, []NoticeKind{NoticeReload}, r.kinds())
	})

	t.Run("ignore", func(t *testing.T) {
		r := &noticeLog{}
		p := newReloadPolicy(config.ReloadIgnore, r, log.Default())
		p.OnActiveFileModified("a.jpg")
		p.setActive(false)
		p.setActive(true)
		assert.Empty(t, r.notices)
	})

	t.Run("prompt", func(t *testing.T) {
		r := &noticeLog{}
		p := newReloadPolicy(config.ReloadPrompt, r, log.Default())
		p.OnActiveFileModified("a.jpg")
		require.Equal(t, []NoticeKind{NoticePrompt}, r.kinds())
		assert.Contains(t, r.notices[0].Message, "a.jpg")

		assert.True(t, p.answer(true))
		assert.True(t, r.has(NoticeReload, "a.jpg"))
		assert.False(t, p.answer(true))

		p.OnActiveFileModified("a.jpg")
		assert.True(t, p.answer(false))
		assert.Len(t, r.notices, 3)
	})

	t.Run("deferred while inactive", func(t *testing.T) {
		r := &noticeLog{}
		p := newReloadPolicy(config.ReloadAuto, r, log.Default())
		p.setActive(false)
		p.OnActiveFileModified("a.jpg")
		p.OnActiveFileModified("a.jpg")
		assert.Empty(t, r.notices)

		// A rename carries the deferred reload over to the new name
		p.OnActiveFileRenamed("a.jpg", "b.jpg")
		p.setActive(true)
		assert.Equal(t, []NoticeKind{NoticeRenamed, NoticeReload}, r.kinds())
		assert.True(t, r.has(NoticeReload, "b.jpg"))
	})

	t.Run("removed clears deferred reload", func(t *testing.T) {
		r := &noticeLog{}
		p := newReloadPolicy(config.ReloadPrompt, r, log.Default())
		p.setActive(false)
		p.OnActiveFileModified("a.jpg")
		p.OnActiveFileRemoved("a.jpg")
		p.setActive(true)
		assert.Equal(t, []NoticeKind{NoticeRemoved}, r.kinds())
	})
}

func TestNoticeString(t *testing.T) {
	assert.Equal(t, `renamed "a.jpg" -> "b.jpg"`, Notice{Kind: NoticeRenamed, Name: "a.jpg", NewName: "b.jpg"}.String())
	assert.Equal(t, `reload "a.jpg"`, Notice{Kind: NoticeReload, Name: "a.jpg"}.String())
	assert.Equal(t, "status hello", Notice{Kind: NoticeStatus, Message: "hello"}.String())
}
