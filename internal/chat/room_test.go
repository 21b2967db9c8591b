package chat

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/parleychat/parley/internal/codec"
	"github.com/parleychat/parley/internal/errors"
	"github.com/parleychat/parley/internal/logger"
	"github.com/parleychat/parley/internal/remote"
	"github.com/parleychat/parley/internal/sched"
)

func TestMain(m *testing.M) {
	logger.Reset()
	_ = logger.Init(os.DevNull)
	os.Exit(m.Run())
}

// fakeView records what the room asked it to draw.
type fakeView struct {
	near        bool
	bubbles     []Message
	scrolledEnd int
	scrolledTo  []string
	highlighted map[string]bool
	draft       string
}

func newFakeView() *fakeView {
	return &fakeView{near: true, highlighted: make(map[string]bool)}
}

func (v *fakeView) NearBottom() bool { return v.near }

func (v *fakeView) AppendBubble(m Message) { v.bubbles = append(v.bubbles, m) }

func (v *fakeView) RemoveBubble(key string) {
	for i, b := range v.bubbles {
		if b.BubbleKey() == key {
			v.bubbles = append(v.bubbles[:i], v.bubbles[i+1:]...)
			return
		}
	}
}

func (v *fakeView) ScrollToBottom() { v.scrolledEnd++ }

func (v *fakeView) ScrollTo(key string) bool {
	for _, b := range v.bubbles {
		if b.BubbleKey() == key {
			v.scrolledTo = append(v.scrolledTo, key)
			return true
		}
	}
	return false
}

func (v *fakeView) Highlight(key string, on bool) {
	if on {
		v.highlighted[key] = true
	} else {
		delete(v.highlighted, key)
	}
}

func (v *fakeView) SetDraft(text string) { v.draft = text }

func (v *fakeView) keys() []string {
	out := make([]string, len(v.bubbles))
	for i, b := range v.bubbles {
		out[i] = b.BubbleKey()
	}
	return out
}

type seqKeys struct{ n int }

func (s *seqKeys) NewKey() string {
	s.n++
	return fmt.Sprintf("k%d", s.n)
}

var epoch = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

func newTestRoom(t *testing.T) (*Room, *fakeView, *clock.Mock, *sched.Scheduler) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(epoch)
	s := sched.New(mock)
	v := newFakeView()
	return NewRoom("lobby", "me", &seqKeys{}, s, v), v, mock, s
}

func record(key, uid, html string, at time.Time) remote.Record {
	return remote.Record{Key: key, SenderID: uid, Body: codec.Encode(html), SentAt: remote.NewTimestamp(at)}
}

func TestAdded_Mine(t *testing.T) {
	r, v, _, _ := newTestRoom(t)
	r.Added(record("abc123", "me", "<b>hi</b>", epoch))

	m, ok := r.Message("abc123")
	if !ok {
		t.Fatal("mapping should contain abc123")
	}
	if codec.Decode(m.Record.Body) != "<b>hi</b>" {
		t.Errorf("stored body decodes to %q", codec.Decode(m.Record.Body))
	}
	if m.HTML != "<b>hi</b>" {
		t.Errorf("HTML = %q", m.HTML)
	}
	if len(v.bubbles) != 1 || !v.bubbles[0].FromMe {
		t.Errorf("view bubbles = %+v, want one from-me bubble", v.bubbles)
	}
	if v.scrolledEnd != 1 {
		t.Errorf("ScrollToBottom called %d times, want 1", v.scrolledEnd)
	}

	r.Removed(remote.Record{Key: "abc123"})
	if _, ok := r.Message("abc123"); ok {
		t.Error("mapping should not contain abc123 after remove")
	}
	if len(v.bubbles) != 0 {
		t.Errorf("view bubbles = %v after remove", v.keys())
	}
}

func TestAdded_Sanitizes(t *testing.T) {
	r, _, _, _ := newTestRoom(t)
	r.Added(record("k", "bob", `<p>x</p><script>alert(1)</script>`, epoch))
	m, _ := r.Message("k")
	if strings.Contains(m.HTML, "script") {
		t.Errorf("HTML = %q, script should be stripped", m.HTML)
	}
	if m.FromMe {
		t.Error("bob's message should not be from me")
	}
}

func TestAdded_NoScrollWhenReading(t *testing.T) {
	r, v, _, _ := newTestRoom(t)
	v.near = false
	r.Added(record("k", "bob", "<p>x</p>", epoch))
	if v.scrolledEnd != 0 {
		t.Error("should not scroll when the reader is away from the bottom")
	}
}

func TestAdded_Duplicate(t *testing.T) {
	r, v, _, _ := newTestRoom(t)
	rec := record("k", "bob", "<p>x</p>", epoch)
	r.Added(rec)
	r.Added(rec)
	if r.Len() != 1 || len(v.bubbles) != 1 {
		t.Errorf("Len() = %d, bubbles = %d; duplicate add should be ignored", r.Len(), len(v.bubbles))
	}
}

func TestRemoved_Unknown(t *testing.T) {
	r, v, _, _ := newTestRoom(t)
	r.Added(record("k", "bob", "<p>x</p>", epoch))
	r.Removed(remote.Record{Key: "missing"})
	if r.Len() != 1 || len(v.bubbles) != 1 {
		t.Error("removing an unknown key should change nothing")
	}
}

func TestMessages_Order(t *testing.T) {
	r, _, _, _ := newTestRoom(t)
	for _, k := range []string{"a", "b", "c"} {
		r.Added(record(k, "bob", "<p>"+k+"</p>", epoch))
	}
	r.Removed(remote.Record{Key: "b"})
	got := r.Messages()
	if len(got) != 2 || got[0].Record.Key != "a" || got[1].Record.Key != "c" {
		t.Errorf("Messages() = %+v", got)
	}
}

func TestCompose_Placeholder(t *testing.T) {
	r, v, _, _ := newTestRoom(t)
	out, err := r.Compose("  **hello**  ")
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if out.Record.Key != "k1" || out.Record.SenderID != "me" {
		t.Errorf("record = %+v", out.Record)
	}
	if got := codec.Decode(out.Record.Body); got != "<p><strong>hello</strong></p>" {
		t.Errorf("decoded body = %q", got)
	}
	if out.Record.SentAt.Stamp != epoch.UnixMilli() {
		t.Errorf("SentAt.Stamp = %d", out.Record.SentAt.Stamp)
	}
	if out.Draft != "  **hello**  " {
		t.Errorf("Draft = %q", out.Draft)
	}
	if keys := v.keys(); len(keys) != 1 || keys[0] != PlaceholderKey("k1") {
		t.Errorf("bubbles = %v, want placeholder", keys)
	}
	if r.Pending() != 1 || r.Len() != 0 {
		t.Errorf("Pending() = %d, Len() = %d", r.Pending(), r.Len())
	}

	r.Sent(out)
	r.Added(out.Record)
	if keys := v.keys(); len(keys) != 1 || keys[0] != "k1" {
		t.Errorf("bubbles = %v, placeholder should be replaced", keys)
	}
	if r.Pending() != 0 || r.Len() != 1 {
		t.Errorf("Pending() = %d, Len() = %d", r.Pending(), r.Len())
	}
}

func TestCompose_Empty(t *testing.T) {
	r, v, _, _ := newTestRoom(t)
	for _, in := range []string{"", "   ", "\n\t"} {
		if _, err := r.Compose(in); err != ErrEmpty {
			t.Errorf("Compose(%q) error = %v, want ErrEmpty", in, err)
		}
	}
	if len(v.bubbles) != 0 {
		t.Error("empty compose should not add bubbles")
	}
}

func TestCompose_SizeLimit(t *testing.T) {
	r, v, _, _ := newTestRoom(t)

	_, err := r.Compose(strings.Repeat("a", MaxMessageBytes+1))
	if !errors.Is(err, errors.KindSizeLimit) {
		t.Fatalf("Compose(2049) error = %v, want KindSizeLimit", err)
	}
	title, body, ok := Notice(err)
	if !ok || title != TitleWarning || body != "Text exceeds limit of 2KB" {
		t.Errorf("Notice() = %q, %q, %v", title, body, ok)
	}
	if len(v.bubbles) != 0 {
		t.Error("rejected compose should not add bubbles")
	}

	if _, err := r.Compose(strings.Repeat("a", MaxMessageBytes)); err != nil {
		t.Errorf("Compose(2048) error = %v", err)
	}
}

func TestCompose_QuoteCountsTowardLimit(t *testing.T) {
	r, _, _, _ := newTestRoom(t)
	r.Added(record("q", "bob", "<p>quoted</p>", epoch))
	if err := r.Quote("q"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Compose(strings.Repeat("a", MaxMessageBytes-10)); !errors.Is(err, errors.KindSizeLimit) {
		t.Errorf("Compose() error = %v, want KindSizeLimit", err)
	}
	if r.QuoteKey() != "q" {
		t.Error("rejected compose should keep the quote")
	}
}

func TestCompose_WithQuote(t *testing.T) {
	r, _, _, _ := newTestRoom(t)
	r.Added(record("q", "bob", "<p>quoted</p>", epoch))
	if err := r.Quote("q"); err != nil {
		t.Fatal(err)
	}
	out, err := r.Compose("reply")
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	body := codec.Decode(out.Record.Body)
	if !strings.Contains(body, `<blockquote id="tm_q"`) || !strings.Contains(body, "<p>reply</p>") {
		t.Errorf("body = %q", body)
	}
	if r.QuoteKey() != "" {
		t.Error("quote should be consumed by the send")
	}
	if out.Quote == "" {
		t.Error("Outgoing should carry the consumed quote")
	}
}

func TestSendFailed_Permission(t *testing.T) {
	r, v, _, _ := newTestRoom(t)
	r.Added(record("q", "bob", "<p>quoted</p>", epoch))
	_ = r.Quote("q")
	out, err := r.Compose("draft text")
	if err != nil {
		t.Fatal(err)
	}

	err = r.SendFailed(out, fmt.Errorf("PERMISSION_DENIED: Permission denied"))
	title, body, ok := Notice(err)
	if !ok || title != TitleFatal || body != "You are not allowed to take this action." {
		t.Errorf("Notice() = %q, %q, %v", title, body, ok)
	}
	if v.draft != "draft text" {
		t.Errorf("draft = %q, want restored", v.draft)
	}
	if r.Pending() != 0 {
		t.Error("placeholder should be removed")
	}
	if keys := v.keys(); len(keys) != 1 || keys[0] != "q" {
		t.Errorf("bubbles = %v", keys)
	}
	if r.QuoteKey() != "q" {
		t.Errorf("QuoteKey() = %q, quote should be restored", r.QuoteKey())
	}
}

func TestSendFailed_Generic(t *testing.T) {
	r, v, _, _ := newTestRoom(t)
	out, _ := r.Compose("hello")
	err := r.SendFailed(out, fmt.Errorf("connection reset"))
	if !errors.Is(err, errors.KindRemote) {
		t.Errorf("SendFailed() = %v, want KindRemote", err)
	}
	if _, _, ok := Notice(err); ok {
		t.Error("generic failures should not produce an alert")
	}
	if v.draft != "hello" {
		t.Errorf("draft = %q", v.draft)
	}
}

func TestCheckRetract(t *testing.T) {
	r, _, mock, _ := newTestRoom(t)
	r.Added(record("mine", "me", "<p>a</p>", epoch))
	r.Added(record("theirs", "bob", "<p>b</p>", epoch))

	if err := r.CheckRetract("mine"); err != nil {
		t.Errorf("CheckRetract(mine) = %v", err)
	}

	err := r.CheckRetract("theirs")
	if _, body, _ := Notice(err); body != "You can unsend a message only if you have sent it." {
		t.Errorf("CheckRetract(theirs) = %v", err)
	}

	mock.Add(time.Hour)
	if err := r.CheckRetract("mine"); err != nil {
		t.Errorf("CheckRetract at exactly 1h = %v", err)
	}
	mock.Add(time.Millisecond)
	err = r.CheckRetract("mine")
	title, body, _ := Notice(err)
	if title != TitleNotAllowed || body != "You can only unsend a message within 1 hour of sending it." {
		t.Errorf("CheckRetract after 1h = %q, %q", title, body)
	}

	if err := r.CheckRetract("missing"); !errors.Is(err, errors.KindNotFound) {
		t.Errorf("CheckRetract(missing) = %v", err)
	}
}

func TestCheckRetract_OwnerBeforeAge(t *testing.T) {
	r, _, mock, _ := newTestRoom(t)
	r.Added(record("old", "bob", "<p>a</p>", epoch))
	mock.Add(2 * time.Hour)
	_, body, _ := Notice(r.CheckRetract("old"))
	if body != "You can unsend a message only if you have sent it." {
		t.Errorf("body = %q, ownership is checked first", body)
	}
}

func TestRetractFailed(t *testing.T) {
	r, _, _, _ := newTestRoom(t)
	if err := r.RetractFailed("k", fmt.Errorf("denied")); !errors.Is(err, errors.KindPermission) {
		t.Errorf("RetractFailed() = %v", err)
	}
	if err := r.RetractFailed("k", fmt.Errorf("timeout")); !errors.Is(err, errors.KindRemote) {
		t.Errorf("RetractFailed() = %v", err)
	}
}

func TestSubscriptionFailed(t *testing.T) {
	r, _, _, _ := newTestRoom(t)
	_, body, ok := Notice(r.SubscriptionFailed(fmt.Errorf("permission_denied at /rooms")))
	if !ok || body != "You are not allowed to view this page." {
		t.Errorf("Notice() = %q, %v", body, ok)
	}
	if _, _, ok := Notice(r.SubscriptionFailed(fmt.Errorf("eof"))); ok {
		t.Error("network failures should not alert")
	}
}

func TestQuote(t *testing.T) {
	r, _, _, _ := newTestRoom(t)
	if err := r.Quote("missing"); !errors.Is(err, errors.KindNotFound) {
		t.Errorf("Quote(missing) = %v", err)
	}
	r.Added(record("q", "bob", "<p>quoted</p>", epoch))
	if err := r.Quote("q"); err != nil {
		t.Fatal(err)
	}
	if p := r.Preview(""); !strings.Contains(p, `id="tm_q"`) {
		t.Errorf("Preview() = %q, should show the quote", p)
	}
	r.ClearQuote()
	if r.QuoteKey() != "" || r.Preview("") != "" {
		t.Error("ClearQuote should drop the quote")
	}
}

func TestQuote_ClearedWhenOriginalRemoved(t *testing.T) {
	r, _, _, _ := newTestRoom(t)
	r.Added(record("q", "bob", "<p>quoted</p>", epoch))
	_ = r.Quote("q")
	r.Removed(remote.Record{Key: "q"})
	if r.QuoteKey() != "" {
		t.Error("quote of a removed message should be dropped")
	}
}

func TestPreview(t *testing.T) {
	r, _, _, _ := newTestRoom(t)
	if p := r.Preview("  "); p != "" {
		t.Errorf("Preview(blank) = %q", p)
	}
	if p := r.Preview("*x*"); p != "<p><em>x</em></p>" {
		t.Errorf("Preview() = %q", p)
	}
	if p := r.Preview(`<img src=x onerror="boom()">`); strings.Contains(p, "onerror") {
		t.Errorf("Preview() = %q, should be sanitized", p)
	}
}

func TestFollowQuote(t *testing.T) {
	r, v, mock, s := newTestRoom(t)
	r.Added(record("a", "bob", "<p>a</p>", epoch))
	r.Added(record("b", "bob", "<p>b</p>", epoch))

	if r.FollowQuote("missing") {
		t.Error("FollowQuote(missing) should fail")
	}
	if !r.FollowQuote("a") {
		t.Fatal("FollowQuote(a) failed")
	}
	if !v.highlighted["a"] || r.Highlighted() != "a" {
		t.Error("a should be highlighted")
	}

	mock.Add(5 * time.Second)
	s.RunDue()
	r.FollowQuote("b")
	if v.highlighted["a"] || !v.highlighted["b"] {
		t.Errorf("highlighted = %v, want only b", v.highlighted)
	}

	mock.Add(5 * time.Second)
	s.RunDue()
	if !v.highlighted["b"] {
		t.Error("restarted highlight should still be on after the first timer's deadline")
	}

	mock.Add(5 * time.Second)
	s.RunDue()
	if v.highlighted["b"] || r.Highlighted() != "" {
		t.Error("highlight should clear after 10s")
	}
	if len(v.scrolledTo) != 2 {
		t.Errorf("scrolledTo = %v", v.scrolledTo)
	}
}

func TestFollowQuote_SameKeyRestarts(t *testing.T) {
	r, v, mock, s := newTestRoom(t)
	r.Added(record("a", "bob", "<p>a</p>", epoch))
	r.FollowQuote("a")
	mock.Add(9 * time.Second)
	s.RunDue()
	r.FollowQuote("a")
	mock.Add(9 * time.Second)
	s.RunDue()
	if !v.highlighted["a"] {
		t.Error("highlight should be restarted")
	}
	if s.Len() != 1 {
		t.Errorf("scheduler holds %d tasks, want 1", s.Len())
	}
}

func TestCopyTextAndImages(t *testing.T) {
	r, _, _, _ := newTestRoom(t)
	r.Added(record("k", "bob", `<p>line one<br>
line <b>two</b> <img src="https://x/cat.png" alt="cat"></p>`, epoch))

	text, err := r.CopyText("k")
	if err != nil {
		t.Fatal(err)
	}
	if text != "line one\nline two " {
		t.Errorf("CopyText() = %q", text)
	}
	if _, err := r.CopyText("missing"); !errors.Is(err, errors.KindNotFound) {
		t.Errorf("CopyText(missing) = %v", err)
	}
	imgs := r.Images("k")
	if len(imgs) != 1 || imgs[0].Alt != "cat" {
		t.Errorf("Images() = %+v", imgs)
	}
}

func TestDetails(t *testing.T) {
	r, _, mock, _ := newTestRoom(t)
	r.Added(record("mine", "me", "<p>a</p>", epoch))
	r.Added(record("theirs", "bob", "<p>b</p>", epoch))
	mock.Add(3 * time.Minute)

	d, err := r.Details("mine")
	if err != nil {
		t.Fatal(err)
	}
	if d.Sender != "You" || d.Date != "Tue, Mar 5, 2024" || d.Clock != "14:07:09 UTC" {
		t.Errorf("Details() = %+v", d)
	}
	if d.Age != "3 minutes ago" {
		t.Errorf("Age = %q", d.Age)
	}
	if !strings.Contains(d.Summary(), "Sent by:</b> You") {
		t.Errorf("Summary() = %q", d.Summary())
	}

	d, _ = r.Details("theirs")
	if d.Sender != "bob" {
		t.Errorf("Sender = %q", d.Sender)
	}
	adv := d.Advanced()
	if !strings.Contains(adv, "&lt;p&gt;b&lt;/p&gt;") || !strings.Contains(adv, "theirs") {
		t.Errorf("Advanced() = %q", adv)
	}

	if _, err := r.Details("missing"); !errors.Is(err, errors.KindNotFound) {
		t.Errorf("Details(missing) = %v", err)
	}
}

func TestTitle(t *testing.T) {
	mock := clock.NewMock()
	r := NewRoom("me:u1:u2:bob", "me", &seqKeys{}, sched.New(mock), newFakeView())
	if r.Title() != "bob" {
		t.Errorf("Title() = %q", r.Title())
	}
}
