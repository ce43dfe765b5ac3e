package chat

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	t := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func newTestState() *State {
	s := NewState(WithClock(fixedClock()))
	s.Initialize("cli-1-1")
	return s
}

func pdf(name string) File {
	return File{Name: name, Path: "/tmp/" + name, Size: 1024, MediaType: "application/pdf"}
}

func uploadDoc(t *testing.T, s *State, docID, filename string, chunks int) {
	t.Helper()
	require.NoError(t, s.BeginUpload(pdf(filename)))
	s.CompleteUpload(UploadResult{Success: true, DocID: docID, Filename: filename, ChunksCount: chunks, Message: "ok"})
}

func TestParseChannel(t *testing.T) {
	cases := map[string]Channel{
		"document":  ChannelDocument,
		"pdf":       ChannelDocument,
		"assistant": ChannelAssistant,
		" AI ":      ChannelAssistant,
	}
	for in, want := range cases {
		got, ok := ParseChannel(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseChannel("images")
	assert.False(t, ok)

	assert.Equal(t, "pdf", ChannelDocument.WireName())
	assert.Equal(t, "ai", ChannelAssistant.WireName())
}

func TestSwitchChannel(t *testing.T) {
	s := newTestState()
	assert.Equal(t, ChannelDocument, s.Active())

	assert.True(t, s.SwitchChannel(ChannelAssistant))
	assert.Equal(t, ChannelAssistant, s.Active())

	assert.True(t, s.SwitchChannel(ChannelAssistant))
	assert.Equal(t, ChannelAssistant, s.Active())

	assert.False(t, s.SwitchChannel(Channel("images")))
	assert.Equal(t, ChannelAssistant, s.Active())
}

func TestInputEnabledTracksDocument(t *testing.T) {
	s := newTestState()
	check := func() {
		t.Helper()
		assert.Equal(t, s.Document().Present(), s.InputEnabled(ChannelDocument))
		assert.True(t, s.InputEnabled(ChannelAssistant))
	}

	check()
	assert.False(t, s.InputEnabled(ChannelDocument))

	require.NoError(t, s.BeginUpload(pdf("a.pdf")))
	check()
	s.CompleteUpload(UploadResult{Success: true, DocID: "d1", Filename: "a.pdf", ChunksCount: 3})
	check()
	assert.True(t, s.InputEnabled(ChannelDocument))

	require.NoError(t, s.BeginUpload(pdf("b.pdf")))
	s.CompleteUpload(UploadResult{Success: false, Reason: "bad pdf"})
	check()
	assert.False(t, s.InputEnabled(ChannelDocument))

	uploadDoc(t, s, "d2", "c.pdf", 1)
	require.NoError(t, s.RemoveDocument())
	check()
}

func TestAssistantInputNeedsInitialization(t *testing.T) {
	s := NewState()
	assert.False(t, s.InputEnabled(ChannelAssistant))
	s.Initialize("cli-1-2")
	assert.True(t, s.InputEnabled(ChannelAssistant))
}

func TestRestoreHistoryReplacesEverything(t *testing.T) {
	s := newTestState()
	s.SwitchChannel(ChannelAssistant)
	_, ok := s.Submit("stale")
	require.True(t, ok)

	restored := History{
		ChannelDocument: {
			{Role: RoleUser, Text: "q1", Timestamp: 1},
			{Role: RoleAssistant, Text: "a1", Chunks: []string{"c1"}, Timestamp: 2},
			{Role: RoleUser, Text: "q2", Timestamp: 3},
		},
		ChannelAssistant: {
			{Role: RoleUser, Text: "hi", Timestamp: 4},
			{Role: RoleAssistant, Text: "hello", Timestamp: 5},
		},
	}
	s.RestoreHistory(restored)

	assert.Equal(t, restored[ChannelDocument], s.Messages(ChannelDocument))
	assert.Equal(t, restored[ChannelAssistant], s.Messages(ChannelAssistant))

	// The restored copy is independent of the caller's slices.
	restored[ChannelDocument][0].Text = "changed"
	assert.Equal(t, "q1", s.Messages(ChannelDocument)[0].Text)
}

func TestRestoreHistoryFillsMissingChannel(t *testing.T) {
	s := newTestState()
	s.RestoreHistory(History{ChannelAssistant: {{Role: RoleUser, Text: "x"}}})
	assert.NotNil(t, s.Messages(ChannelDocument))
	assert.Empty(t, s.Messages(ChannelDocument))
	assert.Len(t, s.Messages(ChannelAssistant), 1)
}

func TestNewMessageDropsEmptyChunks(t *testing.T) {
	m := NewMessage(RoleAssistant, "a", []string{}, time.Now())
	assert.Nil(t, m.Chunks)
	assert.False(t, m.HasContext())

	m = NewMessage(RoleAssistant, "a", []string{"x"}, time.Now())
	assert.True(t, m.HasContext())
}

func TestUploadRejectsNonPDF(t *testing.T) {
	s := newTestState()
	err := s.BeginUpload(File{Name: "notes.txt", Size: 10, MediaType: "text/plain"})
	require.ErrorIs(t, err, ErrNotPDF)

	u := s.Upload()
	assert.Equal(t, UploadIdle, u.Phase)
	assert.Equal(t, StatusError, u.Status.Kind)
	assert.Equal(t, StatusNotPDF, u.Status.Text)
	assert.False(t, s.Document().Present())
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	s := newTestState()
	f := pdf("big.pdf")
	f.Size = MaxUploadSize + 1
	require.ErrorIs(t, s.BeginUpload(f), ErrFileTooLarge)
	assert.Equal(t, UploadIdle, s.Upload().Phase)
}

func TestUploadIsNotReentrant(t *testing.T) {
	s := newTestState()
	require.NoError(t, s.BeginUpload(pdf("a.pdf")))
	err := s.BeginUpload(pdf("b.pdf"))
	require.True(t, errors.Is(err, ErrUploadInProgress))
	assert.Equal(t, "a.pdf", s.Upload().File.Name)
	require.ErrorIs(t, s.RemoveDocument(), ErrUploadInProgress)
}

func TestUploadSuccessAppendsMessages(t *testing.T) {
	s := newTestState()
	require.NoError(t, s.BeginUpload(pdf("report.pdf")))
	s.CompleteUpload(UploadResult{
		Success:     true,
		DocID:       "d1",
		Filename:    "report.pdf",
		ChunksCount: 12,
		Message:     "PDF processed successfully! Created 12 chunks.",
	})

	assert.Equal(t, UploadSucceeded, s.Upload().Phase)
	assert.Equal(t, Document{DocID: "d1", Filename: "report.pdf"}, s.Document())
	assert.True(t, s.InputEnabled(ChannelDocument))
	assert.Equal(t, StatusSuccess, s.Upload().Status.Kind)

	msgs := s.Messages(ChannelDocument)
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Text, "12")
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Contains(t, msgs[1].Text, "report.pdf")
	assert.Empty(t, s.Messages(ChannelAssistant))
}

func TestUploadFailureClearsDocument(t *testing.T) {
	s := newTestState()
	uploadDoc(t, s, "d1", "first.pdf", 2)

	require.NoError(t, s.BeginUpload(pdf("second.pdf")))
	s.CompleteUpload(UploadResult{Success: false, Reason: "Could not extract text from PDF"})

	u := s.Upload()
	assert.Equal(t, UploadFailed, u.Phase)
	assert.Equal(t, "Could not extract text from PDF", u.Status.Text)
	assert.False(t, s.Document().Present())
	assert.Zero(t, u.Progress.Percent())

	require.NoError(t, s.BeginUpload(pdf("third.pdf")))
	s.CompleteUpload(UploadResult{Network: true})
	assert.Equal(t, StatusUploadNetwork, s.Upload().Status.Text)

	require.NoError(t, s.BeginUpload(pdf("fourth.pdf")))
	s.CompleteUpload(UploadResult{})
	assert.Equal(t, StatusUploadFailed, s.Upload().Status.Text)
}

func TestCompleteUploadWithoutUploadIsIgnored(t *testing.T) {
	s := newTestState()
	s.CompleteUpload(UploadResult{Success: true, DocID: "d1", Filename: "x.pdf"})
	assert.False(t, s.Document().Present())
	assert.Empty(t, s.Messages(ChannelDocument))
}

func TestProgressNeverCompletesEarly(t *testing.T) {
	var p Progress
	for range 1000 {
		p.Tick()
		require.Less(t, p.Percent(), 100.0)
		require.LessOrEqual(t, p.Percent(), ProgressCap)
	}
	p.Advance(50)
	assert.Equal(t, ProgressCap, p.Percent())
	p.Advance(-10)
	assert.Equal(t, ProgressCap, p.Percent())

	p.Finish()
	assert.Equal(t, 100.0, p.Percent())
	p.Advance(5)
	assert.Equal(t, 100.0, p.Percent())
}

func TestTickUploadOnlyWhileUploading(t *testing.T) {
	s := newTestState()
	s.TickUpload()
	assert.Zero(t, s.Upload().Progress.Percent())

	require.NoError(t, s.BeginUpload(pdf("a.pdf")))
	for range 50 {
		s.TickUpload()
	}
	assert.Greater(t, s.Upload().Progress.Percent(), 0.0)
	assert.LessOrEqual(t, s.Upload().Progress.Percent(), ProgressCap)
}
