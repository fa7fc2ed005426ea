package channel

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commhub/internal/pkg/errs"
)

func TestStoreSeedsFixedChannels(t *testing.T) {
	s := NewStore()

	channels := s.Channels()
	require.Len(t, channels, 3)
	assert.Equal(t, "general", channels[0].ID)
	assert.Equal(t, "announcements", channels[1].ID)
	assert.Equal(t, "events", channels[2].ID)

	assert.True(t, s.Exists("general"))
	assert.False(t, s.Exists("random"))
}

func TestAppendValidMessage(t *testing.T) {
	s := NewStore()

	msg, customErr := s.Append("general", "user-1", "hello", "")
	require.Nil(t, customErr)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "user-1", msg.UserID)
	assert.Equal(t, "general", msg.ChannelID)
	assert.Equal(t, KindText, msg.Type, "blank kind defaults to text")
	assert.False(t, msg.Timestamp.IsZero())

	history := s.History("general")
	require.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Content)
}

func TestAppendRejectsUnknownChannel(t *testing.T) {
	s := NewStore()

	_, customErr := s.Append("nope", "user-1", "hello", KindText)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrUnknownChannel, customErr.Code)

	assert.Empty(t, s.Recent(24*time.Hour), "a rejected message never appears in any view")
	assert.Empty(t, s.ByType(KindText, 10))
}

func TestAppendRejectsBlankContent(t *testing.T) {
	s := NewStore()

	_, customErr := s.Append("general", "user-1", "   \t\n", KindText)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrEmptyContent, customErr.Code)
	assert.Empty(t, s.History("general"))
}

func TestAppendRejectsOversizedContent(t *testing.T) {
	s := NewStore()

	_, customErr := s.Append("general", "user-1", strings.Repeat("a", MaxContentBytes+1), KindText)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrContentTooLong, customErr.Code)
}

func TestAppendRejectsUnknownKind(t *testing.T) {
	s := NewStore()

	_, customErr := s.Append("general", "user-1", "hello", "gif")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrInvalidMessageType, customErr.Code)
}

func TestRecentFiltersByWindow(t *testing.T) {
	s := NewStore()

	_, customErr := s.Append("general", "user-1", "first", KindText)
	require.Nil(t, customErr)
	_, customErr = s.Append("announcements", "user-1", "second", KindAnnouncement)
	require.Nil(t, customErr)

	recent := s.Recent(time.Hour)
	require.Len(t, recent, 2)
	assert.Equal(t, "first", recent[0].Content, "ascending insertion order")

	inGeneral := s.RecentIn("general", time.Hour)
	require.Len(t, inGeneral, 1)
	assert.Equal(t, "first", inGeneral[0].Content)

	// Messages older than the cutoff fall out of the window.
	s.mu.Lock()
	s.messages[0].Timestamp = time.Now().Add(-2 * time.Hour)
	s.mu.Unlock()

	recent = s.Recent(time.Hour)
	require.Len(t, recent, 1)
	assert.Equal(t, "second", recent[0].Content)
}

func TestByTypeReturnsNewestFirstTruncated(t *testing.T) {
	s := NewStore()

	for _, content := range []string{"one", "two", "three"} {
		_, customErr := s.Append("general", "user-1", content, KindText)
		require.Nil(t, customErr)
	}
	_, customErr := s.Append("announcements", "user-1", "notice", KindAnnouncement)
	require.Nil(t, customErr)

	texts := s.ByType(KindText, 2)
	require.Len(t, texts, 2)
	assert.Equal(t, "three", texts[0].Content)
	assert.Equal(t, "two", texts[1].Content)

	notices := s.ByType(KindAnnouncement, 10)
	require.Len(t, notices, 1)
	assert.Equal(t, "notice", notices[0].Content)
}
