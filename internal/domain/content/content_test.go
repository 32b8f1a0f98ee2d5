package content

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoll_CanVote(t *testing.T) {
	p, err := NewPoll(uuid.New(), uuid.New(), "Favourite colour?")
	require.NoError(t, err)
	now := time.Now()

	assert.Error(t, p.CanVote(false, now), "unpublished poll")

	require.NoError(t, p.Update(p.Name, "", true, false, false, 0))
	assert.NoError(t, p.CanVote(false, now))
	assert.Error(t, p.CanVote(true, now), "guests not allowed")

	past := now.Add(-48 * time.Hour)
	ended := now.Add(-24 * time.Hour)
	require.NoError(t, p.SetPeriod(&past, &ended))
	assert.Error(t, p.CanVote(false, now), "poll ended")
}

func TestPoll_Answers(t *testing.T) {
	p, err := NewPoll(uuid.New(), uuid.New(), "Q")
	require.NoError(t, err)
	a, err := p.AddAnswer("Red", 1)
	require.NoError(t, err)
	_, err = p.AddAnswer("Blue", 2)
	require.NoError(t, err)

	found := p.FindAnswer(a.ID)
	require.NotNil(t, found)
	found.NumberOfVotes = 3
	assert.Equal(t, 3, p.TotalVotes())
	assert.Nil(t, p.FindAnswer(uuid.New()))

	_, err = p.AddAnswer("  ", 3)
	assert.Error(t, err)
}

func TestNewsItem_Visibility(t *testing.T) {
	n, err := NewNewsItem(uuid.New(), uuid.New(), "Launch", "short", "full")
	require.NoError(t, err)
	now := time.Now()
	assert.False(t, n.IsVisibleAt(now))

	future := now.Add(time.Hour)
	require.NoError(t, n.Publish(true, &future, nil))
	assert.False(t, n.IsVisibleAt(now))
	assert.True(t, n.IsVisibleAt(future.Add(time.Minute)))
}

func TestNewsItem_Comments(t *testing.T) {
	n, err := NewNewsItem(uuid.New(), uuid.New(), "Launch", "", "")
	require.NoError(t, err)
	_, err = n.AddComment(uuid.New(), "hi", "first", false)
	require.NoError(t, err)
	_, err = n.AddComment(uuid.New(), "", "second", true)
	require.NoError(t, err)
	assert.Len(t, n.ApprovedComments(), 1)

	n.AllowComments = false
	_, err = n.AddComment(uuid.New(), "", "third", true)
	assert.Error(t, err)
}

func TestBlogPost_Tags(t *testing.T) {
	b, err := NewBlogPost(uuid.New(), uuid.New(), "Hello", "body")
	require.NoError(t, err)
	b.SetTags([]string{"Go", " go ", "", "Cloud"})
	assert.Equal(t, []string{"Go", "Cloud"}, b.ParseTags())
	assert.True(t, b.HasTag("GO"))
	assert.False(t, b.HasTag("rust"))
}

func TestCountTags(t *testing.T) {
	tenantID, langID := uuid.New(), uuid.New()
	a, _ := NewBlogPost(tenantID, langID, "A", "")
	a.SetTags([]string{"go", "web"})
	b, _ := NewBlogPost(tenantID, langID, "B", "")
	b.SetTags([]string{"Go"})

	tags := CountTags([]BlogPost{*a, *b})
	require.Len(t, tags, 2)
	assert.Equal(t, BlogPostTag{Name: "go", BlogPostCount: 2}, tags[0])
	assert.Equal(t, BlogPostTag{Name: "web", BlogPostCount: 1}, tags[1])
}

func TestNormalizeSubscriptionEmail(t *testing.T) {
	email, err := NormalizeSubscriptionEmail("  John@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", email)

	_, err = NormalizeSubscriptionEmail("not-an-email")
	assert.Error(t, err)
	_, err = NormalizeSubscriptionEmail("")
	assert.Error(t, err)
}

func TestSubscriptionChangeEvents(t *testing.T) {
	tenantID := uuid.New()

	t.Run("activated", func(t *testing.T) {
		s, _ := NewNewsLetterSubscription(tenantID, "a@example.com", true)
		events := SubscriptionChangeEvents(s, "a@example.com", false)
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeNewsletterSubscribed, events[0].EventType())
	})

	t.Run("deactivated", func(t *testing.T) {
		s, _ := NewNewsLetterSubscription(tenantID, "a@example.com", false)
		events := SubscriptionChangeEvents(s, "a@example.com", true)
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeNewsletterUnsubscribed, events[0].EventType())
	})

	t.Run("email changed while active", func(t *testing.T) {
		s, _ := NewNewsLetterSubscription(tenantID, "new@example.com", true)
		events := SubscriptionChangeEvents(s, "old@example.com", true)
		require.Len(t, events, 2)
		assert.Equal(t, "old@example.com", events[0].(*SubscriptionEvent).Email)
		assert.Equal(t, "new@example.com", events[1].(*SubscriptionEvent).Email)
	})

	t.Run("no change", func(t *testing.T) {
		s, _ := NewNewsLetterSubscription(tenantID, "a@example.com", false)
		assert.Empty(t, SubscriptionChangeEvents(s, "a@example.com", false))
	})
}
