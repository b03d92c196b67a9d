package posts

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soma-campus/soma-backend/internal/apperr"
	"github.com/soma-campus/soma-backend/internal/auth"
	"github.com/soma-campus/soma-backend/internal/db/dbtest"
	"github.com/soma-campus/soma-backend/internal/parties"
)

type testEnv struct {
	svc     *Service
	store   *auth.Store
	parties *parties.Service
}

// newTestEnv returns a service whose clock advances one minute per call, so
// posts created in sequence have distinct timestamps.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	d := dbtest.Open(t)
	require.NoError(t, auth.Init(d))
	require.NoError(t, parties.Init(d))
	require.NoError(t, Init(d))

	store := auth.NewStore(d)
	svc := NewService(d, store, zap.NewNop())

	var mu sync.Mutex
	clock := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Minute)
		return clock
	}
	return &testEnv{svc: svc, store: store, parties: parties.NewService(d, zap.NewNop())}
}

func (e *testEnv) user(t *testing.T, username string) *auth.User {
	t.Helper()
	u := &auth.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@campus.example",
		PasswordHash: "x",
		FullName:     strings.ToUpper(username[:1]) + username[1:],
		IsActive:     true,
	}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) post(t *testing.T, userID, content string) *Post {
	t.Helper()
	p, err := e.svc.Create(context.Background(), userID, CreateRequest{Content: content})
	require.NoError(t, err)
	return p
}

func TestCreatePostSnapshotsAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ada := env.user(t, "ada")

	unity, err := env.parties.RegisterParty(ctx, parties.PartyInput{PartyName: ptr("Unity")})
	require.NoError(t, err)

	p, err := env.svc.Create(ctx, ada.ID, CreateRequest{
		Content:  "  Library hours should be longer  ",
		Images:   []string{"https://img.example/1.png"},
		PartyIDs: []uint{unity.ID, 999},
	})
	require.NoError(t, err)

	assert.Equal(t, "Library hours should be longer", p.Content)
	assert.Equal(t, ada.ID, p.UserID)
	assert.Equal(t, "ada", p.Author.Username)
	assert.Equal(t, "ada@campus.example", p.Author.Email)
	assert.Equal(t, []string{"https://img.example/1.png"}, []string(p.Images))
	assert.Empty(t, p.Comments)
	require.Len(t, p.Parties, 1)
	assert.Equal(t, "Unity", p.Parties[0].PartyName)

	// later profile changes do not rewrite the snapshot
	require.NoError(t, env.store.UpdateUser(ctx, ada.ID, map[string]any{"username": "ada2"}))
	got, err := env.svc.Post(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Author.Username)
}

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t)
	ada := env.user(t, "ada")

	_, err := env.svc.Create(context.Background(), ada.ID, CreateRequest{Content: "   "})
	assert.Equal(t, "Post content is required", apperr.MessageOf(err))

	_, err = env.svc.Create(context.Background(), ada.ID, CreateRequest{Content: strings.Repeat("é", MaxContentLength+1)})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = env.svc.Create(context.Background(), ada.ID, CreateRequest{Content: strings.Repeat("é", MaxContentLength)})
	assert.NoError(t, err)

	_, err = env.svc.Create(context.Background(), uuid.NewString(), CreateRequest{Content: "hi"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestAnonymousPostHidesAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ada := env.user(t, "ada")

	p, err := env.svc.Create(ctx, ada.ID, CreateRequest{Content: "secret", IsAnonymous: true})
	require.NoError(t, err)
	assert.Empty(t, p.UserID)
	assert.Equal(t, Author{}, p.Author)

	page, err := env.svc.List(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Empty(t, page.Posts[0].Author.Username)
}

func TestListPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ada := env.user(t, "ada")
	for _, c := range []string{"one", "two", "three", "four", "five", "six", "seven"} {
		env.post(t, ada.ID, c)
	}

	first, err := env.svc.List(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, first.Count)
	assert.Equal(t, int64(7), first.Total)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrevious)
	require.NotNil(t, first.Next)
	assert.Equal(t, "?page=2&limit=5", *first.Next)
	assert.Nil(t, first.Previous)
	assert.Equal(t, "seven", first.Posts[0].Content)

	second, err := env.svc.List(ctx, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Count)
	assert.False(t, second.HasNext)
	assert.True(t, second.HasPrevious)
	assert.Equal(t, "?page=1&limit=5", *second.Previous)
	assert.Equal(t, "one", second.Posts[1].Content)

	big, err := env.svc.List(ctx, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, big.Limit)

	_, err = env.svc.List(ctx, 0, 5)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestVoteToggles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ada := env.user(t, "ada")
	bob := env.user(t, "bob")
	p := env.post(t, ada.ID, "vote on me")

	steps := []struct {
		user     string
		dir      Direction
		action   string
		up, down int
	}{
		{ada.ID, Up, "added", 1, 0},
		{bob.ID, Up, "added", 2, 0},
		{ada.ID, Up, "removed", 1, 0},
		{bob.ID, Down, "switched", 0, 1},
		{ada.ID, Down, "added", 0, 2},
		{bob.ID, Down, "removed", 0, 1},
	}
	for i, st := range steps {
		res, err := env.svc.Vote(ctx, st.user, p.ID, st.dir)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, st.action, res.Action, "step %d", i)
		assert.Equal(t, st.up, res.Upvotes, "step %d upvotes", i)
		assert.Equal(t, st.down, res.Downvotes, "step %d downvotes", i)
	}

	_, err := env.svc.Vote(ctx, ada.ID, 999, Up)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeletePostOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ada := env.user(t, "ada")
	bob := env.user(t, "bob")

	unity, err := env.parties.RegisterParty(ctx, parties.PartyInput{PartyName: ptr("Unity")})
	require.NoError(t, err)
	p, err := env.svc.Create(ctx, ada.ID, CreateRequest{Content: "mine", PartyIDs: []uint{unity.ID}})
	require.NoError(t, err)
	_, _, err = env.svc.AddComment(ctx, bob.ID, p.ID, "nice")
	require.NoError(t, err)
	_, err = env.svc.Vote(ctx, bob.ID, p.ID, Up)
	require.NoError(t, err)

	_, err = env.svc.Delete(ctx, bob.ID, p.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	res, err := env.svc.Delete(ctx, ada.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CommentsRemoved)
	assert.Equal(t, 1, res.PartiesDisassociated)

	_, err = env.svc.Post(ctx, p.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// the party itself survives
	_, err = env.parties.Party(ctx, unity.ID)
	assert.NoError(t, err)
}

func TestAddCommentAppendsInOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ada := env.user(t, "ada")
	p := env.post(t, ada.ID, "discuss")

	first, total, err := env.svc.AddComment(ctx, ada.ID, p.ID, " first ")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "first", first.Text)
	assert.Equal(t, "Ada", first.FullName)
	_, err = uuid.Parse(first.ID)
	assert.NoError(t, err)

	_, total, err = env.svc.AddComment(ctx, ada.ID, p.ID, "second")
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	got, err := env.svc.Post(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, "first", got.Comments[0].Text)
	assert.Equal(t, "second", got.Comments[1].Text)

	_, _, err = env.svc.AddComment(ctx, ada.ID, p.ID, "  ")
	assert.Equal(t, "Comment text is required", apperr.MessageOf(err))
	_, _, err = env.svc.AddComment(ctx, ada.ID, 999, "hello")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ada := env.user(t, "ada")
	grace := env.user(t, "grace")

	env.post(t, ada.ID, "Cafeteria prices are too high")
	env.post(t, grace.ID, "Vote for the new gym")
	_, err := env.svc.Create(ctx, grace.ID, CreateRequest{Content: "hidden thoughts", IsAnonymous: true})
	require.NoError(t, err)
	env.post(t, ada.ID, "100% agree")

	contents := func(ps []Post) []string {
		out := make([]string, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.Content)
		}
		return out
	}

	got, err := env.svc.Search(ctx, "CAFETERIA")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cafeteria prices are too high"}, contents(got))

	// matches by author only when the post is not anonymous
	got, err = env.svc.Search(ctx, "grac")
	require.NoError(t, err)
	assert.Equal(t, []string{"Vote for the new gym"}, contents(got))

	got, err = env.svc.Search(ctx, "%")
	require.NoError(t, err)
	assert.Equal(t, []string{"100% agree"}, contents(got))

	_, err = env.svc.Search(ctx, " ")
	assert.Equal(t, "Search query is required", apperr.MessageOf(err))
}

func ptr(s string) *string { return &s }
