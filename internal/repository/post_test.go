package repository

import (
	"context"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_Create(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	friend := createTestUser(t, db, "friend")

	t.Run("plain post", func(t *testing.T) {
		post := &models.Post{UserID: author.ID, Text: "hello world"}
		err := repo.Create(ctx, post, nil, nil)
		require.NoError(t, err)
		assert.NotZero(t, post.ID)
	})

	t.Run("mentions and hashtags", func(t *testing.T) {
		post := &models.Post{UserID: author.ID, Text: "hey @friend #golang #golang"}
		err := repo.Create(ctx, post, []uint{friend.ID}, []string{"golang"})
		require.NoError(t, err)

		fetched, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, fetched.Mentions, 1)
		assert.Equal(t, friend.ID, fetched.Mentions[0].MentionedUserID)
		require.Len(t, fetched.Hashtags, 1)
		assert.Equal(t, "golang", fetched.Hashtags[0].Tag)
	})

	t.Run("hashtag reused across posts", func(t *testing.T) {
		first := &models.Post{UserID: author.ID, Text: "one #shared"}
		require.NoError(t, repo.Create(ctx, first, nil, []string{"shared"}))
		second := &models.Post{UserID: author.ID, Text: "two #shared"}
		require.NoError(t, repo.Create(ctx, second, nil, []string{"shared"}))

		var count int64
		db.Model(&models.Hashtag{}).Where("tag = ?", "shared").Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("reply bumps parent reply count", func(t *testing.T) {
		parent := &models.Post{UserID: author.ID, Text: "parent"}
		require.NoError(t, repo.Create(ctx, parent, nil, nil))

		reply := &models.Post{UserID: friend.ID, Text: "reply", ParentPostID: &parent.ID}
		require.NoError(t, repo.Create(ctx, reply, nil, nil))

		fetched, err := repo.GetByID(ctx, parent.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, fetched.ReplyCount)
	})

	t.Run("repost bumps target repost count", func(t *testing.T) {
		target := &models.Post{UserID: author.ID, Text: "target"}
		require.NoError(t, repo.Create(ctx, target, nil, nil))

		repost := &models.Post{UserID: friend.ID, RepostPostID: &target.ID}
		require.NoError(t, repo.Create(ctx, repost, nil, nil))

		fetched, err := repo.GetByID(ctx, target.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, fetched.RepostCount)
	})
}

func TestPostRepository_LikeToggle(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	liker := createTestUser(t, db, "liker")

	post := &models.Post{UserID: author.ID, Text: "likeable"}
	require.NoError(t, repo.Create(ctx, post, nil, nil))

	t.Run("like changes state once", func(t *testing.T) {
		changed, err := repo.Like(ctx, liker.ID, post.ID)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = repo.Like(ctx, liker.ID, post.ID)
		require.NoError(t, err)
		assert.False(t, changed, "second like should be a no-op")

		fetched, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, fetched.LikeCount)
	})

	t.Run("unlike changes state once", func(t *testing.T) {
		changed, err := repo.Unlike(ctx, liker.ID, post.ID)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = repo.Unlike(ctx, liker.ID, post.ID)
		require.NoError(t, err)
		assert.False(t, changed, "second unlike should be a no-op")

		fetched, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, fetched.LikeCount, "counter must not go negative")
	})
}

func TestPostRepository_BookmarkToggle(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	reader := createTestUser(t, db, "reader")

	post := &models.Post{UserID: author.ID, Text: "bookmarkable"}
	require.NoError(t, repo.Create(ctx, post, nil, nil))

	changed, err := repo.Bookmark(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.Bookmark(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	page, err := repo.Bookmarked(ctx, reader.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, post.ID, page.Items[0].ID)

	changed, err = repo.Unbookmark(ctx, reader.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	page, err = repo.Bookmarked(ctx, reader.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestPostRepository_Timeline(t *testing.T) {
	db := newTestDB(t)
	posts := NewPostRepository(db)
	follows := NewFollowRepository(db)
	ctx := context.Background()

	viewer := createTestUser(t, db, "viewer")
	followed := createTestUser(t, db, "followed")
	stranger := createTestUser(t, db, "stranger")

	require.NoError(t, follows.Follow(ctx, viewer.ID, followed.ID))

	own := &models.Post{UserID: viewer.ID, Text: "own post"}
	require.NoError(t, posts.Create(ctx, own, nil, nil))

	fromFollowed := &models.Post{UserID: followed.ID, Text: "followed post"}
	require.NoError(t, posts.Create(ctx, fromFollowed, nil, nil))

	mentioning := &models.Post{UserID: stranger.ID, Text: "hi @viewer"}
	require.NoError(t, posts.Create(ctx, mentioning, []uint{viewer.ID}, nil))

	invisible := &models.Post{UserID: stranger.ID, Text: "unrelated"}
	require.NoError(t, posts.Create(ctx, invisible, nil, nil))

	t.Run("visibility predicate", func(t *testing.T) {
		page, err := posts.Timeline(ctx, TimelineQuery{ViewerID: viewer.ID, Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)

		ids := map[uint]bool{}
		for _, p := range page.Items {
			ids[p.ID] = true
		}
		assert.True(t, ids[own.ID])
		assert.True(t, ids[fromFollowed.ID])
		assert.True(t, ids[mentioning.ID])
		assert.False(t, ids[invisible.ID])
	})

	t.Run("public view sees everything", func(t *testing.T) {
		page, err := posts.Timeline(ctx, TimelineQuery{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(4), page.Total)
	})

	t.Run("replies filter", func(t *testing.T) {
		reply := &models.Post{UserID: viewer.ID, Text: "a reply", ParentPostID: &own.ID}
		require.NoError(t, posts.Create(ctx, reply, nil, nil))

		page, err := posts.Timeline(ctx, TimelineQuery{
			ViewerID: viewer.ID, Page: 1, Limit: 10, Filter: FilterReplies,
		})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, reply.ID, page.Items[0].ID)

		page, err = posts.Timeline(ctx, TimelineQuery{
			ViewerID: viewer.ID, Page: 1, Limit: 10, ExcludeReplies: true,
		})
		require.NoError(t, err)
		for _, p := range page.Items {
			assert.Nil(t, p.ParentPostID)
		}
	})

	t.Run("contradictory filters yield nothing", func(t *testing.T) {
		page, err := posts.Timeline(ctx, TimelineQuery{
			ViewerID: viewer.ID, Page: 1, Limit: 10,
			Filter: FilterReplies, ExcludeReplies: true,
		})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Zero(t, page.Total)
	})

	t.Run("media filter", func(t *testing.T) {
		withMedia := &models.Post{UserID: viewer.ID, Text: "pic"}
		media, err := models.EncodeMedia([]models.MediaItem{{URL: "https://img.example/a.png", Type: "image"}})
		require.NoError(t, err)
		withMedia.Media = media
		require.NoError(t, posts.Create(ctx, withMedia, nil, nil))

		page, err := posts.Timeline(ctx, TimelineQuery{
			ViewerID: viewer.ID, Page: 1, Limit: 10, Filter: FilterMedia,
		})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, withMedia.ID, page.Items[0].ID)
		require.Len(t, page.Items[0].MediaItems, 1)
		assert.Equal(t, "https://img.example/a.png", page.Items[0].MediaItems[0].URL)
	})

	t.Run("pagination pages are disjoint", func(t *testing.T) {
		first, err := posts.Timeline(ctx, TimelineQuery{Page: 1, Limit: 3})
		require.NoError(t, err)
		second, err := posts.Timeline(ctx, TimelineQuery{Page: 2, Limit: 3})
		require.NoError(t, err)

		seen := map[uint]bool{}
		for _, p := range first.Items {
			seen[p.ID] = true
		}
		for _, p := range second.Items {
			assert.False(t, seen[p.ID], "post %d appeared on both pages", p.ID)
		}
	})
}

func TestPostRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	other := createTestUser(t, db, "other")

	parent := &models.Post{UserID: author.ID, Text: "to be deleted"}
	require.NoError(t, repo.Create(ctx, parent, nil, nil))
	reply := &models.Post{UserID: other.ID, Text: "survivor", ParentPostID: &parent.ID}
	require.NoError(t, repo.Create(ctx, reply, nil, nil))

	require.NoError(t, repo.Delete(ctx, parent.ID))

	_, err := repo.GetByID(ctx, parent.ID)
	assert.Error(t, err, "deleted post should not be readable")

	// The reply survives with its structural pointer intact; the deleted
	// parent is simply not preloaded.
	fetched, err := repo.GetByID(ctx, reply.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.ParentPostID)
	assert.Equal(t, parent.ID, *fetched.ParentPostID)
	assert.Nil(t, fetched.ParentPost)

	page, err := repo.Timeline(ctx, TimelineQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	for _, p := range page.Items {
		assert.NotEqual(t, parent.ID, p.ID, "deleted post leaked into timeline")
	}
}

func TestPostRepository_ByUserAndHashtag(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	other := createTestUser(t, db, "other")

	tagged := &models.Post{UserID: author.ID, Text: "learning #GoLang"}
	require.NoError(t, repo.Create(ctx, tagged, nil, []string{"golang"}))
	plain := &models.Post{UserID: other.ID, Text: "nothing here"}
	require.NoError(t, repo.Create(ctx, plain, nil, nil))

	t.Run("by user", func(t *testing.T) {
		page, err := repo.ByUser(ctx, author.ID, 1, 10, FilterAll)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, tagged.ID, page.Items[0].ID)
	})

	t.Run("by hashtag is case-insensitive", func(t *testing.T) {
		page, err := repo.ByHashtag(ctx, "GOLANG", 1, 10)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, tagged.ID, page.Items[0].ID)
	})

	t.Run("search matches substrings case-insensitively", func(t *testing.T) {
		page, err := repo.Search(ctx, "LEARNING", 1, 10)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, tagged.ID, page.Items[0].ID)
	})
}

func TestPostRepository_Replies(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	parent := &models.Post{UserID: author.ID, Text: "parent"}
	require.NoError(t, repo.Create(ctx, parent, nil, nil))

	for i := 0; i < 3; i++ {
		reply := &models.Post{UserID: author.ID, Text: "reply", ParentPostID: &parent.ID}
		require.NoError(t, repo.Create(ctx, reply, nil, nil))
	}

	page, err := repo.Replies(ctx, parent.ID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Total)

	count, err := repo.RepliesCount(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
