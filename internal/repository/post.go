// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"strings"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TimelineFilter selects which kinds of posts a listing returns.
type TimelineFilter string

const (
	// FilterAll returns every post kind.
	FilterAll TimelineFilter = "all"
	// FilterReplies returns only replies.
	FilterReplies TimelineFilter = "replies"
	// FilterMedia returns only posts carrying media.
	FilterMedia TimelineFilter = "media"
)

// ParseTimelineFilter maps a query-string value onto a filter; anything
// unrecognized falls back to FilterAll.
func ParseTimelineFilter(s string) TimelineFilter {
	switch TimelineFilter(s) {
	case FilterReplies:
		return FilterReplies
	case FilterMedia:
		return FilterMedia
	}
	return FilterAll
}

// TimelineQuery describes one page of the timeline.
//
// When ViewerID is set the visible set is the union of the viewer's own
// posts, posts by followed authors and posts mentioning the viewer; when it
// is zero the listing is the public/global view. Filter and ExcludeReplies
// compose independently: requesting FilterReplies together with
// ExcludeReplies produces a contradictory predicate and an empty page, which
// is preserved behavior.
type TimelineQuery struct {
	ViewerID       uint
	Page           int
	Limit          int
	Filter         TimelineFilter
	ExcludeReplies bool
}

// PostPage is one offset-paginated page of posts plus the total match count.
type PostPage struct {
	Items []*models.Post
	Total int64
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, mentionUserIDs []uint, hashtags []string) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Timeline(ctx context.Context, q TimelineQuery) (*PostPage, error)
	ByUser(ctx context.Context, userID uint, page, limit int, filter TimelineFilter) (*PostPage, error)
	ByHashtag(ctx context.Context, tag string, page, limit int) (*PostPage, error)
	Replies(ctx context.Context, postID uint, page, limit int) (*PostPage, error)
	RepliesCount(ctx context.Context, postID uint) (int64, error)
	Bookmarked(ctx context.Context, userID uint, page, limit int) (*PostPage, error)
	MentioningUser(ctx context.Context, userID uint, page, limit int) (*PostPage, error)
	Search(ctx context.Context, query string, page, limit int) (*PostPage, error)
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, userID, postID uint) (bool, error)
	Unlike(ctx context.Context, userID, postID uint) (bool, error)
	Bookmark(ctx context.Context, userID, postID uint) (bool, error)
	Unbookmark(ctx context.Context, userID, postID uint) (bool, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts the post row together with its derived rows (mentions,
// hashtag upserts and join rows) and the parent/repost counter bumps, all in
// one transaction. Mention user ids must already be resolved; hashtags must
// already be normalized.
func (r *postRepository) Create(ctx context.Context, post *models.Post, mentionUserIDs []uint, hashtags []string) error {
	defer observability.TrackQuery("create", "posts")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}

		for _, uid := range mentionUserIDs {
			mention := &models.Mention{PostID: post.ID, MentionedUserID: uid}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(mention).Error; err != nil {
				return err
			}
		}

		for _, tag := range hashtags {
			// Upsert by unique tag, then read the id back: DO NOTHING does
			// not return the existing row on conflict.
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.Hashtag{Tag: tag}).Error; err != nil {
				return err
			}
			var hashtag models.Hashtag
			if err := tx.Where("tag = ?", tag).First(&hashtag).Error; err != nil {
				return err
			}
			join := &models.PostHashtag{PostID: post.ID, HashtagID: hashtag.ID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(join).Error; err != nil {
				return err
			}
		}

		if post.ParentPostID != nil {
			if err := tx.Model(&models.Post{}).
				Where("id = ?", *post.ParentPostID).
				UpdateColumn("reply_count", gorm.Expr("reply_count + ?", 1)).Error; err != nil {
				return err
			}
		}
		if post.RepostPostID != nil {
			if err := tx.Model(&models.Post{}).
				Where("id = ?", *post.RepostPostID).
				UpdateColumn("repost_count", gorm.Expr("repost_count + ?", 1)).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	if post.ParentPostID != nil {
		cache.InvalidatePost(ctx, *post.ParentPostID)
	}
	if post.RepostPostID != nil {
		cache.InvalidatePost(ctx, *post.RepostPostID)
	}
	return nil
}

// withRelations preloads the author, parent/repost posts and derived rows.
// Soft-deleted parents and repost targets are excluded by the preload itself,
// leaving only the structural id pointer on the child.
func (r *postRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("ParentPost").
		Preload("ParentPost.User").
		Preload("RepostPost").
		Preload("RepostPost.User").
		Preload("Mentions").
		Preload("Mentions.MentionedUser").
		Preload("Hashtags")
}

func decodeMediaAll(posts []*models.Post) error {
	for _, p := range posts {
		if err := p.DecodeMedia(); err != nil {
			return err
		}
	}
	return nil
}

func offsetOf(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

// GetByID reads through the per-post cache entry. Media is decoded before
// the entry is stored so cache hits carry the decoded form.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		if err := r.withRelations(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
			return err
		}
		return post.DecodeMedia()
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// timelineScope applies the visibility predicate and filters of q.
func (r *postRepository) timelineScope(db *gorm.DB, q TimelineQuery) *gorm.DB {
	tx := db.Model(&models.Post{})

	if q.ViewerID != 0 {
		followed := r.db.Model(&models.Follow{}).
			Select("followed_id").
			Where("follower_id = ?", q.ViewerID)
		tx = tx.Where(
			r.db.Where("posts.user_id = ?", q.ViewerID).
				Or("posts.user_id IN (?)", followed).
				Or("EXISTS (SELECT 1 FROM mentions WHERE mentions.post_id = posts.id AND mentions.mentioned_user_id = ?)", q.ViewerID),
		)
	}

	switch q.Filter {
	case FilterReplies:
		tx = tx.Where("posts.parent_post_id IS NOT NULL")
	case FilterMedia:
		tx = tx.Where("posts.media IS NOT NULL")
	}
	if q.ExcludeReplies {
		tx = tx.Where("posts.parent_post_id IS NULL")
	}

	return tx
}

// Timeline returns one page of the feed, newest first, offset-paginated.
// Offset pagination can skip or duplicate rows across page boundaries under
// concurrent inserts; that is a documented property of this endpoint.
func (r *postRepository) Timeline(ctx context.Context, q TimelineQuery) (*PostPage, error) {
	defer observability.TrackQuery("timeline", "posts")()
	observability.TimelineQueries.WithLabelValues(string(q.Filter)).Inc()

	var total int64
	if err := r.timelineScope(r.db.WithContext(ctx), q).Count(&total).Error; err != nil {
		return nil, err
	}

	var posts []*models.Post
	err := r.withRelations(r.timelineScope(r.db.WithContext(ctx), q)).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(q.Limit).
		Offset(offsetOf(q.Page, q.Limit)).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if err := decodeMediaAll(posts); err != nil {
		return nil, err
	}
	return &PostPage{Items: posts, Total: total}, nil
}

func (r *postRepository) ByUser(ctx context.Context, userID uint, page, limit int, filter TimelineFilter) (*PostPage, error) {
	scope := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&models.Post{}).Where("posts.user_id = ?", userID)
		switch filter {
		case FilterReplies:
			tx = tx.Where("posts.parent_post_id IS NOT NULL")
		case FilterMedia:
			tx = tx.Where("posts.media IS NOT NULL")
		}
		return tx
	}
	return r.findPage(scope, page, limit)
}

func (r *postRepository) ByHashtag(ctx context.Context, tag string, page, limit int) (*PostPage, error) {
	normalized := strings.ToLower(tag)
	scope := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Post{}).
			Joins("JOIN post_hashtags ON post_hashtags.post_id = posts.id").
			Joins("JOIN hashtags ON hashtags.id = post_hashtags.hashtag_id").
			Where("hashtags.tag = ?", normalized)
	}
	return r.findPage(scope, page, limit)
}

func (r *postRepository) Replies(ctx context.Context, postID uint, page, limit int) (*PostPage, error) {
	scope := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Post{}).Where("posts.parent_post_id = ?", postID)
	}
	return r.findPage(scope, page, limit)
}

func (r *postRepository) RepliesCount(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("parent_post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (r *postRepository) Bookmarked(ctx context.Context, userID uint, page, limit int) (*PostPage, error) {
	scope := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Post{}).
			Joins("JOIN bookmarks ON bookmarks.post_id = posts.id").
			Where("bookmarks.user_id = ?", userID)
	}
	return r.findPage(scope, page, limit)
}

func (r *postRepository) MentioningUser(ctx context.Context, userID uint, page, limit int) (*PostPage, error) {
	scope := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Post{}).
			Joins("JOIN mentions ON mentions.post_id = posts.id").
			Where("mentions.mentioned_user_id = ?", userID)
	}
	return r.findPage(scope, page, limit)
}

// Search is a case-insensitive substring match over post text. No relevance
// ranking is applied.
func (r *postRepository) Search(ctx context.Context, query string, page, limit int) (*PostPage, error) {
	like := "%" + strings.ToLower(query) + "%"
	scope := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.Post{}).
			Where("LOWER(posts.text) LIKE ?", like)
	}
	return r.findPage(scope, page, limit)
}

// findPage runs a count plus a page fetch over the given scope, newest first.
func (r *postRepository) findPage(scope func() *gorm.DB, page, limit int) (*PostPage, error) {
	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, err
	}

	var posts []*models.Post
	err := r.withRelations(scope()).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offsetOf(page, limit)).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	if err := decodeMediaAll(posts); err != nil {
		return nil, err
	}
	return &PostPage{Items: posts, Total: total}, nil
}

// Delete soft-deletes the post. Replies and reposts pointing at it are not
// cascaded; they keep their structural pointer to the now-hidden row.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

// Like records a like and bumps the counter in one transaction. Returns
// whether state actually changed: a duplicate like is a silent no-op and the
// counter does not move.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	return r.toggleOn(ctx, &models.Like{UserID: userID, PostID: postID}, postID, "like_count")
}

// Unlike removes a like; removing a nonexistent like is a silent no-op.
func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	return r.toggleOff(ctx, &models.Like{}, userID, postID, "like_count")
}

// Bookmark records a bookmark with Like semantics.
func (r *postRepository) Bookmark(ctx context.Context, userID, postID uint) (bool, error) {
	return r.toggleOn(ctx, &models.Bookmark{UserID: userID, PostID: postID}, postID, "bookmark_count")
}

// Unbookmark removes a bookmark with Unlike semantics.
func (r *postRepository) Unbookmark(ctx context.Context, userID, postID uint) (bool, error) {
	return r.toggleOff(ctx, &models.Bookmark{}, userID, postID, "bookmark_count")
}

// toggleOn inserts the join row with ON CONFLICT DO NOTHING and increments
// the counter column only when a row was actually inserted, so concurrent
// duplicate toggles cannot double-move the counter.
func (r *postRepository) toggleOn(ctx context.Context, row any, postID uint, counter string) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true
		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn(counter, gorm.Expr(counter+" + ?", 1)).Error
	})
	if err == nil && changed {
		cache.InvalidatePost(ctx, postID)
	}
	return changed, err
}

// toggleOff hard-deletes the join row and decrements the counter only when a
// row was actually removed. The counter is guarded against going negative.
func (r *postRepository) toggleOff(ctx context.Context, model any, userID, postID uint, counter string) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(model)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		changed = true
		return tx.Model(&models.Post{}).
			Where("id = ? AND "+counter+" > 0", postID).
			UpdateColumn(counter, gorm.Expr(counter+" - ?", 1)).Error
	})
	if err == nil && changed {
		cache.InvalidatePost(ctx, postID)
	}
	return changed, err
}
