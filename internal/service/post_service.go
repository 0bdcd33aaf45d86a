package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"
	"ripple/internal/textparse"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// maxPostLength is the platform-wide post text limit in runes.
const maxPostLength = 280

// PostService handles post creation, listing and the like/bookmark toggles.
type PostService struct {
	posts         repository.PostRepository
	users         repository.UserRepository
	notifications *NotificationService
	logger        *slog.Logger
}

// NewPostService creates a new post service
func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	notifications *NotificationService,
	logger *slog.Logger,
) *PostService {
	return &PostService{posts: posts, users: users, notifications: notifications, logger: logger}
}

// CreatePostInput holds the data needed to create a post, reply or repost.
type CreatePostInput struct {
	AuthorID     uint
	Text         string
	Media        []models.MediaItem
	ParentPostID *uint
	RepostPostID *uint
}

// CreatePost validates input, writes the post with its derived rows and fans
// out reply/repost/mention notifications. The length limit is enforced here,
// not in the repository. The returned post is re-fetched so mention and
// hashtag relations created during the write are populated.
func (s *PostService) CreatePost(ctx context.Context, input CreatePostInput) (*models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "PostService.CreatePost")
	defer span.End()
	span.AddAttributes(
		attribute.Int("author_id", int(input.AuthorID)),
		attribute.Bool("is_reply", input.ParentPostID != nil),
		attribute.Bool("is_repost", input.RepostPostID != nil),
	)

	text := strings.TrimSpace(input.Text)
	if utf8.RuneCountInString(text) > maxPostLength {
		return nil, models.NewValidationError("Post text exceeds the 280 character limit")
	}
	if text == "" && input.RepostPostID == nil && len(input.Media) == 0 {
		return nil, models.NewValidationError("Post text is required")
	}
	if input.ParentPostID != nil && input.RepostPostID != nil {
		return nil, models.NewValidationError("A post cannot be both a reply and a repost")
	}

	var parent, target *models.Post
	if input.ParentPostID != nil {
		p, err := s.posts.GetByID(ctx, *input.ParentPostID)
		if err != nil {
			return nil, wrapLookup(err, "Parent post not found")
		}
		parent = p
	}
	if input.RepostPostID != nil {
		p, err := s.posts.GetByID(ctx, *input.RepostPostID)
		if err != nil {
			return nil, wrapLookup(err, "Repost target not found")
		}
		target = p
	}

	mentionNames := textparse.Mentions(text)
	hashtags := textparse.Hashtags(text)

	// Mention tokens that resolve to no user are silently dropped.
	mentioned, err := s.users.ResolveUsernames(ctx, mentionNames)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	mentionIDs := make([]uint, 0, len(mentioned))
	for _, u := range mentioned {
		mentionIDs = append(mentionIDs, u.ID)
	}

	post := &models.Post{
		UserID:       input.AuthorID,
		Text:         text,
		ParentPostID: input.ParentPostID,
		RepostPostID: input.RepostPostID,
	}
	media, err := models.EncodeMedia(input.Media)
	if err != nil {
		return nil, models.NewValidationError("Invalid media payload")
	}
	post.Media = media

	if err := s.posts.Create(ctx, post, mentionIDs, hashtags); err != nil {
		span.SetError(err)
		return nil, models.NewInternalError(err)
	}

	s.fanOutForPost(ctx, post, parent, target, mentionIDs)

	created, err := s.posts.GetByID(ctx, post.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return created, nil
}

// fanOutForPost sends reply, repost and mention notifications for a freshly
// created post. A user who would receive both a reply/repost notification
// and a mention notification for the same post gets only the former.
// Fan-out failures are logged; the created post is not rolled back.
func (s *PostService) fanOutForPost(ctx context.Context, post, parent, target *models.Post, mentionIDs []uint) {
	notified := map[uint]bool{}

	if parent != nil {
		notified[parent.UserID] = true
		if err := s.notifications.Notify(ctx, parent.UserID, post.UserID, models.NotificationReply, &post.ID); err != nil {
			s.logger.Warn("reply notification failed", "post_id", post.ID, "error", err)
		}
	}
	if target != nil {
		notified[target.UserID] = true
		if err := s.notifications.Notify(ctx, target.UserID, post.UserID, models.NotificationRepost, &post.ID); err != nil {
			s.logger.Warn("repost notification failed", "post_id", post.ID, "error", err)
		}
	}
	for _, uid := range mentionIDs {
		if notified[uid] {
			continue
		}
		notified[uid] = true
		if err := s.notifications.Notify(ctx, uid, post.UserID, models.NotificationMention, &post.ID); err != nil {
			s.logger.Warn("mention notification failed", "post_id", post.ID, "user_id", uid, "error", err)
		}
	}
}

// GetPost returns a single post with relations loaded. The reply counter is
// not adjusted when a reply is soft-deleted, so the detail view reports the
// live count instead of the stored one.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, wrapLookup(err, "Post not found")
	}
	if count, err := s.posts.RepliesCount(ctx, id); err == nil {
		post.ReplyCount = int(count)
	}
	return post, nil
}

// Timeline returns one page of the viewer's feed.
func (s *PostService) Timeline(ctx context.Context, query repository.TimelineQuery) (*repository.PostPage, error) {
	query.Page, query.Limit = normalizePage(query.Page, query.Limit)
	page, err := s.posts.Timeline(ctx, query)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return page, nil
}

// UserPosts lists one author's posts. An unknown username yields an empty
// page rather than an error.
func (s *PostService) UserPosts(ctx context.Context, username string, page, limit int, filter repository.TimelineFilter) (*repository.PostPage, error) {
	page, limit = normalizePage(page, limit)
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &repository.PostPage{Items: []*models.Post{}}, nil
		}
		return nil, models.NewInternalError(err)
	}
	result, err := s.posts.ByUser(ctx, user.ID, page, limit, filter)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return result, nil
}

// HashtagPosts lists the posts carrying a hashtag, matched case-insensitively.
func (s *PostService) HashtagPosts(ctx context.Context, tag string, page, limit int) (*repository.PostPage, error) {
	page, limit = normalizePage(page, limit)
	result, err := s.posts.ByHashtag(ctx, tag, page, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return result, nil
}

// Replies lists direct replies to a post.
func (s *PostService) Replies(ctx context.Context, postID uint, page, limit int) (*repository.PostPage, error) {
	page, limit = normalizePage(page, limit)
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, wrapLookup(err, "Post not found")
	}
	result, err := s.posts.Replies(ctx, postID, page, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return result, nil
}

// Bookmarked lists the posts the user has bookmarked.
func (s *PostService) Bookmarked(ctx context.Context, userID uint, page, limit int) (*repository.PostPage, error) {
	page, limit = normalizePage(page, limit)
	result, err := s.posts.Bookmarked(ctx, userID, page, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return result, nil
}

// MentioningUser lists the posts that mention the user, newest first.
func (s *PostService) MentioningUser(ctx context.Context, userID uint, page, limit int) (*repository.PostPage, error) {
	page, limit = normalizePage(page, limit)
	result, err := s.posts.MentioningUser(ctx, userID, page, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return result, nil
}

// SearchPosts is a case-insensitive substring search over post text.
func (s *PostService) SearchPosts(ctx context.Context, query string, page, limit int) (*repository.PostPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	page, limit = normalizePage(page, limit)
	result, err := s.posts.Search(ctx, query, page, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return result, nil
}

// DeletePost soft-deletes a post after verifying ownership.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return wrapLookup(err, "Post not found")
	}
	if post.UserID != userID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Like records a like and notifies the post author when state changed.
// Liking an already-liked post is a silent no-op. Returns the post with its
// updated counters.
func (s *PostService) Like(ctx context.Context, userID, postID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, wrapLookup(err, "Post not found")
	}

	changed, err := s.posts.Like(ctx, userID, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if changed {
		if err := s.notifications.Notify(ctx, post.UserID, userID, models.NotificationLike, &postID); err != nil {
			s.logger.Warn("like notification failed", "post_id", postID, "error", err)
		}
	}
	return s.refetch(ctx, postID)
}

// Unlike removes a like; removing an absent like is a silent no-op.
func (s *PostService) Unlike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, wrapLookup(err, "Post not found")
	}
	if _, err := s.posts.Unlike(ctx, userID, postID); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.refetch(ctx, postID)
}

// Bookmark records a bookmark. Bookmarks are private; no notification is sent.
func (s *PostService) Bookmark(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, wrapLookup(err, "Post not found")
	}
	if _, err := s.posts.Bookmark(ctx, userID, postID); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.refetch(ctx, postID)
}

// Unbookmark removes a bookmark; removing an absent bookmark is a silent no-op.
func (s *PostService) Unbookmark(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, wrapLookup(err, "Post not found")
	}
	if _, err := s.posts.Unbookmark(ctx, userID, postID); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.refetch(ctx, postID)
}

func (s *PostService) refetch(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// normalizePage clamps pagination parameters to sane bounds.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
