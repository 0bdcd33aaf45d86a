package service

import (
	"context"
	"io"
	"log/slog"

	"ripple/internal/models"
	"ripple/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post, []uint, []string) error
	getByIDFn        func(context.Context, uint) (*models.Post, error)
	timelineFn       func(context.Context, repository.TimelineQuery) (*repository.PostPage, error)
	byUserFn         func(context.Context, uint, int, int, repository.TimelineFilter) (*repository.PostPage, error)
	byHashtagFn      func(context.Context, string, int, int) (*repository.PostPage, error)
	repliesFn        func(context.Context, uint, int, int) (*repository.PostPage, error)
	repliesCountFn   func(context.Context, uint) (int64, error)
	bookmarkedFn     func(context.Context, uint, int, int) (*repository.PostPage, error)
	mentioningUserFn func(context.Context, uint, int, int) (*repository.PostPage, error)
	searchFn         func(context.Context, string, int, int) (*repository.PostPage, error)
	deleteFn         func(context.Context, uint) error
	likeFn           func(context.Context, uint, uint) (bool, error)
	unlikeFn         func(context.Context, uint, uint) (bool, error)
	bookmarkFn       func(context.Context, uint, uint) (bool, error)
	unbookmarkFn     func(context.Context, uint, uint) (bool, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post, mentionIDs []uint, hashtags []string) error {
	return s.createFn(ctx, post, mentionIDs, hashtags)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Timeline(ctx context.Context, q repository.TimelineQuery) (*repository.PostPage, error) {
	return s.timelineFn(ctx, q)
}
func (s *postRepoStub) ByUser(ctx context.Context, userID uint, page, limit int, filter repository.TimelineFilter) (*repository.PostPage, error) {
	return s.byUserFn(ctx, userID, page, limit, filter)
}
func (s *postRepoStub) ByHashtag(ctx context.Context, tag string, page, limit int) (*repository.PostPage, error) {
	return s.byHashtagFn(ctx, tag, page, limit)
}
func (s *postRepoStub) Replies(ctx context.Context, postID uint, page, limit int) (*repository.PostPage, error) {
	return s.repliesFn(ctx, postID, page, limit)
}
func (s *postRepoStub) RepliesCount(ctx context.Context, postID uint) (int64, error) {
	return s.repliesCountFn(ctx, postID)
}
func (s *postRepoStub) Bookmarked(ctx context.Context, userID uint, page, limit int) (*repository.PostPage, error) {
	return s.bookmarkedFn(ctx, userID, page, limit)
}
func (s *postRepoStub) MentioningUser(ctx context.Context, userID uint, page, limit int) (*repository.PostPage, error) {
	return s.mentioningUserFn(ctx, userID, page, limit)
}
func (s *postRepoStub) Search(ctx context.Context, query string, page, limit int) (*repository.PostPage, error) {
	return s.searchFn(ctx, query, page, limit)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) (bool, error) {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) Bookmark(ctx context.Context, userID, postID uint) (bool, error) {
	return s.bookmarkFn(ctx, userID, postID)
}
func (s *postRepoStub) Unbookmark(ctx context.Context, userID, postID uint) (bool, error) {
	return s.unbookmarkFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	emptyPage := func() (*repository.PostPage, error) {
		return &repository.PostPage{}, nil
	}
	return &postRepoStub{
		createFn: func(_ context.Context, post *models.Post, _ []uint, _ []string) error {
			post.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		timelineFn: func(_ context.Context, _ repository.TimelineQuery) (*repository.PostPage, error) {
			return emptyPage()
		},
		byUserFn: func(_ context.Context, _ uint, _, _ int, _ repository.TimelineFilter) (*repository.PostPage, error) {
			return emptyPage()
		},
		byHashtagFn: func(_ context.Context, _ string, _, _ int) (*repository.PostPage, error) {
			return emptyPage()
		},
		repliesFn: func(_ context.Context, _ uint, _, _ int) (*repository.PostPage, error) {
			return emptyPage()
		},
		repliesCountFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		bookmarkedFn: func(_ context.Context, _ uint, _, _ int) (*repository.PostPage, error) {
			return emptyPage()
		},
		mentioningUserFn: func(_ context.Context, _ uint, _, _ int) (*repository.PostPage, error) {
			return emptyPage()
		},
		searchFn: func(_ context.Context, _ string, _, _ int) (*repository.PostPage, error) {
			return emptyPage()
		},
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
		likeFn:       func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unlikeFn:     func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		bookmarkFn:   func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unbookmarkFn: func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn           func(context.Context, *models.User) error
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByUsernameFn    func(context.Context, string) (*models.User, error)
	getByWalletFn      func(context.Context, string) (*models.User, error)
	updateFn           func(context.Context, *models.User) error
	deactivateFn       func(context.Context, uint) error
	searchFn           func(context.Context, string, int, int) ([]*models.User, int64, error)
	resolveUsernamesFn func(context.Context, []string) ([]models.User, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByWallet(ctx context.Context, wallet string) (*models.User, error) {
	return s.getByWalletFn(ctx, wallet)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Deactivate(ctx context.Context, id uint) error {
	return s.deactivateFn(ctx, id)
}
func (s *userRepoStub) Search(ctx context.Context, query string, page, limit int) ([]*models.User, int64, error) {
	return s.searchFn(ctx, query, page, limit)
}
func (s *userRepoStub) ResolveUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	return s.resolveUsernamesFn(ctx, usernames)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, user *models.User) error {
			user.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: 1, Username: username}, nil
		},
		getByWalletFn: func(_ context.Context, wallet string) (*models.User, error) {
			return &models.User{ID: 1, WalletAddress: wallet}, nil
		},
		updateFn:     func(_ context.Context, _ *models.User) error { return nil },
		deactivateFn: func(_ context.Context, _ uint) error { return nil },
		searchFn: func(_ context.Context, _ string, _, _ int) ([]*models.User, int64, error) {
			return nil, 0, nil
		},
		resolveUsernamesFn: func(_ context.Context, _ []string) ([]models.User, error) {
			return nil, nil
		},
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	followFn      func(context.Context, uint, uint) error
	unfollowFn    func(context.Context, uint, uint) (bool, error)
	isFollowingFn func(context.Context, uint, uint) (bool, error)
	followersFn   func(context.Context, uint, int, int) ([]*models.User, int64, error)
	followingFn   func(context.Context, uint, int, int) ([]*models.User, int64, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followedID uint) error {
	return s.followFn(ctx, followerID, followedID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.unfollowFn(ctx, followerID, followedID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followedID)
}
func (s *followRepoStub) Followers(ctx context.Context, userID uint, page, limit int) ([]*models.User, int64, error) {
	return s.followersFn(ctx, userID, page, limit)
}
func (s *followRepoStub) Following(ctx context.Context, userID uint, page, limit int) ([]*models.User, int64, error) {
	return s.followingFn(ctx, userID, page, limit)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:      func(_ context.Context, _, _ uint) error { return nil },
		unfollowFn:    func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		isFollowingFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		followersFn: func(_ context.Context, _ uint, _, _ int) ([]*models.User, int64, error) {
			return nil, 0, nil
		},
		followingFn: func(_ context.Context, _ uint, _, _ int) ([]*models.User, int64, error) {
			return nil, 0, nil
		},
	}
}

// notificationRepoStub is a stub for repository.NotificationRepository.
type notificationRepoStub struct {
	createFn      func(context.Context, *models.Notification) error
	listFn        func(context.Context, repository.ListNotificationsQuery) (*repository.NotificationPage, error)
	markReadFn    func(context.Context, uint, []uint) (int64, error)
	markAllReadFn func(context.Context, uint) (int64, error)
	unreadCountFn func(context.Context, uint) (int64, error)
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	return s.createFn(ctx, n)
}
func (s *notificationRepoStub) List(ctx context.Context, q repository.ListNotificationsQuery) (*repository.NotificationPage, error) {
	return s.listFn(ctx, q)
}
func (s *notificationRepoStub) MarkRead(ctx context.Context, recipientID uint, ids []uint) (int64, error) {
	return s.markReadFn(ctx, recipientID, ids)
}
func (s *notificationRepoStub) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	return s.markAllReadFn(ctx, recipientID)
}
func (s *notificationRepoStub) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	return s.unreadCountFn(ctx, recipientID)
}

func noopNotificationRepo() *notificationRepoStub {
	return &notificationRepoStub{
		createFn: func(_ context.Context, n *models.Notification) error {
			n.ID = 1
			return nil
		},
		listFn: func(_ context.Context, _ repository.ListNotificationsQuery) (*repository.NotificationPage, error) {
			return &repository.NotificationPage{}, nil
		},
		markReadFn:    func(_ context.Context, _ uint, _ []uint) (int64, error) { return 0, nil },
		markAllReadFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		unreadCountFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// recordingNotifications wraps a NotificationService over a recording repo so
// tests can observe fan-out.
type recordedNotification struct {
	RecipientID uint
	ActorID     uint
	Type        models.NotificationType
	PostID      *uint
}

func newRecordingNotificationService(records *[]recordedNotification) *NotificationService {
	repo := noopNotificationRepo()
	repo.createFn = func(_ context.Context, n *models.Notification) error {
		n.ID = uint(len(*records) + 1)
		*records = append(*records, recordedNotification{
			RecipientID: n.RecipientUserID,
			ActorID:     n.ActorUserID,
			Type:        n.Type,
			PostID:      n.RelatedPostID,
		})
		return nil
	}
	return NewNotificationService(repo, noopUserRepo(), nil, testLogger())
}
