package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/linkpile/linkpile/internal/apperr"
	"github.com/linkpile/linkpile/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// failure (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByIDs retrieves multiple users in one query. Missing IDs are simply
// absent from the result.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Create creates a new user. A username or email clash surfaces as Conflict.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return apperr.Wrap(apperr.Conflict, "username or email already taken", err)
		}
		return err
	}
	return nil
}

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// UpdateOwned updates title and text of a post, but only when actorID is its
// author. Returns the updated post.
func (r *PostRepository) UpdateOwned(ctx context.Context, postID, actorID int64, title, text string) (*models.Post, error) {
	post, err := r.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, apperr.Newf(apperr.NotFound, "post %d not found", postID)
	}
	if post.AuthorID != actorID {
		return nil, apperr.New(apperr.Unauthorized, "only the author can edit a post")
	}

	post.Title = title
	post.Text = text
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// DeleteOwned deletes a post and its vote ledger rows in one transaction,
// but only when actorID is its author.
func (r *PostRepository) DeleteOwned(ctx context.Context, postID, actorID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Newf(apperr.NotFound, "post %d not found", postID)
			}
			return err
		}
		if post.AuthorID != actorID {
			return apperr.New(apperr.Unauthorized, "only the author can delete a post")
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.VoteRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
}

// ListLatest returns the newest posts ordered by (created_at, id) descending.
func (r *PostRepository) ListLatest(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListBefore returns posts strictly older than the (before, beforeID) pair in
// (created_at, id) descending order. The id comparison breaks created_at ties
// so a page boundary never loses or repeats a row.
func (r *PostRepository) ListBefore(ctx context.Context, before time.Time, beforeID int64, limit int) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Where("created_at < ? OR (created_at = ? AND id < ?)", before, before, beforeID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// VoteRepository provides vote-ledger read operations. All writes to the
// ledger go through the vote engine.
type VoteRepository struct {
	*Repository
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(repo *Repository) *VoteRepository {
	return &VoteRepository{Repository: repo}
}

// GetByKey retrieves a single vote record
func (r *VoteRepository) GetByKey(ctx context.Context, key models.VoteKey) (*models.VoteRecord, error) {
	var vote models.VoteRecord
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", key.UserID, key.PostID).
		First(&vote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vote, nil
}

// GetByKeys retrieves multiple vote records in one query
func (r *VoteRepository) GetByKeys(ctx context.Context, keys []models.VoteKey) ([]*models.VoteRecord, error) {
	pairs := make([][]interface{}, len(keys))
	for i, k := range keys {
		pairs[i] = []interface{}{k.UserID, k.PostID}
	}

	var votes []*models.VoteRecord
	if err := r.db.WithContext(ctx).
		Where("(user_id, post_id) IN ?", pairs).
		Find(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}
