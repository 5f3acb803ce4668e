package vote

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/linkpile/linkpile/internal/apperr"
	"github.com/linkpile/linkpile/internal/models"
	"github.com/linkpile/linkpile/pkg/logging"
	"github.com/linkpile/linkpile/pkg/telemetry"
)

// Direction is a caller-supplied vote direction.
type Direction string

// Accepted vote directions.
const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ParseDirection validates a wire-level direction string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionUp, DirectionDown:
		return Direction(s), nil
	default:
		return "", apperr.Newf(apperr.InvalidArgument, "invalid vote direction %q", s)
	}
}

// value maps a direction to its signed ledger value.
func (d Direction) value() int {
	if d == DirectionDown {
		return models.VoteDown
	}
	return models.VoteUp
}

// Engine applies vote intents to the vote ledger and the denormalized post
// score as one atomic transaction. It is the only writer of Post.Score.
type Engine struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewEngine creates a new vote engine
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{
		db:     db,
		logger: logging.WithComponent("vote-engine"),
	}
}

// ApplyVote applies a vote by actorID on postID. The current ledger row (or
// its absence) decides the outcome:
//
//	no row              -> insert value, score += value
//	row with same value -> retraction: value 0, score -= value
//	row with value 0    -> re-vote: value restored, score += value
//	row with flipped    -> value replaced, score += 2*value
//
// A serialization failure is retried once from the read step, then surfaced
// as Conflict.
func (e *Engine) ApplyVote(ctx context.Context, actorID, postID int64, direction Direction) error {
	if actorID == 0 {
		return apperr.New(apperr.Unauthenticated, "not logged in")
	}
	target, err := ParseDirection(string(direction))
	if err != nil {
		return err
	}

	ctx, span := telemetry.StartSpan(ctx, "vote.apply")
	defer span.End()

	// A client disconnect must not abandon a transaction halfway: run it on
	// a context that keeps values but not cancellation.
	ctx = context.WithoutCancel(ctx)

	for attempt := 0; ; attempt++ {
		err = e.applyOnce(ctx, actorID, postID, target.value())
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return err
		}
		if attempt > 0 {
			return apperr.Wrap(apperr.Conflict, "vote transaction conflicted; retry", err)
		}
		e.logger.Warn("vote transaction conflicted, retrying",
			zap.Int64("actor_id", actorID),
			zap.Int64("post_id", postID),
			zap.Error(err))
	}
}

// applyOnce runs one read-decide-write cycle inside a transaction. The
// SELECT ... FOR UPDATE on the ledger row linearizes concurrent votes by the
// same user on the same post without serializing votes across posts.
func (e *Engine) applyOnce(ctx context.Context, actorID, postID int64, target int) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Newf(apperr.NotFound, "post %d not found", postID)
			}
			return err
		}

		var existing models.VoteRecord
		var current *int
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND post_id = ?", actorID, postID).
			First(&existing).Error
		switch {
		case err == nil:
			current = &existing.Value
		case errors.Is(err, gorm.ErrRecordNotFound):
			current = nil
		default:
			return err
		}

		newValue, delta := resolve(current, target)

		if current == nil {
			record := models.VoteRecord{UserID: actorID, PostID: postID, Value: newValue}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&models.VoteRecord{}).
				Where("user_id = ? AND post_id = ?", actorID, postID).
				Update("value", newValue).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("score", gorm.Expr("score + ?", delta)).Error
	})
}

// resolve decides the new ledger value and the score delta from the current
// ledger value (nil = no row) and the target value (+1 or -1).
func resolve(current *int, target int) (newValue, delta int) {
	switch {
	case current == nil:
		return target, target
	case *current == target:
		// Repeat vote in the same direction retracts it. The row is kept at
		// zero so a retraction stays distinguishable from never voting.
		return models.VoteRetracted, -target
	case *current == models.VoteRetracted:
		return target, target
	default:
		// Flip: remove the old contribution and add the new one in one step.
		return target, 2 * target
	}
}

// isSerializationFailure reports whether err is a Postgres serialization
// failure (40001) or deadlock (40P01), the two transient transaction
// conflicts worth re-running.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
