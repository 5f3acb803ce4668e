package loader

import (
	"context"

	"github.com/linkpile/linkpile/internal/db"
	"github.com/linkpile/linkpile/internal/models"
)

// Bundle holds the per-request loaders. The transport middleware builds a
// fresh Bundle for every inbound request so cached rows — in particular a
// requester's own vote rows — never bleed between actors.
type Bundle struct {
	Users *Loader[int64, *models.User]
	Votes *Loader[models.VoteKey, *models.VoteRecord]
}

// NewBundle creates the per-request loader set.
func NewBundle(users *db.UserRepository, votes *db.VoteRepository) *Bundle {
	return &Bundle{
		Users: New(func(ctx context.Context, ids []int64) (map[int64]*models.User, error) {
			rows, err := users.GetByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			byID := make(map[int64]*models.User, len(rows))
			for _, u := range rows {
				byID[u.ID] = u
			}
			return byID, nil
		}),
		Votes: New(func(ctx context.Context, keys []models.VoteKey) (map[models.VoteKey]*models.VoteRecord, error) {
			rows, err := votes.GetByKeys(ctx, keys)
			if err != nil {
				return nil, err
			}
			byKey := make(map[models.VoteKey]*models.VoteRecord, len(rows))
			for _, v := range rows {
				byKey[models.VoteKey{UserID: v.UserID, PostID: v.PostID}] = v
			}
			return byKey, nil
		}),
	}
}
