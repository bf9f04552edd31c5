package backend

import (
	"context"

	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/tree"
)

// ValidatePlacement checks req against a freshly fetched tree and queue: the
// new user must be pending and the placement parent must already be placed
// in the caller's tree.
func ValidatePlacement(resp tree.Response, queue []PendingUser, req PlacementRequest) error {
	if err := errors.ValidateMemberID(req.NewUserID); err != nil {
		return err
	}
	if err := errors.ValidateMemberID(req.PlacementParentID); err != nil {
		return err
	}
	if req.NewUserID == req.PlacementParentID {
		return errors.New(errors.ErrCodeInvalidInput, "cannot place %q under itself", req.NewUserID)
	}
	if !isPending(queue, req.NewUserID) {
		return errors.New(errors.ErrCodeNotFound, "user %q is not waiting for placement", req.NewUserID)
	}
	if resp.Tree == nil {
		return errors.New(errors.ErrCodeInvalidResponse, "response has no tree")
	}
	if _, ok := tree.Find(resp.Tree, req.PlacementParentID); !ok {
		return errors.New(errors.ErrCodeNotFound, "placement parent %q is not in your team", req.PlacementParentID)
	}
	if _, ok := tree.Find(resp.Tree, req.NewUserID); ok {
		return errors.New(errors.ErrCodeInvalidInput, "user %q is already placed", req.NewUserID)
	}
	return nil
}

func isPending(queue []PendingUser, id string) bool {
	for _, u := range queue {
		if u.UserID == id {
			return true
		}
	}
	return false
}

// Place fetches the current tree and queue, validates req against them and
// submits the placement.
func (c *Client) Place(ctx context.Context, req PlacementRequest) (PlacementResult, error) {
	resp, err := c.FetchTeamTree(ctx)
	if err != nil {
		return PlacementResult{}, err
	}
	queue, err := c.FetchPlacementQueue(ctx)
	if err != nil {
		return PlacementResult{}, err
	}
	if err := ValidatePlacement(resp, queue, req); err != nil {
		return PlacementResult{}, err
	}
	return c.PlaceUser(ctx, req)
}
