package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/tree"
)

func TestValidatePlacement(t *testing.T) {
	resp := tree.Response{Tree: &tree.Node{ID: "U1", Children: []tree.Node{{ID: "U2"}}}}
	queue := []PendingUser{{UserID: "N1"}, {UserID: "N2"}}

	tests := []struct {
		name string
		req  PlacementRequest
		code errors.Code
	}{
		{"under root", PlacementRequest{NewUserID: "N1", PlacementParentID: "U1"}, ""},
		{"under child", PlacementRequest{NewUserID: "N2", PlacementParentID: "U2"}, ""},
		{"empty user", PlacementRequest{PlacementParentID: "U1"}, errors.ErrCodeInvalidInput},
		{"self", PlacementRequest{NewUserID: "N1", PlacementParentID: "N1"}, errors.ErrCodeInvalidInput},
		{"not pending", PlacementRequest{NewUserID: "X", PlacementParentID: "U1"}, errors.ErrCodeNotFound},
		{"parent outside team", PlacementRequest{NewUserID: "N1", PlacementParentID: "U7"}, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlacement(resp, queue, tt.req)
			if tt.code == "" {
				if err != nil {
					t.Errorf("ValidatePlacement() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidatePlacement() = %v, want %s", err, tt.code)
			}
		})
	}

	placed := []PendingUser{{UserID: "U2"}}
	err := ValidatePlacement(resp, placed, PlacementRequest{NewUserID: "U2", PlacementParentID: "U1"})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("already placed user error = %v, want INVALID_INPUT", err)
	}
}

func TestPlace(t *testing.T) {
	var posted PlacementRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathTeamTree:
			_, _ = w.Write([]byte(treeJSON))
		case PathPlacementQueue:
			_, _ = w.Write([]byte(`[{"userId":"N1","fullName":"Neo","packageUSD":100}]`))
		case PathPlace:
			_ = json.NewDecoder(r.Body).Decode(&posted)
			_, _ = w.Write([]byte(`{"message":"placed"}`))
		default:
			http.NotFound(w, r)
		}
	}, WithToken("tok"))

	res, err := c.Place(context.Background(), PlacementRequest{NewUserID: "N1", PlacementParentID: "U2"})
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if res.Message != "placed" || posted.NewUserID != "N1" || posted.PlacementParentID != "U2" {
		t.Errorf("res = %+v, posted = %+v", res, posted)
	}

	_, err = c.Place(context.Background(), PlacementRequest{NewUserID: "N1", PlacementParentID: "U9"})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Place under unknown parent error = %v, want NOT_FOUND", err)
	}
}
