package tree

import (
	"encoding/json"
	"io"
	"os"

	"github.com/sagenex/teamtree/pkg/errors"
)

// Decode reads a team tree response from r and validates it.
func Decode(r io.Reader) (Response, error) {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return Response{}, errors.Wrap(errors.ErrCodeInvalidResponse, err, "decode team tree")
	}
	if err := resp.Validate(); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// Unmarshal decodes and validates a team tree response held in memory.
func Unmarshal(data []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return Response{}, errors.Wrap(errors.ErrCodeInvalidResponse, err, "decode team tree")
	}
	if err := resp.Validate(); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// Marshal serializes a response to indented JSON in the backend's shape.
func Marshal(resp Response) ([]byte, error) {
	return json.MarshalIndent(resp, "", "  ")
}

// ReadFile reads a team tree response from a JSON file. Unlike [Decode] it
// only requires a tree: saved responses are laid out like fresh API
// responses, where duplicate or malformed members are skipped unless the
// layout runs in strict mode.
func ReadFile(path string) (Response, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Response{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return Response{}, errors.Wrap(errors.ErrCodeInvalidResponse, err, "decode %s", path)
	}
	if resp.Tree == nil {
		return Response{}, errors.New(errors.ErrCodeInvalidTree, "%s has no tree", path)
	}
	return resp, nil
}

// WriteFile writes a team tree response to a JSON file.
func WriteFile(resp Response, path string) error {
	data, err := Marshal(resp)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
