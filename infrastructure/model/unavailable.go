package model

import (
	"context"

	"github.com/Sk16er/Scholar-chat/application/ports"
	pkgerrors "github.com/Sk16er/Scholar-chat/pkg/errors"
)

// UnavailableClient stands in for the model when none is configured.
// Every call fails with an UNAVAILABLE error carrying Reason.
type UnavailableClient struct {
	Reason string
}

var _ ports.ModelClient = UnavailableClient{}

// Generate always fails
func (c UnavailableClient) Generate(ctx context.Context, req ports.GenerateRequest) (*ports.GenerateResponse, error) {
	err := pkgerrors.NewUnavailableError("model")
	if c.Reason != "" {
		err = err.WithDetails(map[string]interface{}{"reason": c.Reason})
	}
	return nil, err
}
