package service

import (
	"context"
	"encoding/json"

	"paceline/internal/intervals"
)

// Remote is the slice of the training-analytics client the services consume.
// A nil Remote means the user hasn't connected the service yet; read paths
// degrade to local data and sync paths fail with intervals.ErrNotConfigured.
type Remote interface {
	Activities(ctx context.Context, oldest, newest string) ([]intervals.Activity, error)
	Activity(ctx context.Context, id string) (*intervals.Activity, error)
	ActivityIntervals(ctx context.Context, id string) (json.RawMessage, error)
	ActivityMessages(ctx context.Context, id string) (json.RawMessage, error)
	Wellness(ctx context.Context, oldest, newest string) ([]intervals.Wellness, error)
	Events(ctx context.Context, oldest, newest string) ([]intervals.Event, error)
}
