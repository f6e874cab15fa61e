package contract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type pingWorker struct{}

func (pingWorker) Run(context.Context) error { return nil }

func TestGetWorkerName(t *testing.T) {
	req := require.New(t)

	req.Equal("pingWorker", GetWorkerName(pingWorker{}))
	req.Equal("pingWorker", GetWorkerName(&pingWorker{}))
	req.Equal("NilWorker", GetWorkerName(nil))
}
