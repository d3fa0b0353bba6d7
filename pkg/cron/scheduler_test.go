package cron

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/invoice-converter/pkg/storage"
)

func TestScheduler_RunNow(t *testing.T) {
	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	for _, name := range []string{"a.pdf", "b.pdf"} {
		_, err := archive.Save(ctx, name, "application/pdf", "", strings.NewReader(name))
		require.NoError(t, err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewScheduler(archive, "0 3 * * *", 24*time.Hour, logger)

	removed, err := s.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	s.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	removed, err = s.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
}

func TestScheduler_StartRejectsBadSchedule(t *testing.T) {
	archive, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s := NewScheduler(archive, "not a schedule", time.Hour, logger)
	assert.Error(t, s.Start())

	s = NewScheduler(archive, "@every 1h", time.Hour, logger)
	require.NoError(t, s.Start())
	<-s.Stop().Done()
}
