package infrastructure

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UeberSloalon/Telegram-Bot-Downloader/internal/domain"
)

func setupTestRepo(t *testing.T) *SQLiteJobRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := NewSQLiteJobRepository(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepository_CreateAndFindByID(t *testing.T) {
	repo := setupTestRepo(t)

	job := domain.NewJob("https://soundcloud.com/artist/track", domain.PlatformSoundCloud, domain.TierMP3)
	require.NoError(t, repo.Create(job))

	found, err := repo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.URL, found.URL)
	assert.Equal(t, domain.StatusQueued, found.Status)
}

func TestRepository_UpdateTransition(t *testing.T) {
	repo := setupTestRepo(t)

	job := domain.NewJob("https://youtu.be/abc", domain.PlatformYouTube, domain.Tier720)
	require.NoError(t, repo.Create(job))

	job.MarkProcessing()
	require.NoError(t, repo.Update(job))
	job.MarkCompleted("/tmp/video.mp4", domain.KindVideo)
	require.NoError(t, repo.Update(job))

	found, err := repo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, found.Status)
	assert.Equal(t, "/tmp/video.mp4", found.FilePath)
	assert.NotNil(t, found.CompletedAt)
}

func TestRepository_FindAllWithFilters(t *testing.T) {
	repo := setupTestRepo(t)

	sc := domain.NewJob("https://soundcloud.com/a/t1", domain.PlatformSoundCloud, domain.TierMP3)
	yt := domain.NewJob("https://youtu.be/abc", domain.PlatformYouTube, domain.Tier360)
	yt.MarkFailed(assert.AnError)
	require.NoError(t, repo.Create(sc))
	require.NoError(t, repo.Create(yt))

	all, err := repo.FindAll(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	failed, err := repo.FindAll(map[string]interface{}{"status": domain.StatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, yt.ID, failed[0].ID)
}

func TestRepository_GetStats(t *testing.T) {
	repo := setupTestRepo(t)

	done := domain.NewJob("https://soundcloud.com/a/t1", domain.PlatformSoundCloud, domain.TierMP3)
	done.MarkCompleted("/tmp/t1.mp3", domain.KindAudio)
	partial := domain.NewJob("https://soundcloud.com/a/sets/x", domain.PlatformSoundCloud, domain.TierMP3)
	partial.MarkPartial("/tmp/x_partial.zip")
	failed := domain.NewJob("https://youtu.be/abc", domain.PlatformYouTube, domain.TierBest)
	failed.MarkFailed(assert.AnError)

	for _, j := range []*domain.Job{done, partial, failed} {
		require.NoError(t, repo.Create(j))
	}

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(1), stats.Partial)
	assert.Equal(t, int64(1), stats.Failed)

	count, err := repo.CountByStatus(domain.StatusFailed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
