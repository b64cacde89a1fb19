package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/videoscribe/analyzer/config"
	"github.com/videoscribe/analyzer/model"
)

func mockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return OpenWithDB(db), mock
}

func TestUpsertInsertsThenReadsBackID(t *testing.T) {
	config.Clock = config.FixedTimestampGenerator{Timestamp: time.Unix(1700000000, 0)}
	defer func() { config.Clock = config.RealTimestampGenerator{} }()

	s, mock := mockStore(t)

	rec := model.VideoRecord{
		URL:            "https://example.com/watch?v=abc",
		Title:          "a video",
		Platform:       model.PlatformYouTube,
		Genre:          "documentary",
		Tags:           []string{"nature", "calm"},
		AnalysisResult: []byte(`{"genre":"documentary"}`),
	}

	mock.ExpectExec("INSERT INTO videos").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT id FROM videos WHERE url = ?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	id, err := s.Upsert(context.Background(), rec)
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRejectsInvalidRecord(t *testing.T) {
	s, _ := mockStore(t)
	rec := model.VideoRecord{URL: "https://example.com/x", AnalysisResult: []byte(`{}`)}

	_, err := s.Upsert(context.Background(), rec)
	require.Error(t, err)
}

func TestGetByURLReturnsZeroValueWhenMissing(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM videos WHERE url = ?").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "url", "title", "platform", "video_id", "duration", "view_count", "upload_date",
			"genre", "mood", "tags", "analysis_result", "thumbnail_path", "scenes_count", "created_at", "updated_at",
		}))

	rec, err := s.GetByURL(context.Background(), "https://example.com/missing")
	require.NoError(t, err)
	require.Equal(t, model.VideoRecord{}, rec)
}

func TestDeleteByID(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectExec("DELETE FROM videos WHERE id = ?").WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.DeleteByID(context.Background(), 7)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatisticsAggregatesCounts(t *testing.T) {
	s, mock := mockStore(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM videos").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT genre, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"genre", "count"}).AddRow("documentary", 2).AddRow("vlog", 1))
	mock.ExpectQuery("SELECT platform, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"platform", "count"}).AddRow("youtube", 3))

	stats, err := s.Statistics(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.Total)
	require.Equal(t, int64(2), stats.ByGenre["documentary"])
	require.Equal(t, int64(3), stats.ByPlatform["youtube"])
}
