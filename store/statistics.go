package store

import "context"

// Statistics is the aggregate summary returned by Store.Statistics.
type Statistics struct {
	Total      int64
	ByGenre    map[string]int64
	ByPlatform map[string]int64
}

func (s *Store) Statistics(ctx context.Context) (Statistics, error) {
	conn, cancel, err := s.acquire(ctx)
	if err != nil {
		return Statistics{}, err
	}
	defer cancel()
	defer conn.Close()

	stats := Statistics{
		ByGenre:    make(map[string]int64),
		ByPlatform: make(map[string]int64),
	}

	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`).Scan(&stats.Total); err != nil {
		return Statistics{}, err
	}

	genreRows, err := conn.QueryContext(ctx, `SELECT genre, COUNT(*) FROM videos WHERE genre != '' GROUP BY genre`)
	if err != nil {
		return Statistics{}, err
	}
	defer genreRows.Close()
	for genreRows.Next() {
		var genre string
		var count int64
		if err := genreRows.Scan(&genre, &count); err != nil {
			return Statistics{}, err
		}
		stats.ByGenre[genre] = count
	}
	if err := genreRows.Err(); err != nil {
		return Statistics{}, err
	}

	platformRows, err := conn.QueryContext(ctx, `SELECT platform, COUNT(*) FROM videos WHERE platform != '' GROUP BY platform`)
	if err != nil {
		return Statistics{}, err
	}
	defer platformRows.Close()
	for platformRows.Next() {
		var platform string
		var count int64
		if err := platformRows.Scan(&platform, &count); err != nil {
			return Statistics{}, err
		}
		stats.ByPlatform[platform] = count
	}
	return stats, platformRows.Err()
}
