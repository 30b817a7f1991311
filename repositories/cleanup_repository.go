package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrUnknownCleanupTable = errors.New("unknown cleanup table")

// tableCleanup хранит параметризованные запросы для одной зависимой
// таблицы. Таблицы не подставляются в SQL динамически — только записи
// из этого белого списка.
type tableCleanup struct {
	deleteQuery string
	countQuery  string
	sampleQuery string
}

// cleanupQueries — белый список зависимых таблиц турнира. Порядок
// обхода задаёт сервис удаления, здесь только сами запросы.
var cleanupQueries = map[string]tableCleanup{
	"live_matches": {
		deleteQuery: `DELETE FROM live_matches WHERE match_id IN (SELECT id FROM matches WHERE tournament_id = $1)`,
		countQuery:  `SELECT COUNT(*) FROM live_matches WHERE match_id IN (SELECT id FROM matches WHERE tournament_id = $1)`,
		sampleQuery: `SELECT id FROM live_matches WHERE match_id IN (SELECT id FROM matches WHERE tournament_id = $1) LIMIT $2`,
	},
	"match_results": {
		deleteQuery: `DELETE FROM match_results WHERE match_id IN (SELECT id FROM matches WHERE tournament_id = $1)`,
		countQuery:  `SELECT COUNT(*) FROM match_results WHERE match_id IN (SELECT id FROM matches WHERE tournament_id = $1)`,
		sampleQuery: `SELECT id FROM match_results WHERE match_id IN (SELECT id FROM matches WHERE tournament_id = $1) LIMIT $2`,
	},
	"matches": {
		deleteQuery: `DELETE FROM matches WHERE tournament_id = $1`,
		countQuery:  `SELECT COUNT(*) FROM matches WHERE tournament_id = $1`,
		sampleQuery: `SELECT id FROM matches WHERE tournament_id = $1 LIMIT $2`,
	},
	"match_blocks": {
		deleteQuery: `DELETE FROM match_blocks WHERE tournament_id = $1`,
		countQuery:  `SELECT COUNT(*) FROM match_blocks WHERE tournament_id = $1`,
		sampleQuery: `SELECT id FROM match_blocks WHERE tournament_id = $1 LIMIT $2`,
	},
	"standings": {
		deleteQuery: `DELETE FROM standings WHERE tournament_id = $1`,
		countQuery:  `SELECT COUNT(*) FROM standings WHERE tournament_id = $1`,
		sampleQuery: `SELECT id FROM standings WHERE tournament_id = $1 LIMIT $2`,
	},
	"head_to_head_results": {
		deleteQuery: `DELETE FROM head_to_head_results WHERE tournament_id = $1`,
		countQuery:  `SELECT COUNT(*) FROM head_to_head_results WHERE tournament_id = $1`,
		sampleQuery: `SELECT id FROM head_to_head_results WHERE tournament_id = $1 LIMIT $2`,
	},
	"rosters": {
		deleteQuery: `DELETE FROM rosters WHERE team_id IN (SELECT id FROM teams WHERE tournament_id = $1)`,
		countQuery:  `SELECT COUNT(*) FROM rosters WHERE team_id IN (SELECT id FROM teams WHERE tournament_id = $1)`,
		sampleQuery: `SELECT id FROM rosters WHERE team_id IN (SELECT id FROM teams WHERE tournament_id = $1) LIMIT $2`,
	},
	"teams": {
		deleteQuery: `DELETE FROM teams WHERE tournament_id = $1`,
		countQuery:  `SELECT COUNT(*) FROM teams WHERE tournament_id = $1`,
		sampleQuery: `SELECT id FROM teams WHERE tournament_id = $1 LIMIT $2`,
	},
	"tournament_rules": {
		deleteQuery: `DELETE FROM tournament_rules WHERE tournament_id = $1`,
		countQuery:  `SELECT COUNT(*) FROM tournament_rules WHERE tournament_id = $1`,
		sampleQuery: `SELECT id FROM tournament_rules WHERE tournament_id = $1 LIMIT $2`,
	},
	"tournament_files": {
		deleteQuery: `DELETE FROM tournament_files WHERE tournament_id = $1`,
		countQuery:  `SELECT COUNT(*) FROM tournament_files WHERE tournament_id = $1`,
		sampleQuery: `SELECT id FROM tournament_files WHERE tournament_id = $1 LIMIT $2`,
	},
	"notifications": {
		deleteQuery: `DELETE FROM notifications WHERE tournament_id = $1`,
		countQuery:  `SELECT COUNT(*) FROM notifications WHERE tournament_id = $1`,
		sampleQuery: `SELECT id FROM notifications WHERE tournament_id = $1 LIMIT $2`,
	},
	"tournament_history": {
		deleteQuery: `DELETE FROM tournament_history WHERE tournament_id = $1`,
		countQuery:  `SELECT COUNT(*) FROM tournament_history WHERE tournament_id = $1`,
		sampleQuery: `SELECT id FROM tournament_history WHERE tournament_id = $1 LIMIT $2`,
	},
	"tournament_archives": {
		deleteQuery: `DELETE FROM tournament_archives WHERE tournament_id = $1`,
		countQuery:  `SELECT COUNT(*) FROM tournament_archives WHERE tournament_id = $1`,
		sampleQuery: `SELECT id FROM tournament_archives WHERE tournament_id = $1 LIMIT $2`,
	},
}

type CleanupRepository interface {
	// DeleteByTournament удаляет строки таблицы из белого списка,
	// относящиеся к турниру, и возвращает число удалённых строк.
	DeleteByTournament(ctx context.Context, table string, tournamentID int) (int64, error)

	// CountByTournament возвращает число оставшихся строк таблицы.
	CountByTournament(ctx context.Context, table string, tournamentID int) (int64, error)

	// SampleIDs возвращает идентификаторы нескольких оставшихся строк
	// для отчёта расследования.
	SampleIDs(ctx context.Context, table string, tournamentID int, limit int) ([]int, error)

	// ListBlobKeys собирает ключи внешних объектов (логотипы, документы),
	// на которые ссылаются строки турнира, до их каскадного удаления.
	ListBlobKeys(ctx context.Context, tournamentID int) ([]string, error)
}

type postgresCleanupRepository struct {
	db *sql.DB
}

func NewPostgresCleanupRepository(db *sql.DB) CleanupRepository {
	return &postgresCleanupRepository{db: db}
}

func (r *postgresCleanupRepository) DeleteByTournament(ctx context.Context, table string, tournamentID int) (int64, error) {
	q, ok := cleanupQueries[table]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCleanupTable, table)
	}

	result, err := r.db.ExecContext(ctx, q.deleteQuery, tournamentID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *postgresCleanupRepository) CountByTournament(ctx context.Context, table string, tournamentID int) (int64, error) {
	q, ok := cleanupQueries[table]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCleanupTable, table)
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, q.countQuery, tournamentID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresCleanupRepository) SampleIDs(ctx context.Context, table string, tournamentID int, limit int) ([]int, error) {
	q, ok := cleanupQueries[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCleanupTable, table)
	}

	rows, err := r.db.QueryContext(ctx, q.sampleQuery, tournamentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0, limit)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *postgresCleanupRepository) ListBlobKeys(ctx context.Context, tournamentID int) ([]string, error) {
	keys := make([]string, 0)

	queries := []string{
		`SELECT logo_key FROM tournaments WHERE id = $1 AND logo_key IS NOT NULL`,
		`SELECT logo_key FROM teams WHERE tournament_id = $1 AND logo_key IS NOT NULL`,
		`SELECT blob_key FROM tournament_files WHERE tournament_id = $1`,
	}

	for _, query := range queries {
		rows, err := r.db.QueryContext(ctx, query, tournamentID)
		if err != nil {
			if IsUndefinedTable(err) {
				continue
			}
			return nil, err
		}
		for rows.Next() {
			var key string
			if scanErr := rows.Scan(&key); scanErr != nil {
				rows.Close()
				return nil, scanErr
			}
			if key != "" {
				keys = append(keys, key)
			}
		}
		if err = rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return keys, nil
}
