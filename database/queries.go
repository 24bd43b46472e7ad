package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Querier abstracts *sql.DB / *sql.Tx for the squirrel read layer.
type Querier interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// ReviewQueueRow is one occurrence joined with its (possibly absent) person,
// as served by the review queue endpoint.
type ReviewQueueRow struct {
	OccurrenceID     int64   `json:"occurrence_id"`
	VideoPath        string  `json:"video_path"`
	TimestampSeconds float64 `json:"timestamp_seconds"`
	Method           string  `json:"method_used"`
	Confidence       float64 `json:"confidence"`
	Details          *string `json:"details"`
	ReviewStatus     string  `json:"review_status"`
	PersonID         *int64  `json:"person_id"`
	Name             *string `json:"name"`
	Title            *string `json:"title"`
	Organization     *string `json:"organization"`
	Role             *string `json:"role"`
}

// ReviewQueueFilter narrows the review queue listing. Status "all" (or empty)
// disables the status filter; JobID empty disables the job filter.
type ReviewQueueFilter struct {
	JobID  string
	Status string
	Limit  uint64
}

// ListReviewQueue returns occurrences joined with their persons, oldest
// timestamp first. Unlinked occurrences are included with NULL person fields.
func ListReviewQueue(db Querier, filter ReviewQueueFilter) ([]ReviewQueueRow, error) {
	builder := psql.Select(
		"o.occurrence_id", "o.video_path", "o.timestamp_seconds", "o.method_used",
		"o.confidence", "o.details", "o.review_status",
		"p.person_id", "p.name", "p.title", "p.organization", "p.role",
	).
		From("occurrences o").
		LeftJoin("persons p ON o.person_id = p.person_id")

	if filter.Status != "" && filter.Status != "all" {
		builder = builder.Where(sq.Eq{"o.review_status": filter.Status})
	}
	if filter.JobID != "" {
		builder = builder.Where(sq.Eq{"o.job_id": filter.JobID})
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 50
	}
	builder = builder.OrderBy("o.timestamp_seconds ASC").Limit(limit)

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListReviewQueue: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ListReviewQueue query: %w", err)
	}
	defer rows.Close()

	var results []ReviewQueueRow
	for rows.Next() {
		var r ReviewQueueRow
		err := rows.Scan(
			&r.OccurrenceID, &r.VideoPath, &r.TimestampSeconds, &r.Method,
			&r.Confidence, &r.Details, &r.ReviewStatus,
			&r.PersonID, &r.Name, &r.Title, &r.Organization, &r.Role,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review queue row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// SearchResult is one occurrence matched by a free-text name search.
type SearchResult struct {
	TimestampSeconds float64 `json:"timestamp_seconds"`
	Method           string  `json:"method_used"`
	Confidence       float64 `json:"confidence"`
	Details          *string `json:"details"`
	Name             string  `json:"name"`
	VideoPath        string  `json:"video_path"`
}

// SearchOccurrences finds occurrences whose person's name matches the query
// (substring match), optionally scoped to one video.
func SearchOccurrences(db Querier, name, videoPath string) ([]SearchResult, error) {
	builder := psql.Select(
		"o.timestamp_seconds", "o.method_used", "o.confidence", "o.details",
		"p.name", "p.video_path",
	).
		From("occurrences o").
		Join("persons p ON o.person_id = p.person_id").
		Where(sq.Like{"p.name": "%" + name + "%"})

	if videoPath != "" {
		builder = builder.Where(sq.Eq{"p.video_path": videoPath})
	}

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for SearchOccurrences: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute SearchOccurrences query: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.TimestampSeconds, &r.Method, &r.Confidence, &r.Details, &r.Name, &r.VideoPath); err != nil {
			return nil, fmt.Errorf("failed to scan search result row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// IdentityTrackRow is one linked occurrence for a video, in timestamp order,
// used to render the VIML caption track.
type IdentityTrackRow struct {
	TimestampSeconds float64
	Method           string
	Confidence       float64
	PersonID         int64
	Name             string
}

// ListIdentityTrack returns all linked occurrences for a video ordered by
// timestamp, joined with the person's current name.
func ListIdentityTrack(db Querier, videoPath string) ([]IdentityTrackRow, error) {
	builder := psql.Select(
		"o.timestamp_seconds", "o.method_used", "o.confidence", "p.person_id", "p.name",
	).
		From("occurrences o").
		Join("persons p ON o.person_id = p.person_id").
		Where(sq.Eq{"o.video_path": videoPath}).
		OrderBy("o.timestamp_seconds ASC")

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListIdentityTrack: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ListIdentityTrack query: %w", err)
	}
	defer rows.Close()

	var results []IdentityTrackRow
	for rows.Next() {
		var r IdentityTrackRow
		if err := rows.Scan(&r.TimestampSeconds, &r.Method, &r.Confidence, &r.PersonID, &r.Name); err != nil {
			return nil, fmt.Errorf("failed to scan identity track row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
