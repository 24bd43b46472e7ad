package database

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// PersonAppearances is one entry in the most-seen leaderboard.
type PersonAppearances struct {
	Name        string `json:"name"`
	Appearances int64  `json:"appearances"`
}

// Stats is the corpus-wide summary served by the analytics endpoint.
type Stats struct {
	TotalVideos int64               `json:"total_videos"`
	TotalPeople int64               `json:"total_people"`
	Hosts       int64               `json:"hosts"`
	Guests      int64               `json:"guests"`
	TopPeople   []PersonAppearances `json:"top_people"`
}

// CollectStats gathers corpus-wide counts and the top five people by stored
// occurrence count.
func CollectStats(db Querier) (Stats, error) {
	var stats Stats

	counts := []struct {
		dest    *int64
		builder sq.SelectBuilder
	}{
		{&stats.TotalVideos, psql.Select("COUNT(DISTINCT video_path)").From("occurrences")},
		{&stats.TotalPeople, psql.Select("COUNT(*)").From("persons")},
		{&stats.Hosts, psql.Select("COUNT(*)").From("persons").Where(sq.Eq{"role": "host"})},
		{&stats.Guests, psql.Select("COUNT(*)").From("persons").Where(sq.Or{sq.Eq{"role": "guest"}, sq.Eq{"role": "unknown"}})},
	}
	for _, c := range counts {
		sqlStr, args, err := c.builder.ToSql()
		if err != nil {
			return Stats{}, fmt.Errorf("failed to build SQL for CollectStats: %w", err)
		}
		if err := db.QueryRow(sqlStr, args...).Scan(c.dest); err != nil {
			return Stats{}, fmt.Errorf("failed to execute stats count query: %w", err)
		}
	}

	sqlStr, args, err := psql.Select("p.name", "COUNT(*) AS appearances").
		From("persons p").
		Join("occurrences o ON p.person_id = o.person_id").
		GroupBy("p.person_id").
		OrderBy("appearances DESC").
		Limit(5).
		ToSql()
	if err != nil {
		return Stats{}, fmt.Errorf("failed to build SQL for top people: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to execute top people query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p PersonAppearances
		if err := rows.Scan(&p.Name, &p.Appearances); err != nil {
			return Stats{}, fmt.Errorf("failed to scan top people row: %w", err)
		}
		stats.TopPeople = append(stats.TopPeople, p)
	}
	return stats, rows.Err()
}

// NetworkNode is a person vertex in the co-occurrence graph.
type NetworkNode struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Role  string  `json:"role"`
	Title *string `json:"title"`
}

// NetworkEdge links two people who appear in the same video.
type NetworkEdge struct {
	Source int64 `json:"source"`
	Target int64 `json:"target"`
}

// CoOccurrenceNetwork returns every person as a node plus an edge for each
// pair of people that share a video. Pairs are emitted once (source < target).
func CoOccurrenceNetwork(db Querier) ([]NetworkNode, []NetworkEdge, error) {
	sqlStr, args, err := psql.Select("person_id", "name", "role", "title").From("persons").ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build SQL for network nodes: %w", err)
	}
	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to execute network nodes query: %w", err)
	}
	var nodes []NetworkNode
	for rows.Next() {
		var n NetworkNode
		if err := rows.Scan(&n.ID, &n.Name, &n.Role, &n.Title); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("failed to scan network node row: %w", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, nil, err
	}
	rows.Close()

	sqlStr, args, err = psql.Select("DISTINCT p1.person_id AS source", "p2.person_id AS target").
		From("occurrences o1").
		Join("occurrences o2 ON o1.video_path = o2.video_path").
		Join("persons p1 ON o1.person_id = p1.person_id").
		Join("persons p2 ON o2.person_id = p2.person_id").
		Where("p1.person_id < p2.person_id").
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build SQL for network edges: %w", err)
	}
	rows, err = db.Query(sqlStr, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to execute network edges query: %w", err)
	}
	defer rows.Close()

	var edges []NetworkEdge
	for rows.Next() {
		var e NetworkEdge
		if err := rows.Scan(&e.Source, &e.Target); err != nil {
			return nil, nil, fmt.Errorf("failed to scan network edge row: %w", err)
		}
		edges = append(edges, e)
	}
	return nodes, edges, rows.Err()
}
