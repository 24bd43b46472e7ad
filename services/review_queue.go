package services

import (
	"fmt"

	"github.com/camden-git/vimlbackend/database"
	"github.com/camden-git/vimlbackend/models"
)

// QueueOccurrence is the compact occurrence shape shown inside a grouped
// queue entry.
type QueueOccurrence struct {
	ID         int64   `json:"id"`
	Timestamp  float64 `json:"ts"`
	Confidence float64 `json:"conf"`
}

// QueuePerson is one person-centric entry in the grouped review queue.
// PersonKey is the person id, or "unlinked_<occurrence id>" for a synthetic
// person wrapping a single never-linked occurrence.
type QueuePerson struct {
	PersonKey       string            `json:"person_id"`
	Name            string            `json:"name"`
	Title           *string           `json:"title"`
	Organization    *string           `json:"organization"`
	Role            string            `json:"role"`
	VideoPath       string            `json:"video_path"`
	FirstAppearance float64           `json:"first_appearance"`
	Occurrences     []QueueOccurrence `json:"occurrences"`
}

// GroupedQueue buckets queue entries by role: hosts on one side, everyone
// else (including synthetic unlinked persons) under guests.
type GroupedQueue struct {
	Hosts  []*QueuePerson `json:"hosts"`
	Guests []*QueuePerson `json:"guests"`
}

// GroupQueue folds flat review-queue rows into the person-centric view.
// Rows must already be ordered by timestamp so FirstAppearance is the
// earliest occurrence. Synthetic persons are keyed by occurrence id and are
// never combined with each other or with real persons, even when their
// inferred names match.
func GroupQueue(rows []database.ReviewQueueRow) GroupedQueue {
	grouped := GroupedQueue{Hosts: []*QueuePerson{}, Guests: []*QueuePerson{}}
	seen := make(map[string]*QueuePerson)

	for _, row := range rows {
		unlinked := row.PersonID == nil
		var key string
		if unlinked {
			key = fmt.Sprintf("unlinked_%d", row.OccurrenceID)
		} else {
			key = fmt.Sprintf("%d", *row.PersonID)
		}

		person, ok := seen[key]
		if !ok {
			person = &QueuePerson{
				PersonKey:       key,
				Name:            inferName(row, unlinked),
				Role:            models.RoleGuest,
				VideoPath:       row.VideoPath,
				FirstAppearance: row.TimestampSeconds,
				Occurrences:     []QueueOccurrence{},
			}
			if !unlinked {
				person.Title = row.Title
				person.Organization = row.Organization
				if row.Role != nil && *row.Role != "" {
					person.Role = *row.Role
				}
			}
			seen[key] = person

			if person.Role == models.RoleHost {
				grouped.Hosts = append(grouped.Hosts, person)
			} else {
				grouped.Guests = append(grouped.Guests, person)
			}
		}

		person.Occurrences = append(person.Occurrences, QueueOccurrence{
			ID:         row.OccurrenceID,
			Timestamp:  row.TimestampSeconds,
			Confidence: row.Confidence,
		})
	}

	return grouped
}

// inferName picks a display name for a queue entry: the person's name when
// linked, the detected text for unlinked OCR hits, "Unknown" otherwise.
func inferName(row database.ReviewQueueRow, unlinked bool) string {
	if !unlinked && row.Name != nil && *row.Name != "" {
		return *row.Name
	}
	if row.Method == models.MethodOCR && row.Details != nil && *row.Details != "" {
		return *row.Details
	}
	return "Unknown"
}
