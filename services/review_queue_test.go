package services

import (
	"testing"

	"github.com/camden-git/vimlbackend/database"
	"github.com/camden-git/vimlbackend/models"
)

func int64Ptr(v int64) *int64 { return &v }

func TestGroupQueueBucketsByRole(t *testing.T) {
	rows := []database.ReviewQueueRow{
		{
			OccurrenceID: 1, VideoPath: "show.mp4", TimestampSeconds: 1.0,
			Method: models.MethodOCR, Confidence: 95,
			PersonID: int64Ptr(10), Name: strPtr("Alice Anchor"), Role: strPtr(models.RoleHost),
		},
		{
			OccurrenceID: 2, VideoPath: "show.mp4", TimestampSeconds: 2.0,
			Method: models.MethodFace, Confidence: 90,
			PersonID: int64Ptr(10), Name: strPtr("Alice Anchor"), Role: strPtr(models.RoleHost),
		},
		{
			OccurrenceID: 3, VideoPath: "show.mp4", TimestampSeconds: 3.0,
			Method: models.MethodOCR, Confidence: 95,
			PersonID: int64Ptr(11), Name: strPtr("Bob Guest"), Role: strPtr(models.RoleGuest),
		},
		{
			OccurrenceID: 4, VideoPath: "show.mp4", TimestampSeconds: 4.0,
			Method: models.MethodOCR, Confidence: 95,
			PersonID: int64Ptr(12), Name: strPtr("Carol Expert"), Role: strPtr(models.RoleUnknown),
		},
	}

	grouped := GroupQueue(rows)

	if len(grouped.Hosts) != 1 {
		t.Fatalf("expected 1 host, got %d", len(grouped.Hosts))
	}
	host := grouped.Hosts[0]
	if host.Name != "Alice Anchor" || host.PersonKey != "10" {
		t.Errorf("host entry: got %q/%q", host.Name, host.PersonKey)
	}
	if len(host.Occurrences) != 2 {
		t.Errorf("host occurrences: got %d, want 2", len(host.Occurrences))
	}
	if host.FirstAppearance != 1.0 {
		t.Errorf("host first appearance: got %v, want 1.0", host.FirstAppearance)
	}

	// unknown role lands with the guests but keeps its value
	if len(grouped.Guests) != 2 {
		t.Fatalf("expected 2 guests, got %d", len(grouped.Guests))
	}
	for _, g := range grouped.Guests {
		if g.Name == "Carol Expert" && g.Role != models.RoleUnknown {
			t.Errorf("Carol's role: got %q, want unknown", g.Role)
		}
	}
}

func TestGroupQueueSyntheticPersonsStayDistinct(t *testing.T) {
	details := strPtr("Mystery Speaker")
	rows := []database.ReviewQueueRow{
		{OccurrenceID: 7, VideoPath: "show.mp4", TimestampSeconds: 1.0, Method: models.MethodOCR, Confidence: 95, Details: details},
		{OccurrenceID: 8, VideoPath: "show.mp4", TimestampSeconds: 2.0, Method: models.MethodOCR, Confidence: 95, Details: details},
	}

	grouped := GroupQueue(rows)

	if len(grouped.Hosts) != 0 {
		t.Errorf("synthetic persons should never be hosts, got %d", len(grouped.Hosts))
	}
	if len(grouped.Guests) != 2 {
		t.Fatalf("identical names must not collapse synthetic persons, got %d entries", len(grouped.Guests))
	}
	keys := map[string]bool{}
	for _, g := range grouped.Guests {
		keys[g.PersonKey] = true
		if g.Name != "Mystery Speaker" {
			t.Errorf("synthetic name: got %q, want detected text", g.Name)
		}
		if len(g.Occurrences) != 1 {
			t.Errorf("synthetic entry should wrap one occurrence, got %d", len(g.Occurrences))
		}
	}
	if !keys["unlinked_7"] || !keys["unlinked_8"] {
		t.Errorf("expected keys unlinked_7 and unlinked_8, got %v", keys)
	}
}

func TestGroupQueueUnlinkedNonOCRNamedUnknown(t *testing.T) {
	rows := []database.ReviewQueueRow{
		{OccurrenceID: 9, VideoPath: "show.mp4", TimestampSeconds: 1.0, Method: models.MethodFace, Confidence: 90, Details: strPtr("(1, 2, 3, 4)")},
	}

	grouped := GroupQueue(rows)
	if len(grouped.Guests) != 1 {
		t.Fatalf("expected 1 guest, got %d", len(grouped.Guests))
	}
	if grouped.Guests[0].Name != "Unknown" {
		t.Errorf("unlinked face entry name: got %q, want Unknown", grouped.Guests[0].Name)
	}
}

func TestGroupQueueEmptyInput(t *testing.T) {
	grouped := GroupQueue(nil)
	if grouped.Hosts == nil || grouped.Guests == nil {
		t.Error("buckets should be empty slices, not nil")
	}
	if len(grouped.Hosts) != 0 || len(grouped.Guests) != 0 {
		t.Errorf("expected empty buckets, got %d/%d", len(grouped.Hosts), len(grouped.Guests))
	}
}
