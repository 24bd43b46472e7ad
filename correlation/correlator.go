// Package correlation implements the multi-modal identity fusion engine: it
// turns the three timestamp-indexed detection streams for one video into a
// deduplicated person directory and an occurrence log.
package correlation

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/camden-git/vimlbackend/detect"
	"github.com/camden-git/vimlbackend/models"
	"github.com/camden-git/vimlbackend/repository"
)

// ocrFaceTolerance is the maximum distance between an OCR event and its
// nearest sampled face frame for the pair to seed an identity. Distances of
// exactly one second or more are rejected.
const ocrFaceTolerance = 1.0

// Fixed per-method confidences. These are attribution confidences of the
// correlation itself, not engine scores.
const (
	ConfidenceOCR   = 95.0
	ConfidenceFace  = 90.0
	ConfidenceVoice = 85.0
)

// Input is everything one correlation run consumes: the video scope, the
// owning job, the initial review status, and the three detection lists.
type Input struct {
	VideoPath     string
	JobID         string
	InitialStatus string
	OCR           []detect.OCREvent
	Faces         map[float64][]detect.FaceDetection
	Speakers      []detect.SpeakerSegment
}

// Correlator fuses detections into Person, Identifier and Occurrence rows.
// One Correlator may serve many runs; all per-run state lives in runState.
type Correlator struct {
	persons     repository.PersonRepositoryInterface
	identifiers repository.IdentifierRepositoryInterface
	occurrences repository.OccurrenceRepositoryInterface
	matcher     EmbeddingMatcher
}

// NewCorrelator creates a new Correlator backed by the given repositories and
// embedding comparator.
func NewCorrelator(
	persons repository.PersonRepositoryInterface,
	identifiers repository.IdentifierRepositoryInterface,
	occurrences repository.OccurrenceRepositoryInterface,
	matcher EmbeddingMatcher,
) *Correlator {
	return &Correlator{
		persons:     persons,
		identifiers: identifiers,
		occurrences: occurrences,
		matcher:     matcher,
	}
}

// runState accumulates what pass 1 learns and passes 2 and 3 consume. It is
// scoped to a single run and discarded afterwards.
type runState struct {
	seededOrder     []uint              // person ids in first-seen order
	knownEmbeddings map[uint][][]float32
	speakerPersons  map[string]uint // diarization label -> person id, first bind wins
}

func newRunState() *runState {
	return &runState{
		knownEmbeddings: make(map[uint][][]float32),
		speakerPersons:  make(map[string]uint),
	}
}

func (st *runState) recordEmbedding(personID uint, embedding []float32) {
	if _, known := st.knownEmbeddings[personID]; !known {
		st.seededOrder = append(st.seededOrder, personID)
	}
	st.knownEmbeddings[personID] = append(st.knownEmbeddings[personID], embedding)
}

// Run executes the three correlation passes in order. Each pass persists its
// writes before the next starts; there is no transaction spanning the run, so
// a failure leaves earlier passes' rows in place. That partially-correlated
// state is recoverable by rerunning the job.
func (c *Correlator) Run(in Input) error {
	st := newRunState()
	if err := c.seedIdentities(in, st); err != nil {
		return fmt.Errorf("identity seeding pass: %w", err)
	}
	if err := c.propagateFaces(in, st); err != nil {
		return fmt.Errorf("face propagation pass: %w", err)
	}
	if err := c.propagateSpeakers(in, st); err != nil {
		return fmt.Errorf("speaker propagation pass: %w", err)
	}
	return nil
}

// seedIdentities is pass 1: every OCR event that lands within tolerance of a
// sampled face frame names that frame's first face. This is the only place
// persons are ever created, so a video without OCR events yields nothing at
// all, regardless of how many faces or speakers were detected.
func (c *Correlator) seedIdentities(in Input, st *runState) error {
	for _, event := range in.OCR {
		closestTS, ok := nearestTimestamp(in.Faces, event.Timestamp)
		if !ok {
			continue
		}
		if math.Abs(closestTS-event.Timestamp) >= ocrFaceTolerance {
			continue
		}
		faces := in.Faces[closestTS]
		if len(faces) == 0 {
			continue
		}
		// list order, not size or score, picks the named exemplar
		exemplar := faces[0]

		name := normalizeName(event.Text)
		person, err := c.findOrCreatePerson(in.VideoPath, name)
		if err != nil {
			return err
		}

		occurrence := &models.Occurrence{
			VideoPath:        in.VideoPath,
			PersonID:         &person.ID,
			TimestampSeconds: event.Timestamp,
			Method:           models.MethodOCR,
			Confidence:       ConfidenceOCR,
			Details:          event.Text,
			ReviewStatus:     in.InitialStatus,
			JobID:            in.JobID,
		}
		if err := c.occurrences.Create(occurrence); err != nil {
			return err
		}

		identifier := &models.Identifier{PersonID: person.ID, Method: models.IdentifierFace}
		identifier.SetEmbedding(exemplar.Embedding)
		if err := c.identifiers.Create(identifier); err != nil {
			return err
		}

		st.recordEmbedding(person.ID, exemplar.Embedding)

		// bind the speaker label active at this moment; a label, once
		// bound, is never rebound
		for _, segment := range in.Speakers {
			if segment.Start <= event.Timestamp && event.Timestamp <= segment.End {
				if _, bound := st.speakerPersons[segment.Label]; !bound {
					st.speakerPersons[segment.Label] = person.ID
					break
				}
			}
		}
	}
	return nil
}

// propagateFaces is pass 2: every detected face in the video, not just the
// OCR-aligned ones, is compared against each seeded person's exemplars in
// seed order. The first person with any matching exemplar takes the
// occurrence; genuine ambiguity is not resolved.
func (c *Correlator) propagateFaces(in Input, st *runState) error {
	for _, ts := range sortedTimestamps(in.Faces) {
		for _, face := range in.Faces[ts] {
			for _, personID := range st.seededOrder {
				if !c.matcher.Matches(st.knownEmbeddings[personID], face.Embedding) {
					continue
				}
				personID := personID
				occurrence := &models.Occurrence{
					VideoPath:        in.VideoPath,
					PersonID:         &personID,
					TimestampSeconds: ts,
					Method:           models.MethodFace,
					Confidence:       ConfidenceFace,
					Details:          formatRegion(face.Region),
					ReviewStatus:     in.InitialStatus,
					JobID:            in.JobID,
				}
				if err := c.occurrences.Create(occurrence); err != nil {
					return err
				}
				break
			}
		}
	}
	return nil
}

// propagateSpeakers is pass 3: one occurrence at the start of every segment
// whose label was bound in pass 1. Unattributed speech is dropped.
func (c *Correlator) propagateSpeakers(in Input, st *runState) error {
	for _, segment := range in.Speakers {
		personID, bound := st.speakerPersons[segment.Label]
		if !bound {
			continue
		}
		occurrence := &models.Occurrence{
			VideoPath:        in.VideoPath,
			PersonID:         &personID,
			TimestampSeconds: segment.Start,
			Method:           models.MethodVoice,
			Confidence:       ConfidenceVoice,
			Details:          fmt.Sprintf("Speaks until %.2fs", segment.End),
			ReviewStatus:     in.InitialStatus,
			JobID:            in.JobID,
		}
		if err := c.occurrences.Create(occurrence); err != nil {
			return err
		}
	}
	return nil
}

func (c *Correlator) findOrCreatePerson(videoPath, name string) (*models.Person, error) {
	person, err := c.persons.GetByVideoAndName(videoPath, name)
	if err == nil {
		return person, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	person = &models.Person{VideoPath: videoPath, Name: name, Role: models.RoleUnknown}
	if err := c.persons.Create(person); err != nil {
		return nil, err
	}
	return person, nil
}

// normalizeName trims and title-cases raw chyron text. "jane doe" and
// " Jane Doe " collapse to the same person key.
func normalizeName(text string) string {
	return cases.Title(language.English).String(strings.TrimSpace(text))
}

// nearestTimestamp finds the sampled face timestamp closest to ts. Equidistant
// frames resolve to the earlier timestamp so exemplar choice is reproducible.
// ok is false when no frames were sampled at all.
func nearestTimestamp(faces map[float64][]detect.FaceDetection, ts float64) (float64, bool) {
	var closest float64
	found := false
	for t := range faces {
		if !found {
			closest = t
			found = true
			continue
		}
		dist, best := math.Abs(t-ts), math.Abs(closest-ts)
		if dist < best || (dist == best && t < closest) {
			closest = t
		}
	}
	return closest, found
}

func sortedTimestamps(faces map[float64][]detect.FaceDetection) []float64 {
	keys := make([]float64, 0, len(faces))
	for t := range faces {
		keys = append(keys, t)
	}
	sort.Float64s(keys)
	return keys
}

func formatRegion(region [4]float64) string {
	return fmt.Sprintf("(%g, %g, %g, %g)", region[0], region[1], region[2], region[3])
}
