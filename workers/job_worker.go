package workers

import (
	"fmt"
	"log"
	"sync"

	"github.com/camden-git/vimlbackend/correlation"
	"github.com/camden-git/vimlbackend/detect"
	"github.com/camden-git/vimlbackend/models"
	"github.com/camden-git/vimlbackend/repository"
)

// CorrelationJob is one queued correlation run. Detections may be supplied
// inline at submission time (the adapters ran upstream); otherwise the
// processor's Provider is invoked per enabled step.
type CorrelationJob struct {
	JobID      string
	VideoPath  string
	Config     models.JobConfig
	Detections *detect.Results
}

// JobProcessor runs correlation jobs on a fixed worker pool and drives each
// job's queued -> processing -> completed|failed progression. Distinct videos
// may correlate concurrently; within one job the passes stay sequential.
type JobProcessor struct {
	JobQueue   chan CorrelationJob
	Jobs       repository.JobRepositoryInterface
	Correlator *correlation.Correlator
	Provider   detect.Provider // may be nil when all jobs carry inline detections
	Wg         sync.WaitGroup
	StopChan   chan struct{}
	Pending    map[string]bool
	Mutex      sync.Mutex
}

// NewJobProcessor starts numWorkers workers consuming from a queue of
// queueSize.
func NewJobProcessor(jobs repository.JobRepositoryInterface, correlator *correlation.Correlator, provider detect.Provider, queueSize, numWorkers int) *JobProcessor {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	proc := &JobProcessor{
		JobQueue:   make(chan CorrelationJob, queueSize),
		Jobs:       jobs,
		Correlator: correlator,
		Provider:   provider,
		StopChan:   make(chan struct{}),
		Pending:    make(map[string]bool),
	}
	proc.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go proc.worker(i)
	}
	log.Printf("Started %d correlation worker(s) with queue size %d", numWorkers, queueSize)
	return proc
}

func (jp *JobProcessor) worker(id int) {
	defer jp.Wg.Done()

	log.Printf("Correlation worker %d started", id)
	for {
		select {
		case job, ok := <-jp.JobQueue:
			if !ok {
				log.Printf("Correlation worker %d stopping: Job queue closed", id)
				return
			}

			log.Printf("Worker %d: Received job %s for: %s", id, job.JobID, job.VideoPath)
			jp.runJob(id, job)

			jp.Mutex.Lock()
			delete(jp.Pending, job.JobID)
			jp.Mutex.Unlock()

		case <-jp.StopChan:
			log.Printf("Correlation worker %d stopping: Stop signal received", id)
			return
		}
	}
}

// runJob executes one correlation run and records its terminal status. The
// failure message is captured into the job's result column; any retry policy
// belongs to whatever queued the job, not this layer.
func (jp *JobProcessor) runJob(id int, job CorrelationJob) {
	if err := jp.Jobs.SetStatus(job.JobID, models.JobProcessing, nil); err != nil {
		log.Printf("Worker %d: ERROR marking job %s processing: %v. Skipping job.", id, job.JobID, err)
		return
	}

	taskErr := jp.correlate(job)
	if taskErr != nil {
		log.Printf("Worker %d: job %s failed: %v", id, job.JobID, taskErr)
		msg := taskErr.Error()
		if err := jp.Jobs.SetStatus(job.JobID, models.JobFailed, &msg); err != nil {
			log.Printf("Worker %d: ERROR marking job %s failed: %v", id, job.JobID, err)
		}
		return
	}

	if err := jp.Jobs.SetStatus(job.JobID, models.JobCompleted, nil); err != nil {
		log.Printf("Worker %d: ERROR marking job %s completed: %v", id, job.JobID, err)
		return
	}
	log.Printf("Worker %d: job %s completed for %s", id, job.JobID, job.VideoPath)
}

func (jp *JobProcessor) correlate(job CorrelationJob) error {
	results, err := jp.gatherDetections(job)
	if err != nil {
		return err
	}

	stored, err := jp.Jobs.GetByID(job.JobID)
	if err != nil {
		return fmt.Errorf("failed to load job before correlation: %w", err)
	}

	input := correlation.Input{
		VideoPath:     job.VideoPath,
		JobID:         job.JobID,
		InitialStatus: stored.InitialReviewStatus(),
		OCR:           results.OCR,
		Faces:         results.FaceMap(),
		Speakers:      results.Speakers,
	}
	return jp.Correlator.Run(input)
}

// gatherDetections assembles the three detection lists, honoring the job's
// enabled steps. Disabled channels contribute empty lists, which the
// correlator treats as normal input.
func (jp *JobProcessor) gatherDetections(job CorrelationJob) (detect.Results, error) {
	var results detect.Results

	if job.Detections != nil {
		if job.Config.StepEnabled(models.StepOCR) {
			results.OCR = job.Detections.OCR
		}
		if job.Config.StepEnabled(models.StepFace) {
			results.Faces = job.Detections.Faces
		}
		if job.Config.StepEnabled(models.StepAudio) {
			results.Speakers = job.Detections.Speakers
		}
		return results, nil
	}

	if jp.Provider == nil {
		return results, fmt.Errorf("no detections supplied and no detection provider configured")
	}

	if job.Config.StepEnabled(models.StepOCR) {
		crop := detect.LowerThird
		if override := job.Config.CropFor(models.StepOCR); override != nil {
			crop = *override
		}
		ocr, err := jp.Provider.DetectOCR(job.VideoPath, crop)
		if err != nil {
			return results, fmt.Errorf("ocr adapter: %w", err)
		}
		results.OCR = ocr
	}
	if job.Config.StepEnabled(models.StepFace) {
		faces, err := jp.Provider.DetectFaces(job.VideoPath, job.Config.CropFor(models.StepFace))
		if err != nil {
			return results, fmt.Errorf("face adapter: %w", err)
		}
		results.Faces = faces
	}
	if job.Config.StepEnabled(models.StepAudio) {
		speakers, err := jp.Provider.DetectSpeakers(job.VideoPath)
		if err != nil {
			return results, fmt.Errorf("speaker adapter: %w", err)
		}
		results.Speakers = speakers
	}
	return results, nil
}

// QueueJob queues a correlation run if the job is not already pending.
func (jp *JobProcessor) QueueJob(job CorrelationJob) bool {
	jp.Mutex.Lock()
	if jp.Pending[job.JobID] {
		jp.Mutex.Unlock()
		return false
	}
	jp.Pending[job.JobID] = true
	jp.Mutex.Unlock()

	select {
	case jp.JobQueue <- job:
		log.Printf("Queued correlation job %s for: %s", job.JobID, job.VideoPath)
		return true
	default:
		log.Printf("WARNING: Correlation job queue full. Failed to queue job %s for: %s", job.JobID, job.VideoPath)
		jp.Mutex.Lock()
		delete(jp.Pending, job.JobID)
		jp.Mutex.Unlock()
		return false
	}
}

func (jp *JobProcessor) Stop() {
	log.Println("Stopping correlation workers...")
	close(jp.StopChan)
	jp.Wg.Wait()
	log.Println("All correlation workers stopped")
}
