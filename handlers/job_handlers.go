package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/camden-git/vimlbackend/detect"
	"github.com/camden-git/vimlbackend/models"
	"github.com/camden-git/vimlbackend/repository"
	"github.com/camden-git/vimlbackend/workers"
)

type JobHandler struct {
	Jobs      repository.JobRepositoryInterface
	Processor *workers.JobProcessor
}

type processRequest struct {
	VideoPath  string            `json:"video_path"`
	VideoPaths []string          `json:"video_paths"`
	Config     *models.JobConfig `json:"config"`
	Detections *detect.Results   `json:"detections"`
}

type processResponse struct {
	VideoPath string `json:"video_path,omitempty"`
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	StatusURL string `json:"status_url"`
}

// SubmitJob accepts one video reference (or several under video_paths) plus a
// configuration and optional pre-computed detections, creates queued Job rows
// and hands them to the worker pool. Correlation runs asynchronously; the
// response carries the job ids to poll. A job refused by a full queue is
// marked failed immediately and reported as such.
func (jh *JobHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	paths := req.VideoPaths
	if strings.TrimSpace(req.VideoPath) != "" {
		paths = append([]string{req.VideoPath}, paths...)
	}
	if len(paths) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required field: video_path"})
		return
	}

	cfg := models.JobConfig{}
	if req.Config != nil {
		cfg = *req.Config
	}

	var responses []processResponse
	for _, videoPath := range paths {
		job := &models.Job{
			ID:        uuid.New().String(),
			VideoPath: videoPath,
			Status:    models.JobQueued,
		}
		if err := job.SetConfig(cfg); err != nil {
			log.Printf("Error encoding config for video %s: %v", videoPath, err)
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid job config"})
			return
		}
		if err := jh.Jobs.Create(job); err != nil {
			log.Printf("Error creating job for video %s: %v", videoPath, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create job"})
			return
		}

		status := models.JobQueued
		queued := jh.Processor.QueueJob(workers.CorrelationJob{
			JobID:      job.ID,
			VideoPath:  videoPath,
			Config:     cfg,
			Detections: req.Detections,
		})
		if !queued {
			// the row would otherwise sit at queued forever with nothing
			// ever picking it up
			status = models.JobFailed
			msg := "correlation queue full"
			if err := jh.Jobs.SetStatus(job.ID, models.JobFailed, &msg); err != nil {
				log.Printf("Error marking rejected job %s failed: %v", job.ID, err)
			}
		}

		responses = append(responses, processResponse{
			VideoPath: videoPath,
			JobID:     job.ID,
			Status:    status,
			StatusURL: "/v1/jobs/" + job.ID,
		})
	}

	if len(responses) == 1 {
		httpStatus := http.StatusAccepted
		if responses[0].Status == models.JobFailed {
			httpStatus = http.StatusServiceUnavailable
		}
		writeJSON(w, httpStatus, responses[0])
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"batch_results": responses})
}

func (jh *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")

	job, err := jh.Jobs.GetByID(jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Job not found"})
		} else {
			log.Printf("Error getting job %s: %v", jobID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve job"})
		}
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func (jh *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	jobs, err := jh.Jobs.List(limit)
	if err != nil {
		log.Printf("Error listing jobs: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve jobs"})
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}
