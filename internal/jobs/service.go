// Package jobs runs image edit and replace jobs from validated input to a
// stored history entry.
package jobs

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"joyex-backend/internal/accuracy"
	"joyex-backend/internal/fal"
	"joyex-backend/internal/logger"
	"joyex-backend/internal/metrics"
	"joyex-backend/internal/models"
	"joyex-backend/internal/prompt"
	"joyex-backend/internal/quality"
	"joyex-backend/internal/store"
)

// Generator produces edited images. *fal.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, req fal.Request) (*fal.Response, error)
	Mode() string
}

// EventPublisher announces job lifecycle changes to subscribed clients.
type EventPublisher interface {
	PublishJobEvent(ctx context.Context, event string, job *models.Job) error
}

// Archiver copies generated images into storage we control and returns the
// new URLs in the same order.
type Archiver interface {
	Archive(ctx context.Context, userID string, urls []string) ([]string, error)
}

type Input struct {
	Mode             models.JobMode
	Prompt           string
	ImageURLs        []string
	CompetitorImages []string
	ProductImages    []string
	UserID           string
	Size             string
	Seed             *int64
	Strength         *float64
	Guidance         *float64
	AddonPrompt      string
	AccuracyPreset   string
}

type Failure int

const (
	FailureNone Failure = iota
	FailureValidation
	FailureUpstream
	FailureInternal
)

// Result is the JSON-facing outcome plus the failure class callers use to
// pick a transport status.
type Result struct {
	models.JobResult
	Failure Failure
}

type Options struct {
	DefaultPreset  string
	StrictAccuracy bool
	// PublicBaseURL resolves server-relative image paths such as /uploads/x.png.
	PublicBaseURL string

	Publisher EventPublisher
	Archiver  Archiver
	Quality   *quality.Monitor
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

type Service struct {
	store          store.JobStore
	generator      Generator
	publisher      EventPublisher
	archiver       Archiver
	quality        *quality.Monitor
	metrics        *metrics.Metrics
	logger         *zap.Logger
	defaultPreset  string
	strictAccuracy bool
	publicBaseURL  string
}

func NewService(jobStore store.JobStore, generator Generator, opts Options) *Service {
	preset := opts.DefaultPreset
	if preset == "" {
		preset = accuracy.Standard
	}
	return &Service{
		store:          jobStore,
		generator:      generator,
		publisher:      opts.Publisher,
		archiver:       opts.Archiver,
		quality:        opts.Quality,
		metrics:        opts.Metrics,
		logger:         logger.OrNop(opts.Logger),
		defaultPreset:  preset,
		strictAccuracy: opts.StrictAccuracy,
		publicBaseURL:  strings.TrimSuffix(opts.PublicBaseURL, "/"),
	}
}

// Submit validates the input, generates the images and records the job. It
// never returns an error; failures are reported in the result and leave no
// job behind.
func (s *Service) Submit(ctx context.Context, in Input) Result {
	mode := modeLabel(in.Mode)
	log := s.logger.With(zap.String("user_id", in.UserID), zap.String("mode", mode))

	v, err := s.validate(in)
	if err != nil {
		log.Info("job rejected", zap.Error(err))
		s.metrics.RecordJob(mode, "invalid")
		return failed(FailureValidation, err)
	}

	finalPrompt, err := prompt.Build(in.Mode, in.Prompt, len(v.images), in.AddonPrompt)
	if err != nil {
		s.metrics.RecordJob(mode, "failed")
		return failed(FailureInternal, err)
	}

	started := time.Now()
	resp, err := s.generator.Generate(ctx, fal.Request{
		Prompt:    finalPrompt,
		ImageURLs: v.images,
		Size:      in.Size,
		Seed:      in.Seed,
		Strength:  in.Strength,
		Guidance:  in.Guidance,
		Accuracy:  &v.preset,
	})
	elapsed := time.Since(started)
	s.metrics.RecordGeneration(mode, s.generator.Mode(), elapsed)
	s.recordQuality(elapsed, err == nil)
	if err != nil {
		log.Error("generation failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		s.metrics.RecordJob(mode, "failed")
		return failed(FailureUpstream, err)
	}

	images := toResultImages(resp.Images)
	if s.archiver != nil && len(images) > 0 {
		s.archive(ctx, log, in.UserID, images)
	}

	job := &models.Job{
		UserID: in.UserID,
		Mode:   in.Mode,
		Prompt: in.Prompt,
		Images: v.images,
		Meta:   buildMeta(in, v, finalPrompt, resp),
	}
	if len(images) > 0 {
		job.OutputURL = images[0].URL
	}

	saved, err := s.store.Save(ctx, job)
	if err != nil {
		log.Error("failed to save job", zap.Error(err))
		s.metrics.RecordJob(mode, "failed")
		return failed(FailureInternal, err)
	}

	s.publish(ctx, log, models.EventJobCompleted, saved)
	s.metrics.RecordJob(mode, "success")
	log.Info("job completed",
		zap.String("job_id", saved.ID),
		zap.Int("image_count", len(images)),
		zap.Duration("elapsed", elapsed),
	)

	return Result{JobResult: models.JobResult{
		Success: true,
		Data: &models.JobResultData{
			Images: images,
			JobID:  saved.ID,
		},
	}}
}

// History returns the user's jobs, newest first. Store failures are logged
// and yield an empty history.
func (s *Service) History(ctx context.Context, userID string) []models.Job {
	jobs, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to list job history", zap.String("user_id", userID), zap.Error(err))
		return []models.Job{}
	}
	if jobs == nil {
		return []models.Job{}
	}
	return jobs
}

func (s *Service) Get(ctx context.Context, id, userID string) (*models.Job, error) {
	return s.store.GetByIDAndUser(ctx, id, userID)
}

// Delete removes the job if userID owns it. Failures are logged, never returned.
func (s *Service) Delete(ctx context.Context, id, userID string) {
	if err := s.store.DeleteByIDAndUser(ctx, id, userID); err != nil {
		s.logger.Warn("failed to delete job", zap.String("job_id", id), zap.String("user_id", userID), zap.Error(err))
		return
	}
	s.publish(ctx, s.logger, models.EventJobDeleted, &models.Job{ID: id, UserID: userID})
}

func (s *Service) archive(ctx context.Context, log *zap.Logger, userID string, images []models.ResultImage) {
	urls := make([]string, len(images))
	for i, img := range images {
		urls[i] = img.URL
	}
	archived, err := s.archiver.Archive(ctx, userID, urls)
	if err != nil || len(archived) != len(images) {
		log.Warn("failed to archive results, keeping upstream urls", zap.Error(err))
		return
	}
	for i := range images {
		images[i].URL = archived[i]
	}
}

func (s *Service) publish(ctx context.Context, log *zap.Logger, event string, job *models.Job) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishJobEvent(ctx, event, job); err != nil {
		log.Warn("failed to publish job event", zap.String("event", event), zap.Error(err))
	}
}

func (s *Service) recordQuality(elapsed time.Duration, success bool) {
	if s.quality == nil {
		return
	}
	s.quality.Record(quality.Metrics{
		ProcessingTime: elapsed,
		QualityScore:   quality.CalculateScore(0, 0, elapsed, success),
		Success:        success,
	})
}

// modeLabel bounds the mode values used as metric labels and log fields.
func modeLabel(m models.JobMode) string {
	if m.Valid() {
		return string(m)
	}
	return "unknown"
}

func failed(kind Failure, err error) Result {
	msg := err.Error()
	var verr *ValidationError
	if errors.As(err, &verr) {
		msg = verr.Message
	}
	return Result{
		JobResult: models.JobResult{Success: false, Error: msg},
		Failure:   kind,
	}
}

func toResultImages(images []fal.Image) []models.ResultImage {
	out := make([]models.ResultImage, len(images))
	for i, img := range images {
		out[i] = models.ResultImage{URL: img.URL, Width: img.Width, Height: img.Height}
	}
	return out
}

func buildMeta(in Input, v *validated, finalPrompt string, resp *fal.Response) map[string]interface{} {
	params := map[string]interface{}{}
	if in.Size != "" {
		params["size"] = in.Size
	}
	if in.Seed != nil {
		params["seed"] = *in.Seed
	}
	if in.Strength != nil {
		params["strength"] = *in.Strength
	}
	if in.Guidance != nil {
		params["guidance"] = *in.Guidance
	}

	meta := map[string]interface{}{
		"original_prompt": in.Prompt,
		"final_prompt":    finalPrompt,
		"fal_response":    resp,
		"parameters":      params,
		"accuracy": map[string]interface{}{
			"preset": v.preset.Name,
			"valid":  v.accurate,
		},
	}
	if in.Mode == models.ModeReplace && v.competitorSize > 0 {
		meta["competitor_count"] = v.competitorSize
		meta["product_count"] = v.productSize
	}
	return meta
}
