package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/common"
	"github.com/itsascout/scout/internal/events"
	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/models"
	"github.com/itsascout/scout/internal/steps"
)

// Supervisor drives the analysis steps for one job: publisher-level
// steps in order, then the article-level steps, persisting each result
// as it lands and publishing lifecycle events along the way.
//
// A step that reports an error in its result does not stop the run; a
// storage failure or panic does, marking the job failed and returning
// the error to the job runner.
type Supervisor struct {
	store      interfaces.StorageManager
	fetcher    interfaces.FetchManager
	events     interfaces.EventService
	scanner    interfaces.WAFScanner
	discoverer interfaces.TermsDiscoverer
	evaluator  interfaces.TermsEvaluator
	profiler   interfaces.MetadataProfiler
	freshness  *Freshness

	robotsUserAgent string
	logger          arbor.ILogger
}

type SupervisorOptions struct {
	Store      interfaces.StorageManager
	Fetcher    interfaces.FetchManager
	Events     interfaces.EventService
	Scanner    interfaces.WAFScanner
	Discoverer interfaces.TermsDiscoverer
	Evaluator  interfaces.TermsEvaluator
	Profiler   interfaces.MetadataProfiler
	Freshness  *Freshness

	RobotsUserAgent string
	Logger          arbor.ILogger
}

func NewSupervisor(opts SupervisorOptions) *Supervisor {
	return &Supervisor{
		store:           opts.Store,
		fetcher:         opts.Fetcher,
		events:          opts.Events,
		scanner:         opts.Scanner,
		discoverer:      opts.Discoverer,
		evaluator:       opts.Evaluator,
		profiler:        opts.Profiler,
		freshness:       opts.Freshness,
		robotsUserAgent: opts.RobotsUserAgent,
		logger:          opts.Logger,
	}
}

// runContext carries the cross-step values of one job run. Steps are
// sequential within a job, so plain fields suffice.
type runContext struct {
	job       *models.ResolutionJob
	publisher *models.Publisher
	channel   string

	homepageURL     string
	homepageFetched bool
	homepage        *models.FetchResult
}

// homepageHTML lazily fetches the publisher homepage, once per run.
// Fetch exhaustion degrades to an empty body so dependent steps report
// their own errors instead of aborting the job.
func (s *Supervisor) homepageHTML(ctx context.Context, rc *runContext) *models.FetchResult {
	if rc.homepageFetched {
		return rc.homepage
	}
	rc.homepageFetched = true

	result, err := s.fetcher.Fetch(ctx, rc.homepageURL, rc.publisher)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", rc.homepageURL).Msg("Homepage fetch failed")
		rc.homepage = &models.FetchResult{URL: rc.homepageURL}
		return rc.homepage
	}
	rc.homepage = result
	return result
}

// Run executes the pipeline for the job. The returned error is non-nil
// only for a terminal failure, which the job runner surfaces.
func (s *Supervisor) Run(ctx context.Context, jobID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = s.fail(ctx, jobID, fmt.Errorf("pipeline panic: %v", r))
		}
	}()

	job, err := s.store.Jobs().GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if job == nil {
		return fmt.Errorf("job %s not found", jobID)
	}

	publisher, err := s.store.Publishers().GetOrCreate(ctx, job.Domain, "https://"+job.Domain+"/")
	if err != nil {
		return s.fail(ctx, jobID, fmt.Errorf("load publisher %s: %w", job.Domain, err))
	}

	if err := s.store.Jobs().Mutate(ctx, jobID, func(j *models.ResolutionJob) {
		j.Status = models.JobStatusRunning
		j.UpdatedAt = time.Now().UTC()
	}); err != nil {
		return s.fail(ctx, jobID, fmt.Errorf("mark job running: %w", err))
	}

	rc := &runContext{
		job:         job,
		publisher:   publisher,
		channel:     events.JobChannel(jobID),
		homepageURL: "https://" + job.Domain + "/",
	}

	// The publisher identity is known before any step runs; announce it
	// up front so clients can render the header immediately.
	s.emit(ctx, rc, models.StepPublisher, models.StatusStarted, map[string]any{
		"domain": publisher.Domain,
		"name":   publisher.Name,
		"url":    publisher.URL,
	})

	if s.freshness.ShouldSkipPublisherSteps(publisher) {
		s.skipPublisherSteps(ctx, rc)
	} else if err := s.runPublisherSteps(ctx, rc); err != nil {
		return s.fail(ctx, jobID, err)
	}

	if err := s.runArticleSteps(ctx, rc); err != nil {
		return s.fail(ctx, jobID, err)
	}

	if err := s.store.Jobs().Mutate(ctx, jobID, func(j *models.ResolutionJob) {
		j.Status = models.JobStatusCompleted
		j.UpdatedAt = time.Now().UTC()
	}); err != nil {
		return s.fail(ctx, jobID, fmt.Errorf("mark job completed: %w", err))
	}

	s.emit(ctx, rc, models.StepPipeline, models.StatusCompleted, map[string]any{
		"waf_result": rc.job.WAFResult,
		"tos_result": rc.job.ToSResult,
	})

	s.logger.Info().Str("job_id", jobID).Str("domain", job.Domain).Msg("Pipeline completed")
	return nil
}

func (s *Supervisor) fail(ctx context.Context, jobID string, cause error) error {
	if mutErr := s.store.Jobs().Mutate(ctx, jobID, func(j *models.ResolutionJob) {
		j.Status = models.JobStatusFailed
		j.UpdatedAt = time.Now().UTC()
	}); mutErr != nil {
		s.logger.Error().Err(mutErr).Str("job_id", jobID).Msg("Failed to mark job failed")
	}

	s.events.Publish(ctx, events.JobChannel(jobID), models.StepEvent{
		Step:   models.StepPipeline,
		Status: models.StatusFailed,
		Data:   map[string]any{"error": cause.Error()},
	})

	s.logger.Error().Err(cause).Str("job_id", jobID).Msg("Pipeline failed")
	return cause
}

func (s *Supervisor) emit(ctx context.Context, rc *runContext, step, status string, data any) {
	s.events.Publish(ctx, rc.channel, models.StepEvent{Step: step, Status: status, Data: data})
}

// skipPublisherSteps emits skipped events for the whole publisher block
// and copies the prior completed job's publisher-level results onto the
// current job. Missing prior values stay nil; copy problems are logged,
// never fatal.
func (s *Supervisor) skipPublisherSteps(ctx context.Context, rc *runContext) {
	for _, step := range models.PublisherSteps {
		s.emit(ctx, rc, step, models.StatusSkipped, map[string]any{"reason": "fresh"})
	}

	prior, err := s.store.Jobs().FindPriorCompleted(ctx, rc.job.Domain, rc.job.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("domain", rc.job.Domain).Msg("Prior job lookup failed, skipping result copy")
		return
	}
	if prior == nil {
		return
	}

	if err := s.store.Jobs().Mutate(ctx, rc.job.ID, func(j *models.ResolutionJob) {
		j.WAFResult = prior.WAFResult
		j.ToSResult = prior.ToSResult
		j.RobotsResult = prior.RobotsResult
		j.AIBotResult = prior.AIBotResult
		j.SitemapResult = prior.SitemapResult
		j.RSSResult = prior.RSSResult
		j.RSLResult = prior.RSLResult
		j.MetadataResult = prior.MetadataResult
		j.UpdatedAt = time.Now().UTC()
	}); err != nil {
		s.logger.Warn().Err(err).Str("job_id", rc.job.ID).Msg("Prior result copy failed")
		return
	}

	rc.job.WAFResult = prior.WAFResult
	rc.job.ToSResult = prior.ToSResult
	rc.job.RobotsResult = prior.RobotsResult
	rc.job.AIBotResult = prior.AIBotResult
	rc.job.SitemapResult = prior.SitemapResult
	rc.job.RSSResult = prior.RSSResult
	rc.job.RSLResult = prior.RSLResult
	rc.job.MetadataResult = prior.MetadataResult
}

func (s *Supervisor) runPublisherSteps(ctx context.Context, rc *runContext) error {
	// 1. WAF fingerprint.
	s.emit(ctx, rc, models.StepWAF, models.StatusStarted, nil)
	wafResult, findings := steps.DetectWAF(ctx, s.scanner, rc.homepageURL)
	if err := s.persistJob(ctx, rc, func(j *models.ResolutionJob) { j.WAFResult = wafResult }); err != nil {
		return err
	}
	s.persistPublisher(ctx, rc, func(p *models.Publisher) {
		p.WAFDetected = wafResult.WAFDetected
		p.WAFType = wafResult.WAFType
	})
	s.appendWAFReports(ctx, rc.job.Domain, findings)
	s.emit(ctx, rc, models.StepWAF, models.StatusCompleted, wafResult)

	// 2. ToS discovery.
	s.emit(ctx, rc, models.StepToSDiscovery, models.StatusStarted, nil)
	homepage := s.homepageHTML(ctx, rc)
	discovery := steps.DiscoverToS(ctx, s.discoverer, homepage.Body, rc.homepageURL)
	if err := s.persistJob(ctx, rc, func(j *models.ResolutionJob) { j.ToSResult = discovery }); err != nil {
		return err
	}
	s.persistPublisher(ctx, rc, func(p *models.Publisher) { p.ToSURL = discovery.TosURL })
	s.emit(ctx, rc, models.StepToSDiscovery, models.StatusCompleted, discovery)

	// 3. ToS evaluation, merged onto the discovery result.
	s.emit(ctx, rc, models.StepToSEvaluation, models.StatusStarted, nil)
	evaluation := steps.EvaluateToS(ctx, s.fetcher, s.evaluator, rc.publisher, discovery.TosURL)
	merged := steps.MergeToSResults(discovery, evaluation)
	if err := s.persistJob(ctx, rc, func(j *models.ResolutionJob) { j.ToSResult = merged }); err != nil {
		return err
	}
	s.persistPublisher(ctx, rc, func(p *models.Publisher) { p.ToSPermissions = merged.Permissions })
	s.emit(ctx, rc, models.StepToSEvaluation, models.StatusCompleted, evaluation)

	// 4. robots.txt.
	s.emit(ctx, rc, models.StepRobots, models.StatusStarted, nil)
	robotsResult := steps.FetchRobots(ctx, s.fetcher, rc.publisher, rc.job.CanonicalURL, s.robotsUserAgent)
	if err := s.persistJob(ctx, rc, func(j *models.ResolutionJob) { j.RobotsResult = robotsResult }); err != nil {
		return err
	}
	s.persistPublisher(ctx, rc, func(p *models.Publisher) {
		found := robotsResult.RobotsFound
		p.RobotsFound = &found
	})
	s.emit(ctx, rc, models.StepRobots, models.StatusCompleted, robotsResult)

	// 5. AI-bot blocking matrix over the raw robots text.
	s.emit(ctx, rc, models.StepAIBotBlocking, models.StatusStarted, nil)
	aiBotResult := steps.EvaluateAIBots(robotsResult.RawText)
	if err := s.persistJob(ctx, rc, func(j *models.ResolutionJob) { j.AIBotResult = aiBotResult }); err != nil {
		return err
	}
	s.persistPublisher(ctx, rc, func(p *models.Publisher) { p.AIBotBlocks = aiBotResult.Bots })
	s.emit(ctx, rc, models.StepAIBotBlocking, models.StatusCompleted, aiBotResult)

	// 6. Sitemap discovery.
	s.emit(ctx, rc, models.StepSitemap, models.StatusStarted, nil)
	sitemapResult := steps.DiscoverSitemaps(ctx, s.fetcher, rc.publisher, rc.homepageURL, robotsResult.Sitemaps)
	if err := s.persistJob(ctx, rc, func(j *models.ResolutionJob) { j.SitemapResult = sitemapResult }); err != nil {
		return err
	}
	s.persistPublisher(ctx, rc, func(p *models.Publisher) { p.SitemapURLs = sitemapResult.SitemapURLs })
	s.emit(ctx, rc, models.StepSitemap, models.StatusCompleted, sitemapResult)

	// 7. RSS discovery.
	s.emit(ctx, rc, models.StepRSS, models.StatusStarted, nil)
	rssResult := steps.DiscoverFeeds(homepage.Body, rc.homepageURL)
	if err := s.persistJob(ctx, rc, func(j *models.ResolutionJob) { j.RSSResult = rssResult }); err != nil {
		return err
	}
	s.persistPublisher(ctx, rc, func(p *models.Publisher) {
		urls := make([]string, 0, len(rssResult.Feeds))
		for _, feed := range rssResult.Feeds {
			urls = append(urls, feed.URL)
		}
		p.RSSFeedURLs = urls
	})
	s.emit(ctx, rc, models.StepRSS, models.StatusCompleted, rssResult)

	// 8. RSL detection.
	s.emit(ctx, rc, models.StepRSL, models.StatusStarted, nil)
	rslResult := steps.DetectRSL(robotsResult.Licenses, homepage.Body, homepage.Headers, rc.homepageURL)
	if err := s.persistJob(ctx, rc, func(j *models.ResolutionJob) { j.RSLResult = rslResult }); err != nil {
		return err
	}
	s.persistPublisher(ctx, rc, func(p *models.Publisher) {
		detected := rslResult.RSLDetected
		p.RSLDetected = &detected
	})
	s.emit(ctx, rc, models.StepRSL, models.StatusCompleted, rslResult)

	// 9. Organization identity. Completes the publisher_details step
	// announced at the start of the run.
	orgResult := steps.DiscoverOrganization(homepage.Body, rc.homepageURL)
	if err := s.persistJob(ctx, rc, func(j *models.ResolutionJob) { j.MetadataResult = orgResult }); err != nil {
		return err
	}
	now := time.Now().UTC()
	s.persistPublisher(ctx, rc, func(p *models.Publisher) {
		if orgResult.Found {
			p.Organization = orgResult.Organization
			// Adopt the discovered name only while the placeholder
			// domain name is still in place.
			if p.Name == p.Domain && orgResult.Organization.Name != "" {
				p.Name = orgResult.Organization.Name
			}
		}
		p.LastCheckedAt = &now
	})
	s.emit(ctx, rc, models.StepPublisher, models.StatusCompleted, orgResult)

	return nil
}

func (s *Supervisor) runArticleSteps(ctx context.Context, rc *runContext) error {
	articleURL := rc.job.CanonicalURL

	if s.freshness.ShouldSkipArticleSteps(ctx, articleURL) {
		for _, step := range models.ArticleSteps {
			s.emit(ctx, rc, step, models.StatusSkipped, map[string]any{"reason": "fresh"})
		}
		return nil
	}

	var articleHTML string
	if sameResource(articleURL, rc.homepageURL) {
		articleHTML = s.homepageHTML(ctx, rc).Body
	} else if result, err := s.fetcher.Fetch(ctx, articleURL, rc.publisher); err != nil {
		s.logger.Warn().Err(err).Str("url", articleURL).Msg("Article fetch failed")
	} else {
		articleHTML = result.Body
	}

	// 10. Article extraction.
	s.emit(ctx, rc, models.StepArticle, models.StatusStarted, nil)
	extraction := steps.ExtractArticle(articleHTML)
	s.emit(ctx, rc, models.StepArticle, models.StatusCompleted, extraction)

	// 11. Paywall classification.
	s.emit(ctx, rc, models.StepPaywall, models.StatusStarted, nil)
	paywall := steps.ClassifyPaywall(articleHTML, extraction)
	s.emit(ctx, rc, models.StepPaywall, models.StatusCompleted, paywall)

	// 12. Metadata profile.
	s.emit(ctx, rc, models.StepMetadataProfile, models.StatusStarted, nil)
	profile := steps.BuildProfile(ctx, s.profiler, extraction)
	s.emit(ctx, rc, models.StepMetadataProfile, models.StatusCompleted, profile)

	articleResult := &models.ArticleResult{
		ArticleExtraction: *extraction,
		ArticleURL:        articleURL,
		Paywall:           paywall,
		Profile:           profile,
	}
	if err := s.persistJob(ctx, rc, func(j *models.ResolutionJob) { j.ArticleResult = articleResult }); err != nil {
		return err
	}

	row := models.NewArticleMetadata(common.NewArticleID(), rc.job.ID, rc.job.Domain, articleURL, extraction, paywall, profile)
	if err := s.store.Articles().Create(ctx, row); err != nil {
		return fmt.Errorf("persist article metadata: %w", err)
	}

	hasPaywall := paywall.PaywallStatus == models.PaywallStatusPaywalled || paywall.PaywallStatus == models.PaywallStatusMetered
	s.persistPublisher(ctx, rc, func(p *models.Publisher) { p.HasPaywall = &hasPaywall })

	return nil
}

// persistJob writes one result field onto the job row. A storage
// failure here is fatal for the job.
func (s *Supervisor) persistJob(ctx context.Context, rc *runContext, apply func(*models.ResolutionJob)) error {
	if err := s.store.Jobs().Mutate(ctx, rc.job.ID, func(j *models.ResolutionJob) {
		apply(j)
		j.UpdatedAt = time.Now().UTC()
	}); err != nil {
		return fmt.Errorf("persist job result: %w", err)
	}
	apply(rc.job)
	return nil
}

// persistPublisher propagates changed flat fields to the publisher row.
// Publisher propagation is best-effort: the job result is the source of
// truth, so a failed write only logs.
func (s *Supervisor) persistPublisher(ctx context.Context, rc *runContext, apply func(*models.Publisher)) {
	if err := s.store.Publishers().Mutate(ctx, rc.publisher.Domain, func(p *models.Publisher) {
		apply(p)
		p.UpdatedAt = time.Now().UTC()
	}); err != nil {
		s.logger.Warn().Err(err).Str("domain", rc.publisher.Domain).Msg("Publisher update failed")
		return
	}
	apply(rc.publisher)
}

func (s *Supervisor) appendWAFReports(ctx context.Context, domain string, findings []models.WAFFinding) {
	for _, finding := range findings {
		report := &models.WAFReport{
			ID:           common.NewReportID(),
			Domain:       domain,
			Detected:     finding.Detected,
			Firewall:     finding.Firewall,
			Manufacturer: finding.Manufacturer,
			URL:          finding.URL,
			TriggerURL:   finding.TriggerURL,
			CreatedAt:    time.Now().UTC(),
		}
		if err := s.store.WAFReports().Append(ctx, report); err != nil {
			s.logger.Warn().Err(err).Str("domain", domain).Msg("WAF report append failed")
		}
	}
}

// sameResource compares two URLs ignoring case and a trailing slash.
func sameResource(a, b string) bool {
	return strings.TrimRight(strings.ToLower(a), "/") == strings.TrimRight(strings.ToLower(b), "/")
}
