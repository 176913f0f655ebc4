// Package assistant answers free-text medication questions. It sequences
// mention extraction, the interaction report, text generation with a local
// fallback, safety enhancements, risk classification and the disclaimer.
package assistant

import (
	"context"
	"errors"
	"time"

	"github.com/cogitto/cogitto-api/engine"
	"github.com/cogitto/cogitto-api/entities"
	"github.com/cogitto/cogitto-api/interfaces"
	"github.com/cogitto/cogitto-api/logging"
	"github.com/cogitto/cogitto-api/metrics"
)

const (
	FallbackModel = "cogitto-fallback"

	GeneratedConfidence = 0.92
	FallbackConfidence  = 0.75

	DefaultTimeout = 30 * time.Second
)

// ErrGenerationDisabled is reported when no generator is configured.
var ErrGenerationDisabled = errors.New("text generation is not configured")

// Catalogue is the slice of the data store the assistant reads.
type Catalogue interface {
	GetMedications() []entities.Medication
	FindByName(name string) (entities.Medication, bool)
	LookupInteraction(a, b string) (entities.Interaction, bool)
}

// Result is what a caller gets back for one query.
type Result struct {
	Response             string                       `json:"response"`
	RiskLevel            entities.RiskLevel           `json:"risk_level"`
	InteractionWarnings  []string                     `json:"interaction_warnings"`
	Interactions         []entities.InteractionDetail `json:"interactions"`
	RequiresConsultation bool                         `json:"requires_consultation"`
	Disclaimer           string                       `json:"disclaimer"`
	MentionedMedications []string                     `json:"mentioned_medications"`
	Model                string                       `json:"ai_model"`
	ConfidenceScore      float64                      `json:"confidence_score"`
	FallbackUsed         bool                         `json:"fallback_used"`
	Error                string                       `json:"error,omitempty"`
}

// Options configures an Orchestrator.
type Options struct {
	Generator  interfaces.Generator // nil answers every query from the fallback
	Timeout    time.Duration        // per generation call, DefaultTimeout when zero
	MatchMode  engine.MatchMode
	RiskPolicy engine.RiskPolicy
}

// Orchestrator is safe for concurrent use.
type Orchestrator struct {
	catalogue  Catalogue
	generator  interfaces.Generator
	timeout    time.Duration
	extractor  *engine.MentionExtractor
	classifier *engine.RiskClassifier
}

// NewOrchestrator wires the engine over catalogue.
func NewOrchestrator(catalogue Catalogue, opts Options) *Orchestrator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Orchestrator{
		catalogue:  catalogue,
		generator:  opts.Generator,
		timeout:    timeout,
		extractor:  engine.NewMentionExtractor(opts.MatchMode),
		classifier: engine.NewRiskClassifier(opts.RiskPolicy),
	}
}

// GenerationEnabled reports whether a generator is configured.
func (o *Orchestrator) GenerationEnabled() bool {
	return o.generator != nil
}

// ExtractMentions exposes the extractor over the current catalogue.
func (o *Orchestrator) ExtractMentions(text string) []string {
	return o.extractor.Extract(text, o.catalogue.GetMedications())
}

// Analyze builds the interaction report for a list of medication names.
func (o *Orchestrator) Analyze(medications []string) entities.InteractionReport {
	return engine.BuildReport(medications, o.catalogue)
}

// Answer runs the full pipeline for query. It never fails: a generation
// error or timeout is logged, counted and replaced by the local fallback.
func (o *Orchestrator) Answer(ctx context.Context, query string, user *UserContext) Result {
	mentioned := o.ExtractMentions(query)
	report := o.Analyze(mentioned)
	records := o.records(mentioned)

	if o.generator == nil {
		metrics.RecordGeneration(metrics.GenerationDisabled, 0)
		return o.fallback(query, mentioned, records, report, ErrGenerationDisabled)
	}

	text, err := o.generate(ctx, BuildPrompt(query, records, report, user))
	if err != nil {
		logging.Warn("Text generation failed, using fallback",
			"error", err,
			"model", o.generator.Model(),
			"mentioned", mentioned)
		return o.fallback(query, mentioned, records, report, err)
	}

	response := text + InteractionAlerts(report) + SafetyNotes(records)
	assessment := o.classifier.Classify(query, response, mentioned)
	metrics.RecordRisk(assessment.Level, false)

	return Result{
		Response:             response,
		RiskLevel:            assessment.Level,
		InteractionWarnings:  report.Warnings,
		Interactions:         report.Details,
		RequiresConsultation: assessment.RequiresConsultation,
		Disclaimer:           engine.Disclaimer(assessment.Level),
		MentionedMedications: mentioned,
		Model:                o.generator.Model(),
		ConfidenceScore:      GeneratedConfidence,
	}
}

func (o *Orchestrator) generate(ctx context.Context, prompt interfaces.Prompt) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	text, err := o.generator.Generate(genCtx, prompt)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		metrics.RecordGeneration(metrics.GenerationSuccess, elapsed)
	case errors.Is(err, context.DeadlineExceeded):
		metrics.RecordGeneration(metrics.GenerationTimeout, elapsed)
	default:
		metrics.RecordGeneration(metrics.GenerationError, elapsed)
	}
	return text, err
}

// fallback classifies on the locally built alert text, never on the canned prose.
func (o *Orchestrator) fallback(query string, mentioned []string, records []entities.Medication,
	report entities.InteractionReport, cause error) Result {
	alerts := InteractionAlerts(report)
	assessment := o.classifier.Classify(query, alerts, mentioned)
	metrics.RecordRisk(assessment.Level, true)

	return Result{
		Response:             FallbackResponse(query, mentioned, o.catalogue) + alerts + SafetyNotes(records) + fallbackNote,
		RiskLevel:            assessment.Level,
		InteractionWarnings:  report.Warnings,
		Interactions:         report.Details,
		RequiresConsultation: assessment.RequiresConsultation,
		Disclaimer:           engine.Disclaimer(assessment.Level),
		MentionedMedications: mentioned,
		Model:                FallbackModel,
		ConfidenceScore:      FallbackConfidence,
		FallbackUsed:         true,
		Error:                cause.Error(),
	}
}

// records resolves canonical names to catalogue entries, skipping misses
func (o *Orchestrator) records(names []string) []entities.Medication {
	out := make([]entities.Medication, 0, len(names))
	for _, name := range names {
		if med, ok := o.catalogue.FindByName(name); ok {
			out = append(out, med)
		}
	}
	return out
}
