package assistant

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cogitto/cogitto-api/config"
	"github.com/cogitto/cogitto-api/data"
	"github.com/cogitto/cogitto-api/engine"
	"github.com/cogitto/cogitto-api/entities"
	"github.com/cogitto/cogitto-api/interfaces"
	"github.com/cogitto/cogitto-api/logging"
	"github.com/cogitto/cogitto-api/refdata"
)

func init() {
	logging.InitLogger(logging.Options{Env: config.EnvTest})
}

// stubGenerator returns a canned reply or error and records prompts
type stubGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	block   bool // wait for ctx to be done
	prompts []interfaces.Prompt
}

func (g *stubGenerator) Generate(ctx context.Context, prompt interfaces.Prompt) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	if g.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.reply, g.err
}

func (g *stubGenerator) Model() string {
	return "stub-model"
}

func newCatalogue(t *testing.T) *data.DataContainer {
	t.Helper()
	ds, err := refdata.NewLoader("").Load(context.Background())
	if err != nil {
		t.Fatalf("Failed to load embedded dataset: %v", err)
	}
	dc := data.NewDataContainer()
	dc.UpdateData(ds)
	return dc
}

func TestAnswerGeneratedMajorInteraction(t *testing.T) {
	gen := &stubGenerator{reply: "Avoid taking these together."}
	o := NewOrchestrator(newCatalogue(t), Options{Generator: gen})

	query := "Can I take ibuprofen with warfarin?"
	result := o.Answer(context.Background(), query, &UserContext{CurrentMedications: []string{"metformin"}})

	if !slices.Equal(result.MentionedMedications, []string{"ibuprofen", "warfarin"}) {
		t.Errorf("Unexpected mentions %v", result.MentionedMedications)
	}
	if !slices.Equal(result.InteractionWarnings, []string{"MAJOR: ibuprofen + warfarin"}) {
		t.Errorf("Unexpected warnings %v", result.InteractionWarnings)
	}
	if len(result.Interactions) != 1 || result.Interactions[0].Severity != entities.SeverityMajor {
		t.Errorf("Unexpected details %+v", result.Interactions)
	}
	if !strings.HasPrefix(result.Response, "Avoid taking these together.") {
		t.Errorf("Expected generated text first, got %q", result.Response)
	}
	if !strings.Contains(result.Response, "**MAJOR**: ibuprofen + warfarin") {
		t.Error("Expected interaction alert section")
	}
	if !strings.Contains(result.Response, "**Warfarin Safety Information**") {
		t.Error("Expected warfarin safety notes")
	}
	if result.RiskLevel != entities.RiskHigh || !result.RequiresConsultation {
		t.Errorf("Expected high risk with consultation, got %s/%v", result.RiskLevel, result.RequiresConsultation)
	}
	if result.Disclaimer != engine.DisclaimerHigh {
		t.Errorf("Unexpected disclaimer %q", result.Disclaimer)
	}
	if result.Model != "stub-model" || result.ConfidenceScore != GeneratedConfidence || result.FallbackUsed || result.Error != "" {
		t.Errorf("Unexpected generation metadata %+v", result)
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("Expected one generation call, got %d", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	if prompt.User != query {
		t.Errorf("Expected raw query as user message, got %q", prompt.User)
	}
	for _, want := range []string{"Increased bleeding risk", "\"current_medications\": [\n    \"metformin\"", "\"brand_names\""} {
		if !strings.Contains(prompt.System, want) {
			t.Errorf("System prompt missing %q", want)
		}
	}
}

func TestAnswerGeneratedLowRisk(t *testing.T) {
	gen := &stubGenerator{reply: "Acetaminophen relieves pain and reduces fever."}
	o := NewOrchestrator(newCatalogue(t), Options{Generator: gen})

	result := o.Answer(context.Background(), "what is acetaminophen used for", nil)

	if result.RiskLevel != entities.RiskLow {
		t.Errorf("Expected low risk, got %s", result.RiskLevel)
	}
	if result.RequiresConsultation {
		t.Error("Expected no consultation for a plain informational answer")
	}
	if result.Disclaimer != engine.DisclaimerLow {
		t.Errorf("Unexpected disclaimer %q", result.Disclaimer)
	}
	if len(result.InteractionWarnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.InteractionWarnings)
	}
}

func TestAnswerGeneratedTwoMedicationsNoInteraction(t *testing.T) {
	gen := &stubGenerator{reply: "They are often taken together."}
	o := NewOrchestrator(newCatalogue(t), Options{Generator: gen})

	result := o.Answer(context.Background(), "omeprazole and atorvastatin", nil)

	if result.RiskLevel != entities.RiskMedium {
		t.Errorf("Expected medium risk, got %s", result.RiskLevel)
	}
	if len(result.InteractionWarnings) != 0 || len(result.Interactions) != 0 {
		t.Errorf("Expected empty report, got %+v", result)
	}
	if result.Disclaimer != engine.DisclaimerMedium {
		t.Errorf("Unexpected disclaimer %q", result.Disclaimer)
	}
}

func TestAnswerFallbackOnGeneratorError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("boom")}
	o := NewOrchestrator(newCatalogue(t), Options{Generator: gen})

	result := o.Answer(context.Background(), "Can I take ibuprofen with warfarin?", nil)

	if !result.FallbackUsed {
		t.Fatal("Expected fallback to be used")
	}
	if result.Model != FallbackModel || result.ConfidenceScore != FallbackConfidence {
		t.Errorf("Unexpected fallback metadata %s/%v", result.Model, result.ConfidenceScore)
	}
	if !strings.Contains(result.Error, "boom") {
		t.Errorf("Expected error to be reported, got %q", result.Error)
	}
	if !strings.Contains(result.Response, "MAJOR INTERACTION FOUND") || !strings.HasSuffix(result.Response, fallbackNote) {
		t.Errorf("Unexpected fallback response %q", result.Response)
	}
	if result.RiskLevel != entities.RiskHigh || !result.RequiresConsultation {
		t.Errorf("Expected high risk, got %s/%v", result.RiskLevel, result.RequiresConsultation)
	}
	if !slices.Equal(result.InteractionWarnings, []string{"MAJOR: ibuprofen + warfarin"}) {
		t.Errorf("Expected warnings preserved in fallback, got %v", result.InteractionWarnings)
	}
}

func TestAnswerWithoutGenerator(t *testing.T) {
	o := NewOrchestrator(newCatalogue(t), Options{})

	if o.GenerationEnabled() {
		t.Error("Expected generation to be disabled")
	}

	result := o.Answer(context.Background(), "what is acetaminophen used for", nil)

	if !result.FallbackUsed || result.Error != ErrGenerationDisabled.Error() {
		t.Errorf("Expected disabled fallback, got %+v", result)
	}
	if !strings.Contains(result.Response, "**Acetaminophen Information:**") {
		t.Errorf("Expected medication profile, got %q", result.Response)
	}
	// The profile lists "Hepatotoxicity with overdose" but classification ignores the canned prose
	if result.RiskLevel != entities.RiskLow || result.RequiresConsultation {
		t.Errorf("Expected low risk, got %s/%v", result.RiskLevel, result.RequiresConsultation)
	}
}

func TestAnswerFallbackOnTimeout(t *testing.T) {
	gen := &stubGenerator{block: true}
	o := NewOrchestrator(newCatalogue(t), Options{Generator: gen, Timeout: 20 * time.Millisecond})

	start := time.Now()
	result := o.Answer(context.Background(), "tell me about lisinopril", nil)

	if time.Since(start) > 2*time.Second {
		t.Error("Generation deadline was not applied")
	}
	if !result.FallbackUsed || !strings.Contains(result.Error, context.DeadlineExceeded.Error()) {
		t.Errorf("Expected timeout fallback, got %+v", result)
	}
	if result.Response == "" {
		t.Error("Expected non-empty fallback response")
	}
}

func TestAnswerEmergencyFallback(t *testing.T) {
	o := NewOrchestrator(newCatalogue(t), Options{})

	result := o.Answer(context.Background(), "possible poisoning emergency", nil)

	if result.RiskLevel != entities.RiskCritical || !result.RequiresConsultation {
		t.Errorf("Expected critical risk, got %s/%v", result.RiskLevel, result.RequiresConsultation)
	}
	if !strings.Contains(result.Response, "1-800-222-1222") {
		t.Errorf("Expected poison control number, got %q", result.Response)
	}
	if result.Disclaimer != engine.DisclaimerCritical {
		t.Errorf("Unexpected disclaimer %q", result.Disclaimer)
	}
}

func TestCustomHighRiskPolicy(t *testing.T) {
	policy := engine.DefaultRiskPolicy()
	policy.HighRiskMedications = []string{"metformin"}
	o := NewOrchestrator(newCatalogue(t), Options{
		Generator:  &stubGenerator{reply: "Metformin lowers blood sugar."},
		RiskPolicy: policy,
	})

	if got := o.Answer(context.Background(), "about metformin", nil).RiskLevel; got != entities.RiskHigh {
		t.Errorf("Expected configured high-risk medication to raise risk, got %s", got)
	}
}

func TestConcurrentAnswers(t *testing.T) {
	o := NewOrchestrator(newCatalogue(t), Options{Generator: &stubGenerator{reply: "ok"}})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := o.Answer(context.Background(), "warfarin and tylenol", nil)
			if !slices.Equal(result.InteractionWarnings, []string{"MODERATE: acetaminophen + warfarin"}) {
				t.Errorf("Unexpected warnings %v", result.InteractionWarnings)
			}
		}()
	}
	wg.Wait()
}
