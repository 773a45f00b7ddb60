// Package translate adapts the external chat-completion providers to the
// pipeline's field-oriented translation contract. Three pass adapters share
// one implementation and differ only in model tier, sampling, and prompt
// framing: a fast draft pass, an optional improvement pass, and a
// near-deterministic verification pass.
package translate

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/biocycle/translation-pipeline/internal/model"
)

// Models and sampling per pass. The draft pass favors throughput, the
// verification pass consistency.
const (
	draftModel   = "gpt-4o-mini"
	improveModel = "llama-3.3-70b-versatile"
	verifyModel  = "gpt-4o"

	draftTemperature   = 0.3
	improveTemperature = 0.2
	verifyTemperature  = 0.1

	draftMaxTokens   = 16000
	improveMaxTokens = 12000
	verifyMaxTokens  = 8000
)

// Request is one translation unit: the source fields of a single entity and
// the target locale. Current carries the existing translation for the
// revision passes and is ignored by the draft pass.
type Request struct {
	Locale  string
	Source  []Field
	Current map[string]string
}

// FieldTranslator is the contract the orchestrator consumes. Translate
// returns the per-field translated text; fields the provider did not echo
// back are absent from the map, and the caller decides the fallback.
type FieldTranslator interface {
	Translate(ctx context.Context, req Request) (map[string]string, error)
	Name() string
}

type passSpec struct {
	pass        int
	provider    string
	model       string
	temperature float64
	maxTokens   int64
}

// Translator implements FieldTranslator over a CompletionClient. A nil
// client is legal only for the improvement pass, which is a quality
// enhancement rather than a correctness requirement: it degrades to an
// empty result with a warning.
type Translator struct {
	client CompletionClient
	spec   passSpec
	logger log.FieldLogger
}

// NewDraftTranslator builds the Pass 1 adapter.
func NewDraftTranslator(client CompletionClient, logger log.FieldLogger) *Translator {
	return &Translator{
		client: client,
		logger: logger,
		spec: passSpec{
			pass:        1,
			provider:    "openai",
			model:       draftModel,
			temperature: draftTemperature,
			maxTokens:   draftMaxTokens,
		},
	}
}

// NewImproveTranslator builds the Pass 2 adapter. The client may be nil
// when the secondary provider credential is absent.
func NewImproveTranslator(client CompletionClient, logger log.FieldLogger) *Translator {
	return &Translator{
		client: client,
		logger: logger,
		spec: passSpec{
			pass:        2,
			provider:    "groq",
			model:       improveModel,
			temperature: improveTemperature,
			maxTokens:   improveMaxTokens,
		},
	}
}

// NewVerifyTranslator builds the Pass 3 adapter.
func NewVerifyTranslator(client CompletionClient, logger log.FieldLogger) *Translator {
	return &Translator{
		client: client,
		logger: logger,
		spec: passSpec{
			pass:        3,
			provider:    "openai",
			model:       verifyModel,
			temperature: verifyTemperature,
			maxTokens:   verifyMaxTokens,
		},
	}
}

// Name identifies the provider and model, persisted as the translator tag
// on every record this adapter writes.
func (t *Translator) Name() string {
	return t.spec.provider + "/" + t.spec.model
}

// Translate performs one provider call and parses the tagged response. It
// has no internal retry; errors surface to the caller, which owns retry
// bookkeeping.
func (t *Translator) Translate(ctx context.Context, req Request) (map[string]string, error) {
	if t.client == nil {
		t.logger.WithField("locale", req.Locale).
			Warn("No credential configured for the improvement pass; returning content unchanged")
		return map[string]string{}, nil
	}

	names := make([]string, 0, len(req.Source))
	for _, f := range req.Source {
		names = append(names, f.Name)
	}

	raw, err := t.client.Complete(ctx, ChatRequest{
		Model:       t.spec.model,
		System:      t.systemPrompt(req.Locale),
		User:        t.userPayload(req),
		Temperature: t.spec.temperature,
		MaxTokens:   t.spec.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	return ParseFields(raw, names), nil
}

func (t *Translator) systemPrompt(locale string) string {
	language := model.LanguageName(locale)

	var framing string
	switch t.spec.pass {
	case 2:
		framing = fmt.Sprintf(
			"You are a senior reviewer for BioCycle Peptides, a storefront for research peptides. "+
				"The user message contains English source content followed by its current %s translation. "+
				"Revise the translation for natural, idiomatic %s.", language, language)
	case 3:
		framing = fmt.Sprintf(
			"You are performing the final verification pass for BioCycle Peptides, a storefront for research peptides. "+
				"The user message contains English source content followed by its current %s translation. "+
				"Verify the translation for accuracy and terminology and return the corrected text.", language)
	default:
		framing = fmt.Sprintf(
			"You are a professional translator for BioCycle Peptides, a storefront for research peptides. "+
				"Translate the content in the user message from English to %s.", language)
	}

	return framing + "\n\n" +
		"Rules:\n" +
		"1. Return every field wrapped in the same [FIELD:name] ... [/FIELD:name] markers it arrived in, and nothing else.\n" +
		"2. Preserve the following terms verbatim in every language: " + Glossary() + ".\n" +
		"3. Preserve HTML and Markdown markup, numerals, prices, and product identifiers unchanged.\n" +
		"4. Keep the tone professional but accessible."
}

func (t *Translator) userPayload(req Request) string {
	if t.spec.pass == 1 {
		return EncodeFields(req.Source)
	}

	current := make([]Field, 0, len(req.Source))
	for _, f := range req.Source {
		current = append(current, Field{Name: f.Name, Value: req.Current[f.Name]})
	}
	return "ENGLISH SOURCE:\n\n" + EncodeFields(req.Source) +
		"\n\nCURRENT TRANSLATION:\n\n" + EncodeFields(current)
}
