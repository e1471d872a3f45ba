package llm

import (
	"bytes"
	"context"
	"embed"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/intake/pkg/domain/interfaces"
	"github.com/secmon-lab/intake/pkg/domain/model"
	"github.com/secmon-lab/intake/pkg/domain/types"
)

// Error tags for categorization
var (
	ErrTagEmptyResponse   = goerr.NewTag("empty_response")
	ErrTagInvalidRow      = goerr.NewTag("invalid_row")
	ErrTagTemplateFailure = goerr.NewTag("template_failure")
)

//go:embed templates/*.md
var templateFS embed.FS

var prefillTemplate = template.Must(template.New("prefill.md").
	Funcs(template.FuncMap{"join": strings.Join}).
	ParseFS(templateFS, "templates/prefill.md"))

// minimum number of "|" separators for a line to be taken as the answer row
const minSeparators = 10

// TemplateColumn describes one column for the prompt
type TemplateColumn struct {
	Name   string
	Header string
}

// PrefillTemplateData contains data for the prefill prompt
type PrefillTemplateData struct {
	Text            string
	Today           string
	Timezone        string
	Country         string
	CodeHeader      string
	Columns         []TemplateColumn
	Reserved        []string
	Channels        []string
	EventTypes      []string
	Impacts         []string
	Classifications []string
	Statuses        []string
	Units           []string
}

// LLMService asks a language model for a draft record
type LLMService struct {
	llmClient gollem.LLMClient
	vocab     *model.Vocabulary
	loc       *time.Location
	now       func() time.Time
}

// NewLLMService creates a new LLMService instance
func NewLLMService(llmClient gollem.LLMClient, vocab *model.Vocabulary, loc *time.Location) *LLMService {
	if loc == nil {
		loc = time.UTC
	}
	return &LLMService{
		llmClient: llmClient,
		vocab:     vocab,
		loc:       loc,
		now:       time.Now,
	}
}

// Prefill returns the model's draft of the 21 fields. Values may sit in the wrong
// columns; the repair pass is responsible for fixing them.
func (s *LLMService) Prefill(ctx context.Context, text string) (model.Record, error) {
	if strings.TrimSpace(text) == "" {
		return model.Record{}, goerr.Wrap(model.ErrEmptyText, "nothing to prefill")
	}

	prompt, err := s.renderPrefillTemplate(text)
	if err != nil {
		return model.Record{}, goerr.Wrap(err, "failed to render prefill template",
			goerr.T(ErrTagTemplateFailure))
	}

	session, err := s.llmClient.NewSession(ctx)
	if err != nil {
		return model.Record{}, goerr.Wrap(err, "failed to create LLM session")
	}

	response, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return model.Record{}, goerr.Wrap(err, "failed to generate LLM response")
	}

	if len(response.Texts) == 0 || strings.TrimSpace(strings.Join(response.Texts, "")) == "" {
		return model.Record{}, goerr.New("empty response from LLM",
			goerr.T(ErrTagEmptyResponse))
	}

	line, ok := pickRow(strings.Join(response.Texts, "\n"))
	if !ok {
		return model.Record{}, goerr.New("LLM response has no pipe-delimited row",
			goerr.V("response", response.Texts[0]),
			goerr.T(ErrTagInvalidRow))
	}

	rec, advisories := model.ParseRow(line)
	for _, a := range advisories {
		ctxlog.From(ctx).Debug("normalized LLM row", "advisory", a.Message)
	}
	return rec, nil
}

// pickRow returns the first line that looks like a full row, ignoring code fences
func pickRow(response string) (string, bool) {
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") {
			continue
		}
		if strings.Count(line, "|") >= minSeparators {
			return line, true
		}
	}
	return "", false
}

func (s *LLMService) renderPrefillTemplate(text string) (string, error) {
	data := PrefillTemplateData{
		Text:       text,
		Today:      s.now().In(s.loc).Format("2006-01-02"),
		Timezone:   s.loc.String(),
		CodeHeader: types.ColumnCode.Header(),
	}

	for _, c := range types.Columns() {
		data.Columns = append(data.Columns, TemplateColumn{Name: c.String(), Header: c.Header()})
		if c.IsReserved() {
			data.Reserved = append(data.Reserved, c.Header())
		}
	}

	for _, c := range types.Classifications {
		data.Classifications = append(data.Classifications, c.String())
	}
	for _, st := range types.Statuses {
		data.Statuses = append(data.Statuses, st.String())
	}

	if s.vocab != nil {
		data.Country = s.vocab.Locations.Country
		data.Channels = model.Labels(s.vocab.Channels)
		data.EventTypes = model.Labels(s.vocab.EventTypes)
		data.Impacts = model.Labels(s.vocab.Impacts)
		data.Units = model.Labels(s.vocab.CoordinatingUnits)
	}

	var buf bytes.Buffer
	if err := prefillTemplate.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to execute prefill template")
	}
	return buf.String(), nil
}

var _ interfaces.Prefiller = (*LLMService)(nil)
