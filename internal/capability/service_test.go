package capability

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/agentkit/internal/transcribe"
)

func newTestService(reply string) (*Service, *fakeGenerator, *fakeTranscriber) {
	gen := &fakeGenerator{reply: reply}
	stt := &fakeTranscriber{}
	return NewService(gen, stt, Models{Default: "main", Fast: "fast"}), gen, stt
}

func TestEmptyInputMakesNoCall(t *testing.T) {
	svc, gen, stt := newTestService("unused")
	ctx := context.Background()

	calls := map[string]func() (Result, error){
		"grammar":    func() (Result, error) { return svc.Grammar(ctx, "") },
		"sentiment":  func() (Result, error) { return svc.Sentiment(ctx, "   ") },
		"spam":       func() (Result, error) { return svc.Spam(ctx, "") },
		"translate":  func() (Result, error) { return svc.Translate(ctx, "\n", "es") },
		"summarize":  func() (Result, error) { return svc.Summarize(ctx, "") },
		"classify":   func() (Result, error) { return svc.Classify(ctx, "") },
		"invoice":    func() (Result, error) { return svc.InvoiceQA(ctx, "", "total?") },
		"query":      func() (Result, error) { return svc.InvoiceQA(ctx, "Total: $5", " ") },
		"transcribe": func() (Result, error) { return svc.Transcribe(ctx, nil, "audio/wav") },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			res, err := call()
			require.NoError(t, err)
			assert.Equal(t, KindError, res.Kind)
			assert.NotEmpty(t, res.ErrorMessage())
		})
	}
	assert.Empty(t, gen.calls)
	assert.Zero(t, stt.calls)
}

func TestGrammar(t *testing.T) {
	svc, gen, _ := newTestService("  She goes to school.  ")
	res, err := svc.Grammar(context.Background(), "She go to school.")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"original": "She go to school.", "corrected": "She goes to school."}, res.Fields)
	require.Len(t, gen.calls, 1)
	assert.Equal(t, "Correct grammar: 'She go to school.'", gen.calls[0].Prompt)
	assert.Equal(t, "main", gen.calls[0].Model)
}

func TestSpamClassification(t *testing.T) {
	tests := []struct {
		reply string
		want  string
	}{
		{"Spam", "Spam"},
		{"This looks like SPAM to me.", "Spam"},
		{"Not Spam", "Spam"},
		{"Legitimate email.", "Not Spam"},
		{"ham", "Not Spam"},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			svc, _, _ := newTestService(tt.reply)
			res, err := svc.Spam(context.Background(), "WIN A FREE CRUISE")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Fields["classification"])
		})
	}
}

func TestSpamTruncatesEmailContent(t *testing.T) {
	svc, _, _ := newTestService("Not Spam")
	email := strings.Repeat("é", 600)
	res, err := svc.Spam(context.Background(), email)
	require.NoError(t, err)
	content, _ := res.Field("email_content")
	assert.Equal(t, 500, len([]rune(content)))
}

func TestTranslateDefaultLanguage(t *testing.T) {
	svc, gen, _ := newTestService("Bonjour")
	res, err := svc.Translate(context.Background(), "Hello", "")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"original": "Hello", "translated": "Bonjour", "language": "fr"}, res.Fields)
	assert.Equal(t, "Translate this to fr: 'Hello'", gen.calls[0].Prompt)
}

func TestSummarizeUsesFastModel(t *testing.T) {
	svc, gen, _ := newTestService(" Key insight. ")
	res, err := svc.Summarize(context.Background(), "A long report.")
	require.NoError(t, err)
	assert.Equal(t, KindText, res.Kind)
	assert.Equal(t, "Key insight.", res.Text)
	assert.Equal(t, "fast", gen.calls[0].Model)
	assert.Contains(t, gen.calls[0].Prompt, "avoiding sensitive details like SSNs")
}

func TestSentimentFallback(t *testing.T) {
	svc, _, _ := newTestService("I think it is happy.")
	res, err := svc.Sentiment(context.Background(), "What a day!")
	require.NoError(t, err)
	assert.Equal(t, KindRaw, res.Kind)
	assert.Equal(t, map[string]any{"raw_response": "I think it is happy."}, res.Fields)
}

func TestClassifyStructured(t *testing.T) {
	svc, _, _ := newTestService(" {\"category\":\"Finance\",\"confidence\":0.8}\n")
	res, err := svc.Classify(context.Background(), "Stocks fell 3% today.")
	require.NoError(t, err)
	assert.Equal(t, KindStructured, res.Kind)
	assert.True(t, res.Conforms)
	assert.Equal(t, "Finance", res.Fields["category"])
}

func TestClassifyFencedReplyFallsBack(t *testing.T) {
	reply := "```json\n{\"category\":\"Finance\"}\n```"
	svc, _, _ := newTestService(reply)
	res, err := svc.Classify(context.Background(), "Stocks fell 3% today.")
	require.NoError(t, err)
	assert.Equal(t, KindRaw, res.Kind)
	assert.Equal(t, map[string]any{"classification": reply}, res.Fields)
}

func TestInvoiceQA(t *testing.T) {
	svc, gen, _ := newTestService(`{"total":"$120.00"}`)
	res, err := svc.InvoiceQA(context.Background(), "Total due: $120.00", "What is the total?")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"total": "$120.00"}, res.Fields)
	assert.True(t, strings.HasPrefix(gen.calls[0].Prompt, "Based on this invoice: 'Total due: $120.00', answer: What is the total?"))

	svc, _, _ = newTestService("The total is $120.")
	res, err = svc.InvoiceQA(context.Background(), "Total due: $120.00", "What is the total?")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"answer": "The total is $120."}, res.Fields)
}

func TestRemoteFailureIsGoError(t *testing.T) {
	svc, gen, _ := newTestService("")
	gen.err = errors.New("boom")
	_, err := svc.Grammar(context.Background(), "text")
	assert.ErrorContains(t, err, "boom")
}

func TestTranscribe(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		err     error
		kind    Kind
		message string
	}{
		{"ok", "hello there", nil, KindStructured, ""},
		{"unintelligible", "", transcribe.ErrUnintelligible, KindError, MsgUnintelligible},
		{"unavailable", "", transcribe.ErrUnavailable, KindError, MsgUnavailable},
		{"unknown failure", "", errors.New("eof"), KindError, MsgUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, stt := newTestService("")
			stt.text, stt.err = tt.text, tt.err
			res, err := svc.Transcribe(context.Background(), []byte("RIFF"), "audio/wav")
			require.NoError(t, err)
			assert.Equal(t, tt.kind, res.Kind)
			if tt.kind == KindStructured {
				assert.Equal(t, map[string]any{"transcription": tt.text}, res.Fields)
			} else {
				assert.Equal(t, tt.message, res.ErrorMessage())
			}
		})
	}
}

func TestTranscribeWithoutBackend(t *testing.T) {
	svc := NewService(&fakeGenerator{}, nil, Models{})
	res, err := svc.Transcribe(context.Background(), []byte("RIFF"), "audio/wav")
	require.NoError(t, err)
	assert.Equal(t, MsgUnavailable, res.ErrorMessage())
}
