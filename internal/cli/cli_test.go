package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"interviewcoach/internal/common"
	"interviewcoach/internal/config"
	"interviewcoach/internal/errors"
	"interviewcoach/internal/types"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sixQuestions = `[
  {"type": "Aptitude", "question": "How many piano tuners work in Berlin?"},
  {"type": "CodeCompletion", "question": "Complete the function", "expected_output": "42"},
  {"type": "TrickyCoding", "question": "Reverse a linked list"},
  {"type": "TechCodeCompletion", "question": "Finish the HTTP handler"},
  {"type": "Technical", "question": "Explain REST"},
  {"type": "HR", "question": "Tell me about a conflict"}
]`

// fakeRouter stands in for the inference router. Operations are told apart
// by the max_tokens their default configuration sends.
type fakeRouter struct {
	mu       sync.Mutex
	generate string
	evaluate string
	status   int
	requests []map[string]any
}

func (f *fakeRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.requests = append(f.requests, body)
	status := f.status
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"unavailable"}`))
		return
	}

	content := "API test successful"
	switch body["max_tokens"] {
	case float64(2500):
		content = f.generate
	case float64(600):
		content = f.evaluate
	}
	reply, _ := json.Marshal(map[string]any{
		"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "test/model",
		"choices": []map[string]any{{
			"index": 0, "finish_reason": "stop",
			"message": map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(reply)
}

func (f *fakeRouter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// useRouter points configuration loading at the fake router and isolates
// the test from any local .env or config file
func useRouter(t *testing.T, router *fakeRouter) string {
	t.Helper()
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	t.Setenv("HF_TOKEN", "test-key")
	t.Setenv("INTERVIEWCOACH_AI_APIKEY", "")
	t.Setenv("INTERVIEWCOACH_AI_PROVIDER", "huggingface")
	t.Setenv("INTERVIEWCOACH_AI_BASEURL", srv.URL+"/v1")
	t.Setenv("INTERVIEWCOACH_VAULT_ENABLED", "false")
	return filepath.Join(t.TempDir(), "missing.env")
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(""))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionSkipsConfig(t *testing.T) {
	out, err := runRoot(t, "version", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "interviewcoach version "+Version)
	assert.Contains(t, out, "Git commit:")
}

func TestGenerateCommand(t *testing.T) {
	router := &fakeRouter{generate: sixQuestions}
	envFile := useRouter(t, router)

	out, err := runRoot(t, "generate", "Backend", "Engineer", "--format", "json", "--env-file", envFile)
	require.NoError(t, err)

	var set types.QuestionSet
	require.NoError(t, json.Unmarshal([]byte(out), &set), out)
	assert.Equal(t, "Backend Engineer", set.Role)
	assert.False(t, set.Fallback)
	require.Len(t, set.Questions, len(types.Categories))
	for i, q := range set.Questions {
		assert.Equal(t, types.Categories[i], q.Category)
	}
	assert.Equal(t, 1, router.count())
}

func TestGenerateCommandFallsBackWhenRouterFails(t *testing.T) {
	router := &fakeRouter{status: http.StatusUnauthorized}
	envFile := useRouter(t, router)

	out, err := runRoot(t, "generate", "SRE", "--format", "yaml", "--env-file", envFile)
	require.NoError(t, err)
	assert.Contains(t, out, "fallback: true")
	assert.Contains(t, out, "role: SRE")
}

func TestGenerateCommandRejectsUnknownFormat(t *testing.T) {
	envFile := useRouter(t, &fakeRouter{generate: sixQuestions})

	_, err := runRoot(t, "generate", "SRE", "--format", "pdf", "--env-file", envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestGenerateCommandWritesOutputFile(t *testing.T) {
	envFile := useRouter(t, &fakeRouter{generate: sixQuestions})
	path := filepath.Join(t.TempDir(), "out", "questions.md")

	out, err := runRoot(t, "generate", "SRE", "--format", "md", "-o", path, "--env-file", envFile)
	require.NoError(t, err)
	assert.Empty(t, out)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(written), "Reverse a linked list")
}

func TestMissingAPIKey(t *testing.T) {
	envFile := useRouter(t, &fakeRouter{})
	t.Setenv("HF_TOKEN", "")

	_, err := runRoot(t, "generate", "SRE", "--env-file", envFile)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig), err.Error())
	assert.Contains(t, err.Error(), "HF_TOKEN")
}

func TestEvaluateCommand(t *testing.T) {
	router := &fakeRouter{evaluate: `{"feedback":"Clear and accurate.","score":8}`}
	envFile := useRouter(t, router)

	answerFile := filepath.Join(t.TempDir(), "answer.txt")
	require.NoError(t, os.WriteFile(answerFile, []byte("Goroutines are lightweight threads."), 0600))

	out, err := runRoot(t, "evaluate", "--question", "What is a goroutine?", answerFile,
		"--category", "technical", "--format", "json", "--env-file", envFile)
	require.NoError(t, err)

	var eval types.Evaluation
	require.NoError(t, json.Unmarshal([]byte(out), &eval), out)
	assert.Equal(t, 8, eval.Score)
	assert.Equal(t, types.MaxScore, eval.MaxScore)
	assert.False(t, eval.Fallback)
}

func TestEvaluateCommandEmptyAnswerSkipsModel(t *testing.T) {
	router := &fakeRouter{}
	envFile := useRouter(t, router)

	out, err := runRoot(t, "evaluate", "-q", "What is a goroutine?", "--answer", "  ",
		"--format", "json", "--env-file", envFile)
	require.NoError(t, err)

	var eval types.Evaluation
	require.NoError(t, json.Unmarshal([]byte(out), &eval), out)
	assert.Equal(t, 0, eval.Score)
	assert.Zero(t, router.count())
}

func TestEvaluateCommandArgumentErrors(t *testing.T) {
	envFile := useRouter(t, &fakeRouter{})
	answerFile := filepath.Join(t.TempDir(), "answer.txt")
	require.NoError(t, os.WriteFile(answerFile, []byte("x"), 0600))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing question", []string{"evaluate", "--answer", "x"}, "question"},
		{"file and flag", []string{"evaluate", "-q", "Q", "--answer", "x", answerFile}, "not both"},
		{"unknown category", []string{"evaluate", "-q", "Q", "--answer", "x", "--category", "astrology"}, "unknown category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runRoot(t, append(tt.args, "--env-file", envFile)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPingCommand(t *testing.T) {
	router := &fakeRouter{}
	envFile := useRouter(t, router)

	out, err := runRoot(t, "ping", "--env-file", envFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Response: API test successful")
	assert.Contains(t, out, "Provider:")
	assert.Contains(t, out, "Model listed: yes")
	assert.EqualValues(t, 10, router.requests[0]["max_tokens"])
}

func TestPingCommandReportsFailureKind(t *testing.T) {
	envFile := useRouter(t, &fakeRouter{status: http.StatusUnauthorized})

	_, err := runRoot(t, "ping", "--env-file", envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth")
}

// scriptedSource replays canned input and interrupts once it runs out
type scriptedSource struct {
	answers []string
	choices []string
}

func (s *scriptedSource) Ask(label string) (string, error) {
	if len(s.answers) == 0 {
		return "", promptui.ErrInterrupt
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func (s *scriptedSource) Choose(label string, items []string) (string, error) {
	if len(s.choices) == 0 {
		return "", promptui.ErrInterrupt
	}
	c := s.choices[0]
	s.choices = s.choices[1:]
	return c, nil
}

// practiceCommand returns a command carrying loaded config and a logger, as
// the root pre-run would leave it
func practiceCommand(t *testing.T, envFile string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cfg, err := config.LoadConfig(config.LoadOptions{EnvFile: envFile})
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, errors.NewLoggerTo(io.Discard, slog.LevelDebug))

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	cmd.SetOut(&out)
	return cmd, &out
}

func TestPracticeFullInterview(t *testing.T) {
	router := &fakeRouter{generate: sixQuestions, evaluate: `{"feedback":"Solid.","score":7}`}
	cmd, out := practiceCommand(t, useRouter(t, router))

	src := &scriptedSource{
		choices: []string{actionAnswer, actionSkip, actionAnswer, actionSkip, actionSkip, actionSkip},
		answers: []string{"Around a hundred.", "Walk the list and flip pointers."},
	}
	err := runPractice(cmd, "Backend Engineer", src, common.CommandConfig{OutputFormat: "text"})
	require.NoError(t, err)

	report := out.String()
	assert.Contains(t, report, "=== INTERVIEW RESULTS: Backend Engineer ===")
	assert.Contains(t, report, "Total: 14/60")
	assert.Contains(t, report, "Answered: 2  Skipped: 4")
	assert.Contains(t, report, "Needs Improvement")
	assert.NotContains(t, report, "Interview ended after")
	// one generate call plus one evaluation per answered question
	assert.Equal(t, 3, router.count())
}

func TestPracticeAsksForRoleAndStopsOnInterrupt(t *testing.T) {
	router := &fakeRouter{generate: sixQuestions, evaluate: `{"feedback":"Great.","score":10}`}
	cmd, out := practiceCommand(t, useRouter(t, router))

	src := &scriptedSource{
		answers: []string{"Data Engineer", "Use partitioning."},
		choices: []string{actionAnswer},
	}
	err := runPractice(cmd, "", src, common.CommandConfig{OutputFormat: "text"})
	require.NoError(t, err)

	report := out.String()
	assert.Contains(t, report, "Interview ended after 1 of 6 questions.")
	assert.Contains(t, report, "=== INTERVIEW RESULTS: Data Engineer ===")
	assert.Contains(t, report, "Total: 10/10")
	assert.Contains(t, report, "Excellent")
}

func TestPracticeEndInterviewChoice(t *testing.T) {
	router := &fakeRouter{generate: sixQuestions}
	cmd, out := practiceCommand(t, useRouter(t, router))

	src := &scriptedSource{choices: []string{actionSkip, actionQuit}}
	err := runPractice(cmd, "QA", src, common.CommandConfig{OutputFormat: "markdown"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Interview ended after 1 of 6 questions.")
	assert.Equal(t, 1, router.count())
}

func TestPracticeRejectsOverlongRole(t *testing.T) {
	router := &fakeRouter{}
	cmd, _ := practiceCommand(t, useRouter(t, router))

	err := runPractice(cmd, strings.Repeat("x", 500), &scriptedSource{}, common.CommandConfig{OutputFormat: "text"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.Zero(t, router.count())
}
