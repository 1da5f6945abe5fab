// Command askdata answers one question about a dataset profile from the
// command line and prints the response payload as JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"askdata/internal/dataset"
	"askdata/internal/gateway/app"
	"askdata/internal/gateway/config"
	"askdata/internal/gateway/logger"
	"askdata/internal/pipeline"
	"askdata/internal/util/jsonutil"
)

func main() {
	profilePath := flag.String("profile", "", "path to an analysisData JSON file")
	query := flag.String("query", "", "question to ask about the data")
	provider := flag.String("provider", "gemini", "model provider: gemini or fake")
	model := flag.String("model", "", "Gemini model id")
	timeout := flag.Duration("timeout", 2*time.Minute, "request timeout")
	verbose := flag.Bool("v", false, "log pipeline stages to stderr")
	flag.Parse()

	if strings.TrimSpace(*query) == "" {
		fail("--query is required")
	}
	_ = godotenv.Load()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log := logger.New(level, "console", "local")

	var raw []byte
	if *profilePath != "" {
		b, err := os.ReadFile(*profilePath)
		if err != nil {
			fail("read profile: %v", err)
		}
		raw = b
	}
	profile, notes := dataset.Decode(raw)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := app.NewLLMClient(ctx, config.LLMConfig{
		Provider: *provider,
		APIKey:   os.Getenv("GEMINI_API_KEY"),
		Model:    *model,
		RPS:      1,
		Burst:    1,
		Retries:  3,
	}, log)
	if err != nil {
		fail("%v", err)
	}
	defer client.Close()

	p := pipeline.New(client, pipeline.WithLogger(log))
	res, err := p.Run(ctx, pipeline.Request{
		Query:   *query,
		Profile: profile,
		Notes:   notes,
		Observer: func(ev pipeline.Event) {
			log.Debug().Str("stage", string(ev.Stage)).Str("intent", string(ev.Intent)).Msg("stage")
		},
	})
	if err != nil {
		fail("%v", err)
	}

	out, err := jsonutil.MarshalIndentNoEscape(res.Response)
	if err != nil {
		fail("encode response: %v", err)
	}
	fmt.Println(string(out))
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "askdata: "+format+"\n", args...)
	os.Exit(1)
}
