package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"examprep/config"
	"examprep/db"
	"examprep/ingestion"
	"examprep/models"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	job      ingestion.Job
	manifest string
	merge    string
	publish  bool
	preview  int
	verbose  bool
}

// run executes the converter and returns the process exit code: 0 on
// success, 1 on a conversion failure, 2 on bad usage.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Command-line flags
	var opts options
	fs.StringVar(&opts.job.Input, "input", "", "Path to the plain-text transcript")
	fs.StringVar(&opts.job.Output, "output", "", "Path to output JSON file (optional, defaults to <input>.json)")
	fs.IntVar(&opts.job.ID, "id", 1, "Exam id to assign")
	fs.StringVar(&opts.job.Title, "title", "", "Exam title")
	fs.StringVar(&opts.manifest, "manifest", "", "YAML manifest listing several transcripts (replaces -input/-output/-id/-title)")
	fs.StringVar(&opts.merge, "merge", "", "Catalog file (exams.json) to merge the converted exam into")
	fs.BoolVar(&opts.publish, "publish", false, "Also upsert the exam into Postgres (uses DATABASE_URL)")
	fs.IntVar(&opts.preview, "preview", 3, "Number of converted questions to print, 0 for none")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose output")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if opts.manifest == "" && (opts.job.Input == "" || opts.job.Title == "") {
		fmt.Fprintf(stderr, "Error: input file and title required\n")
		fmt.Fprintf(stderr, "Usage: convert -input <transcript> -title <title> [-id <n>] [-output <json-file>] [-merge <exams.json>] [-publish]\n")
		fmt.Fprintf(stderr, "       convert -manifest <convert.yaml> [-merge <exams.json>] [-publish]\n")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pub ingestion.Publisher
	if opts.publish {
		store, closeDB, err := publisher(ctx)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer closeDB()
		pub = store
		if opts.verbose {
			fmt.Fprintln(stdout, "Publishing converted exams to Postgres")
		}
	}

	var err error
	if opts.manifest != "" {
		err = runManifest(ctx, opts, pub, stdout, stderr)
	} else {
		err = runSingle(ctx, opts, pub, stdout, stderr)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func publisher(ctx context.Context) (*db.Store, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("-publish requires DATABASE_URL (EXAMPREP_DATABASE_URL)")
	}
	pool, err := db.InitDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.CreateSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return db.NewStore(pool), pool.Close, nil
}

func runSingle(ctx context.Context, opts options, pub ingestion.Publisher, stdout, stderr io.Writer) error {
	if opts.verbose {
		fmt.Fprintf(stdout, "Parsing transcript: %s\n", opts.job.Input)
	}
	res, err := ingestion.RunJob(ctx, opts.job, opts.merge, pub)
	if err != nil {
		return fmt.Errorf("converting %s: %w", opts.job.Input, err)
	}
	report(res, opts, stdout, stderr)
	return nil
}

func runManifest(ctx context.Context, opts options, pub ingestion.Publisher, stdout, stderr io.Writer) error {
	m, err := ingestion.LoadManifest(opts.manifest)
	if err != nil {
		return err
	}
	if opts.merge != "" {
		m.Catalog = opts.merge
	}
	if opts.verbose {
		fmt.Fprintf(stdout, "Manifest %s: %d transcripts\n", opts.manifest, len(m.Transcripts))
	}

	results, err := ingestion.RunManifest(ctx, m, pub)
	total := 0
	for _, res := range results {
		report(res, opts, stdout, stderr)
		total += res.Accepted
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Converted %d transcripts, %d questions in total\n", len(results), total)
	return nil
}

func report(res ingestion.JobResult, opts options, stdout, stderr io.Writer) {
	fmt.Fprintf(stdout, "Exam %d %q: %d questions written to %s\n", res.Exam.ID, res.Exam.Title, res.Accepted, res.Output)
	if opts.verbose && res.Dropped > 0 {
		fmt.Fprintf(stdout, "  %d blocks dropped (not a complete question)\n", res.Dropped)
	}
	if res.Accepted == 0 {
		fmt.Fprintf(stderr, "Warning: no questions found in %s\n", res.Job.Input)
	}
	printPreview(stdout, res.Exam.Questions, opts.preview)
}

func printPreview(w io.Writer, questions []models.Question, n int) {
	n = max(0, min(n, len(questions)))
	for _, q := range questions[:n] {
		fmt.Fprintf(w, "\n%d. %s\n", q.ID, q.Text)
		for _, opt := range q.Options {
			fmt.Fprintf(w, "   %s\n", opt)
		}
		fmt.Fprintf(w, "   Answer: %s\n", q.Answer)
	}
	if n > 0 {
		fmt.Fprintln(w)
	}
}
