package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/mailsense/internal/app"
	"github.com/kailas-cloud/mailsense/internal/config"
	"github.com/kailas-cloud/mailsense/internal/domain/mail"
	"github.com/kailas-cloud/mailsense/internal/usecase/intelligent"
)

func queryArg(c *cli.Context) (string, error) {
	q := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if q == "" {
		return "", errors.New("query is required")
	}
	return q, nil
}

func (r *runner) analyze(c *cli.Context) error {
	q, err := queryArg(c)
	if err != nil {
		return err
	}
	engine, err := app.NewEngine(config.IntelligenceConfig{Timezone: c.String("timezone")}, r.logger)
	if err != nil {
		return err
	}
	enh := engine.Analyze(q)

	if c.Bool("json") {
		return r.printJSON(enh)
	}
	_, err = fmt.Fprintln(r.out, enh.Summary())
	return err
}

func (r *runner) ask(c *cli.Context) error {
	q, err := queryArg(c)
	if err != nil {
		return err
	}
	if c.Int("top-k") < 0 {
		return errors.New("top-k must be >= 0")
	}
	cfg, err := r.loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg, r.logger)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.Queries.Run(ctx, intelligent.Request{
		Query: q,
		TopK:  c.Int("top-k"),
		Debug: c.Bool("debug"),
	})
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	if c.Bool("json") {
		return r.printJSON(resp)
	}
	r.printResponse(resp)
	return nil
}

func (r *runner) ingest(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("exactly one file is required")
	}
	msgs, err := readMessages(c.Args().First())
	if err != nil {
		return err
	}
	cfg, err := r.loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg, r.logger)
	if err != nil {
		return err
	}
	defer a.Close()

	start := time.Now()
	var indexed, failed int
	for _, batch := range chunk(msgs, cfg.Retrieval.MaxBatchSize) {
		for _, res := range a.Ingest.Upsert(ctx, batch) {
			if res.Err() != nil {
				failed++
				fmt.Fprintf(r.out, "%s\terror\t%v\n", res.ID(), res.Err())
				continue
			}
			indexed++
		}
	}
	fmt.Fprintf(r.out, "indexed %d, failed %d in %s\n", indexed, failed, time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		return fmt.Errorf("%d messages failed", failed)
	}
	return nil
}

func (r *runner) printResponse(resp *mail.Response) {
	if qi := resp.QueryIntelligence; qi != nil {
		fmt.Fprintf(r.out, "intent: %s (%.0f%%)  strategy: %s  enhanced: %q\n",
			qi.Intent, qi.Confidence*100, qi.Strategy, qi.EnhancedQuery)
	}
	if resp.Debug != "" {
		fmt.Fprintln(r.out, resp.Debug)
	}
	if len(resp.Citations) == 0 {
		fmt.Fprintln(r.out, "no results")
		return
	}
	for i, cit := range resp.Citations {
		fmt.Fprintf(r.out, "%d. [%.3f] %s  %s  %s\n", i+1, cit.Score, cit.Date, cit.From, cit.Subject)
		if cit.Snippet != "" {
			fmt.Fprintf(r.out, "   %s\n", cit.Snippet)
		}
	}
	if len(resp.SenderBreakdown) > 0 {
		fmt.Fprintln(r.out, "senders:")
		for _, sender := range sortedSenders(resp.SenderBreakdown) {
			fmt.Fprintf(r.out, "   %s: %d\n", sender, resp.SenderBreakdown[sender])
		}
	}
}

// sortedSenders orders senders by message count, then name.
func sortedSenders(breakdown map[string]int) []string {
	senders := make([]string, 0, len(breakdown))
	for s := range breakdown {
		senders = append(senders, s)
	}
	sort.Slice(senders, func(i, j int) bool {
		if breakdown[senders[i]] != breakdown[senders[j]] {
			return breakdown[senders[i]] > breakdown[senders[j]]
		}
		return senders[i] < senders[j]
	})
	return senders
}

func (r *runner) printJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// readMessages accepts either a JSON array of messages or {"messages": [...]}.
func readMessages(path string) ([]mail.Message, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	trimmed := strings.TrimSpace(string(data))

	var msgs []mail.Message
	if strings.HasPrefix(trimmed, "[") {
		err = json.Unmarshal(data, &msgs)
	} else {
		var wrapped struct {
			Messages []mail.Message `json:"messages"`
		}
		err = json.Unmarshal(data, &wrapped)
		msgs = wrapped.Messages
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("%s contains no messages", path)
	}
	return msgs, nil
}

func chunk(msgs []mail.Message, size int) [][]mail.Message {
	if size <= 0 {
		size = len(msgs)
	}
	var out [][]mail.Message
	for len(msgs) > size {
		out = append(out, msgs[:size])
		msgs = msgs[size:]
	}
	if len(msgs) > 0 {
		out = append(out, msgs)
	}
	return out
}
