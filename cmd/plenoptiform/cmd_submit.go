package main

import (
	"context"
	"fmt"
	"io"
	"os"

	client "github.com/caelisco/plenoptiform"
	"github.com/caelisco/plenoptiform/config"
	"github.com/caelisco/plenoptiform/dom"
	"github.com/caelisco/plenoptiform/form"
	"github.com/caelisco/plenoptiform/progress"
	"github.com/caelisco/plenoptiform/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	baseURL      string
	endpoint     string
	pagePath     string
	outPath      string
	sanitize     string
	showProgress bool
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Send the form and print the result",
	Long: `Builds the twelve field payload, posts it to the endpoint and shows the answer.

With --page the values are read from the form of an HTML page, field flags
overwrite them, and the page is written back with the answer placed in its
result element.`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&baseURL, "base-url", "", "page URL the endpoint is resolved against")
	submitCmd.Flags().StringVar(&endpoint, "endpoint", "", "endpoint path or URL")
	submitCmd.Flags().StringVar(&pagePath, "page", "", "HTML page holding the form")
	submitCmd.Flags().StringVarP(&outPath, "out", "o", "", "where to write the updated page (default stdout)")
	submitCmd.Flags().StringVar(&sanitize, "sanitize", "", "clean the answer before showing it: none, ugc or strict")
	submitCmd.Flags().BoolVar(&showProgress, "progress", false, "draw a download progress bar on stderr")
	addFieldFlags(submitCmd)
}

// target is where the values come from and where the answer goes.
type target struct {
	source   form.Source
	renderer render.Renderer
	doc      *dom.Document
}

func openTarget(cmd *cobra.Command, cfg *config.Config, w io.Writer) (*target, error) {
	overrides := fieldOverrides(cmd)

	if pagePath == "" {
		values := form.Values{}
		for k, v := range cfg.Values() {
			values[k] = v
		}
		for k, v := range overrides {
			values[k] = v
		}
		return &target{source: values, renderer: render.Writer{W: w}}, nil
	}

	f, err := os.Open(pagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return nil, err
	}
	pageForm, err := doc.Form(cfg.Form)
	if err != nil {
		return nil, err
	}
	for k, v := range overrides {
		if err := pageForm.SetValue(k, v); err != nil {
			return nil, err
		}
	}
	return &target{
		source:   pageForm,
		renderer: &render.Element{Doc: doc, ID: cfg.ResultID},
		doc:      doc,
	}, nil
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if sanitize != "" {
		cfg.Sanitize = sanitize
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	url, err := client.ResolveURL(cfg.BaseURL, cfg.Endpoint, "")
	if err != nil {
		return err
	}

	opt, err := cfg.Options()
	if err != nil {
		return err
	}
	if cfg.Verbose {
		opt.SetLogger(logger)
	}
	if showProgress {
		opt.OnDownloadProgress = progress.CreateProgressFunc(os.Stderr, "Download")
	}

	tgt, err := openTarget(cmd, cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout, _ := cfg.TimeoutDuration(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	s := &client.Submitter{
		URL:      url,
		Form:     tgt.source,
		Renderer: render.Sanitize(tgt.renderer, cfg.Policy()),
		Client:   client.New(opt),
		Logger:   logger,
	}

	pending := s.Submit(ctx)
	logger.Debug("submission sent", zap.String("id", pending.ID()), zap.String("url", url))

	resp, err := pending.Wait()
	if err != nil {
		return fmt.Errorf("submission %s: %w", pending.ID(), err)
	}
	logger.Debug("submission complete",
		zap.String("id", pending.ID()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", resp.AccessTime))

	if tgt.doc == nil {
		return nil
	}
	return writePage(cmd, tgt.doc)
}

func writePage(cmd *cobra.Command, doc *dom.Document) error {
	if outPath == "" {
		return doc.Render(cmd.OutOrStdout())
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	if err := doc.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
