// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/micahbrochin-debug/sales-ai-tool/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// previewLength caps how much of a stage output the box shows
	previewLength = 400
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProspect outputs the prospect the run is about to analyze.
func (p *Printer) PrintProspect(prospect *types.Prospect) {
	if prospect == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", prospect.FullName()))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", prospect.Company))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", prospect.TitleOrDefault()))
	sb.WriteString(fmt.Sprintf("Email:    %s", prospect.EmailOrDefault()))

	p.printBox("PROSPECT", sb.String())
}

// PrintStageSet outputs the stage sequence with enrichment summaries.
func (p *Printer) PrintStageSet(stages []types.StageConfig) {
	enabled := types.EnabledStages(stages)
	if len(enabled) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d stages enabled:\n\n", len(enabled)))
	for i, s := range enabled {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, s.DisplayName))
		sb.WriteString(fmt.Sprintf("   %s\n", describePolicy(s.Enrichment)))
	}

	p.printBox("STAGE SEQUENCE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStageResult outputs a truncated preview of one stage's output.
func (p *Printer) PrintStageResult(artifact *types.StageArtifact) {
	if artifact == nil || artifact.Text == "" {
		return
	}

	text := artifact.Text
	if len(text) > previewLength {
		text = text[:previewLength-3] + "..."
	}

	p.printBox(strings.ToUpper(artifact.StageName), text)
}

// PrintRunSummary outputs the run's final state and artifact inventory.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRunSummary(run *types.PipelineRun) {
	if run == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", run.ID))
	sb.WriteString(fmt.Sprintf("State:    %s\n", run.State))
	if !run.FinishedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Elapsed:  %s\n", run.FinishedAt.Sub(run.StartedAt).Round(time.Second)))
	}
	sb.WriteString("\n")

	artifacts := run.ArtifactsInOrder()
	sb.WriteString(fmt.Sprintf("Artifacts: %d of %d stages\n", len(artifacts), len(run.Stages)))
	for _, a := range artifacts {
		sb.WriteString(fmt.Sprintf("  • %s (%d chars)\n", a.StageName, len(a.Text)))
	}
	if run.Synthesis != nil {
		sb.WriteString(fmt.Sprintf("  • %s (%d chars)\n", run.Synthesis.StageName, len(run.Synthesis.Text)))
	}

	title := "RUN SUMMARY"
	if run.State == types.RunFailed {
		title = "RUN SUMMARY (FAILED)"
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// describePolicy renders an enrichment policy as one line.
func describePolicy(policy *types.EnrichmentPolicy) string {
	if policy == nil {
		return "enrichment: default"
	}
	switch policy.Mode {
	case types.EnrichmentDeep:
		return fmt.Sprintf("enrichment: deep %s (%d queries, %d results)", policy.QuerySet, policy.QueryCount, policy.ResultCap)
	case types.EnrichmentFullContext:
		return "enrichment: full prior context"
	default:
		return fmt.Sprintf("enrichment: %s", policy.Mode)
	}
}
