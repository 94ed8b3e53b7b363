package catalog

import (
	"context"
	"slices"

	"github.com/okian/assessrec/internal/domain/model"
)

// SampleSourceName names the built-in sample catalog.
const SampleSourceName = "sample"

// SampleSource serves a fixed catalog used when crawling yields nothing.
type SampleSource struct{}

// Name implements Source.
func (SampleSource) Name() string { return SampleSourceName }

// Ephemeral keeps sample data out of the snapshot store.
func (SampleSource) Ephemeral() bool { return true }

// Fetch implements Source.
func (SampleSource) Fetch(context.Context) ([]model.AssessmentRecord, error) {
	return SampleRecords(), nil
}

// SampleRecords returns a copy of the sample catalog.
func SampleRecords() []model.AssessmentRecord {
	return slices.Clone(sampleRecords)
}

func sample(name, path, adaptive, duration, testType string) model.AssessmentRecord {
	return model.AssessmentRecord{
		Name:                 name,
		URL:                  "https://www.shl.com/products/" + path + "/",
		RemoteTestingSupport: model.SupportYes,
		AdaptiveSupport:      model.Support(adaptive),
		Duration:             duration,
		TestType:             testType,
	}
}

var sampleRecords = []model.AssessmentRecord{ //nolint:gochecknoglobals // fixed data
	sample("SHL Verify Interactive Verbal Reasoning Assessment", "verify-interactive-verbal-reasoning", "Yes", "25 minutes", "Cognitive Ability"),
	sample("SHL Verify Numerical Reasoning Assessment", "verify-numerical-reasoning", "Yes", "35 minutes", "Cognitive Ability"),
	sample("SHL Personality Assessment", "personality-assessment", "No", "30 minutes", "Personality"),
	sample("SHL Coding Pro Assessment", "coding-pro", "No", "60 minutes", "Technical Skills"),
	sample("SHL Leadership Assessment", "leadership-assessment", "No", "45 minutes", "Leadership"),
	sample("SHL Sales Assessment", "sales-assessment", "No", "40 minutes", "Sales Skills"),
	sample("SHL Data Analysis Assessment", "data-analysis-assessment", "Yes", "50 minutes", "Technical Skills"),
	sample("SHL Communication Skills Assessment", "communication-skills", "No", "30 minutes", "Soft Skills"),
	sample("SHL Problem-Solving Assessment", "problem-solving", "Yes", "25 minutes", "Cognitive Ability"),
	sample("SHL Customer Service Assessment", "customer-service", "No", "35 minutes", "Soft Skills"),
	sample("SHL Project Management Assessment", "project-management", "No", "45 minutes", "Project Management"),
	sample("SHL JavaScript Coding Assessment", "javascript-assessment", "Yes", "60 minutes", "Technical Skills"),
	sample("SHL Python Coding Assessment", "python-assessment", "Yes", "60 minutes", "Technical Skills"),
	sample("SHL Java Programming Assessment", "java-assessment", "Yes", "55 minutes", "Technical Skills"),
	sample("SHL Critical Thinking Assessment", "critical-thinking", "No", "35 minutes", "Cognitive Ability"),
}
