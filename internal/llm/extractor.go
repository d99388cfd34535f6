// Package llm - extractor.go provides schema-driven structured extraction.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content
// extraction: a task description plus the expected output fields.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "HiringSignals")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "boolean", ["string"]
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize beyond it.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// subjectName keeps prompts grammatical when no company name is known.
func subjectName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "the company"
	}
	return name
}

// --- Predefined Schemas ---

// HiringSignalsSchema returns the extraction schema for career page
// content belonging to the named company. The fields mirror the
// downstream result record exactly.
func HiringSignalsSchema(companyName string) ExtractionSchema {
	return ExtractionSchema{
		Name: "HiringSignals",
		Description: fmt.Sprintf(`You are an expert recruiting analyst. Your task is to determine whether %s is actively hiring based on the text of its career page.
A company is hiring only when the page lists concrete open positions. Generic "join our talent community" language without actual openings does not count.`, subjectName(companyName)),
		Fields: []SchemaField{
			{
				Name:        "is_hiring",
				Type:        "boolean",
				Description: "true only if concrete open positions appear in the text",
				Required:    true,
			},
			{
				Name:        "job_roles",
				Type:        "[\"string\"]",
				Description: "Exact job titles listed on the page, copied verbatim, no duplicates",
				Required:    true,
			},
			{
				Name:        "job_count",
				Type:        "number",
				Description: "Number of distinct open positions found",
				Required:    true,
			},
			{
				Name:        "hiring_summary",
				Type:        "\"string\"",
				Description: "One or two sentences describing the hiring situation",
				Required:    true,
			},
		},
	}
}

// JobTitlesSchema returns the extraction schema for a raw list of
// candidate job title strings harvested from the named company's page
// markup.
func JobTitlesSchema(companyName string) ExtractionSchema {
	return ExtractionSchema{
		Name: "JobTitles",
		Description: fmt.Sprintf(`You are an expert recruiting analyst. You are given a list of text fragments scraped from the career page of %s. Some are real job titles, others are navigation labels, locations, or noise.
Keep only the fragments that are genuine job titles.`, subjectName(companyName)),
		Fields: []SchemaField{
			{
				Name:        "job_roles",
				Type:        "[\"string\"]",
				Description: "The fragments that are real job titles, copied verbatim",
				Required:    true,
			},
			{
				Name:        "hiring_summary",
				Type:        "\"string\"",
				Description: "One sentence summarizing what the company is hiring for",
				Required:    true,
			},
		},
	}
}
