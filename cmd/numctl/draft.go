package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"numbering/internal/infrastructure/http/v1/dto"
)

// readDraft decodes a YAML format definition. The document uses the same
// field names as the HTTP API:
//
//	target: CUSTOMER_NO
//	scope: GLOBAL
//	joiner: "-"
//	parts:
//	  - type: LITERAL
//	    options: {value: C}
//	  - type: SERIAL
//	    options: {digits: 4}
func readDraft(r io.Reader) (*dto.CreateFormatRequest, error) {
	var doc map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("draft is empty")
		}
		return nil, fmt.Errorf("decode draft: %w", err)
	}

	// YAML and JSON share the data model here; Parts only knows JSON.
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	var req dto.CreateFormatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	if len(req.Parts) == 0 {
		return nil, fmt.Errorf("draft has no parts")
	}
	if req.Target == "" {
		req.Target = "CUSTOMER_NO"
	}
	if req.Scope == "" {
		req.Scope = "GLOBAL"
	}
	return &req, nil
}

func readDraftFile(path string) (*dto.CreateFormatRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readDraft(f)
}

// previewDraft turns a draft into the preview DTO.
func previewDraft(req *dto.CreateFormatRequest) *dto.FormatDraft {
	return &dto.FormatDraft{
		Target:               req.Target,
		Scope:                req.Scope,
		OrgID:                req.OrgID,
		Parts:                req.Parts,
		Joiner:               req.Joiner,
		FiscalYearStartMonth: req.FiscalYearStartMonth,
	}
}
