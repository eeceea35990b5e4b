// Package cmudict downloads the CMU Pronouncing Dictionary.
package cmudict

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/speakup/internal/phonetic"
)

// DefaultURL serves the maintained plain-text dictionary.
const DefaultURL = "https://raw.githubusercontent.com/cmusphinx/cmudict/master/cmudict.dict"

// Download describes a dictionary on disk.
type Download struct {
	Path   string
	Words  int
	Cached bool
}

// Fetch downloads the dictionary at url into destPath. An existing file is
// kept unless force is set. The body must parse as a pronouncing dictionary
// before it replaces destPath.
func Fetch(ctx context.Context, url, destPath string, force bool) (Download, error) {
	if url == "" {
		return Download{}, fmt.Errorf("dictionary url is required")
	}
	if destPath == "" {
		return Download{}, fmt.Errorf("destination path is required")
	}
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Download{}, fmt.Errorf("failed to create data dir: %w", err)
	}

	if !force {
		if _, err := os.Stat(destPath); err == nil {
			dict, err := phonetic.LoadDictionaryFile(destPath)
			if err != nil {
				return Download{}, fmt.Errorf("failed to read cached dictionary: %w", err)
			}
			return Download{Path: destPath, Words: dict.Len(), Cached: true}, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return Download{}, fmt.Errorf("failed to stat cached dictionary: %w", err)
		}
	}

	tmpFile, err := os.CreateTemp(dir, "cmudict-*.dict")
	if err != nil {
		return Download{}, fmt.Errorf("failed to create temp dictionary: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	resp, err := httpRequest(ctx, url)
	if err != nil {
		return Download{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return Download{}, fmt.Errorf("unexpected dictionary status: %s", resp.Status)
	}

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return Download{}, fmt.Errorf("failed to download dictionary: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return Download{}, fmt.Errorf("failed to close temp dictionary: %w", err)
	}

	dict, err := phonetic.LoadDictionaryFile(tmpPath)
	if err != nil {
		return Download{}, fmt.Errorf("downloaded dictionary is invalid: %w", err)
	}
	if dict.Len() == 0 {
		return Download{}, fmt.Errorf("downloaded dictionary is empty")
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return Download{}, fmt.Errorf("failed to move dictionary into place: %w", err)
	}
	return Download{Path: destPath, Words: dict.Len()}, nil
}

// WriteAttribution writes the dictionary's attribution next to it.
func WriteAttribution(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	text := strings.Join([]string{
		"Pronunciations from the CMU Pronouncing Dictionary.",
		"Source: https://github.com/cmusphinx/cmudict",
		"Copyright (C) 1993-2015 Carnegie Mellon University. All rights reserved.",
		"Distributed under a BSD-style license; see the LICENSE file in the source repository.",
		"",
	}, "\n")
	if err := os.WriteFile(filepath.Join(dir, "CMUDICT_ATTRIBUTION.txt"), []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write attribution: %w", err)
	}
	return nil
}

func httpRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
