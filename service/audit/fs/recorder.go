// Package fs persists audit entries as one JSON object per file under a base
// URL. Any afs-supported scheme works: file://, s3://, gs://, or mem:// in
// tests.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/grantly/internal/idgen"
	"github.com/viant/grantly/service/audit"
	"github.com/viant/toolbox"
)

// Recorder writes denial escalation records through the abstract file
// storage service.
type Recorder struct {
	fs      afs.Service
	baseURL string
}

// New creates a recorder rooted at baseURL.
func New(baseURL string) *Recorder {
	return &Recorder{fs: afs.New(), baseURL: baseURL}
}

// RecordDenial serialises the entry and writes it under the base URL. Empty
// fields are pruned so records stay compact.
func (r *Recorder) RecordDenial(ctx context.Context, entry *audit.Entry) error {
	if entry == nil {
		return fmt.Errorf("audit entry was nil")
	}
	aMap := map[string]interface{}{}
	if err := toolbox.DefaultConverter.AssignConverted(&aMap, entry); err != nil {
		return fmt.Errorf("failed to convert audit entry: %w", err)
	}
	aMap = toolbox.DeleteEmptyKeys(aMap)
	data, err := json.Marshal(aMap)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	name := fmt.Sprintf("%s-%s.json", entry.ResolvedAt.UTC().Format("20060102T150405"), idgen.New())
	URL := url.Join(r.baseURL, "denials", name)
	if err := r.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write audit entry to %s: %w", URL, err)
	}
	return nil
}

var _ audit.Recorder = (*Recorder)(nil)
