package processor

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// ArchiveName is the fixed download name used when a batch produces more
// than one file.
const ArchiveName = "images.zip"

const ArchiveMIME = "application/zip"

// BatchResult is what the client downloads: either one encoded file with its
// format's MIME type, or a deflate-compressed ZIP of all outputs.
type BatchResult struct {
	Filename string
	MIME     string
	Data     []byte
	Archived bool
}

// RunBatch runs the pipeline over every job sequentially, preserving input
// order. The first failure aborts the whole batch and discards anything
// already encoded; there is no partial-success mode. Duplicate output stems
// inside an archive overwrite each other on extraction (last write wins),
// matching the upstream behavior.
func (p Pipeline) RunBatch(jobs []Job) (BatchResult, error) {
	outputs := make([]Output, 0, len(jobs))
	for _, job := range jobs {
		out, err := p.Run(job)
		if err != nil {
			return BatchResult{}, err
		}
		outputs = append(outputs, out)
	}

	if len(outputs) == 1 {
		return BatchResult{
			Filename: outputs[0].Filename,
			MIME:     p.Format.MIME,
			Data:     outputs[0].Data,
		}, nil
	}

	archive, err := zipOutputs(outputs)
	if err != nil {
		return BatchResult{}, err
	}

	return BatchResult{
		Filename: ArchiveName,
		MIME:     ArchiveMIME,
		Data:     archive,
		Archived: true,
	}, nil
}

func zipOutputs(outputs []Output) ([]byte, error) {
	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)
	for _, out := range outputs {
		// Create uses the Deflate method by default.
		w, err := zw.Create(out.Filename)
		if err != nil {
			return nil, fmt.Errorf("create archive entry %s: %w", out.Filename, err)
		}
		if _, err := w.Write(out.Data); err != nil {
			return nil, fmt.Errorf("write archive entry %s: %w", out.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	return buf.Bytes(), nil
}
