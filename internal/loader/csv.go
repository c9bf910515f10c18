// Package loader ingests clinical, genomic, and trial documents into the
// store, normalizing date fields and linking sample->clinical IDs per
// spec.md §1 ("a thin loader... out of scope for the core"). The
// header-driven column-index pattern and gzip auto-detection follow the
// teacher's internal/maf parser; these loaders stay deliberately thin, as
// spec.md §8's invariants test the store contents, not loader internals.
package loader

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// columnReader reads a tab- or comma-delimited file with a header row,
// auto-detecting gzip by magic bytes, mirroring maf.Parser's shape.
type columnReader struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	delim      string
	header     []string
	index      map[string]int
}

func openColumnReader(path, delim string) (*columnReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	cr := &columnReader{file: file, delim: delim}

	magic := make([]byte, 2)
	if _, err := io.ReadFull(file, magic); err != nil && err != io.ErrUnexpectedEOF {
		file.Close()
		return nil, fmt.Errorf("read magic bytes of %s: %w", path, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek %s: %w", path, err)
	}

	if magic[0] == 0x1f && magic[1] == 0x8b {
		cr.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader for %s: %w", path, err)
		}
		cr.reader = bufio.NewReader(cr.gzipReader)
	} else {
		cr.reader = bufio.NewReader(file)
	}

	if err := cr.parseHeader(); err != nil {
		cr.Close()
		return nil, err
	}
	return cr, nil
}

func (cr *columnReader) parseHeader() error {
	line, err := cr.readLine()
	if err != nil {
		return &ParseError{Line: cr.lineNumber, Message: "no header line found"}
	}
	cr.header = strings.Split(line, cr.delim)
	cr.index = make(map[string]int, len(cr.header))
	for i, name := range cr.header {
		cr.index[strings.TrimSpace(name)] = i
	}
	return nil
}

func (cr *columnReader) readLine() (string, error) {
	for {
		line, err := cr.reader.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		cr.lineNumber++
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if err != nil {
				return "", err
			}
			continue
		}
		return line, err
	}
}

// next returns the next record as a field->string map, or io.EOF when exhausted.
func (cr *columnReader) next() (map[string]string, error) {
	line, err := cr.readLine()
	if err != nil && line == "" {
		return nil, io.EOF
	}
	fields := strings.Split(line, cr.delim)
	row := make(map[string]string, len(cr.index))
	for name, i := range cr.index {
		if i < len(fields) {
			row[name] = strings.TrimSpace(fields[i])
		}
	}
	return row, nil
}

func (cr *columnReader) Close() error {
	if cr.gzipReader != nil {
		cr.gzipReader.Close()
	}
	if cr.file != nil {
		return cr.file.Close()
	}
	return nil
}

// ParseError reports a line-scoped ingestion failure.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("loader parse error at line %d: %s", e.Line, e.Message)
}

func parseOptionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func parseOptionalBool(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	switch strings.ToLower(s) {
	case "true", "t", "1", "yes":
		b := true
		return &b, nil
	case "false", "f", "0", "no":
		b := false
		return &b, nil
	default:
		return nil, fmt.Errorf("not a boolean: %q", s)
	}
}
